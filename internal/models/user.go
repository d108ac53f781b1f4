package models

import (
	"time"

	"github.com/google/uuid"
)

// Plan, role and status values a user account can hold.
const (
	PlanStarter      = "starter"
	PlanProfessional = "professional"
	PlanEnterprise   = "enterprise"

	RoleOwner = "owner"
	RoleAdmin = "admin"

	UserStatusTrial   = "trial"
	UserStatusActive  = "active"
	UserStatusExpired = "expired"
)

type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never serialize in JSON
	FullName     string     `json:"full_name" db:"full_name"`
	CompanyName  string     `json:"company_name" db:"company_name"`
	Plan         string     `json:"plan" db:"plan"`
	Role         string     `json:"role" db:"role"`
	Status       string     `json:"status" db:"status"`
	TrialEndsAt  *time.Time `json:"trial_ends_at,omitempty" db:"trial_ends_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// UserUpdate is the explicit partial-update type for users. Nil fields are
// left untouched.
type UserUpdate struct {
	FullName    *string `json:"full_name"`
	CompanyName *string `json:"company_name"`
	Plan        *string `json:"plan"`
	Status      *string `json:"status"`
}

// ValidPlan reports whether plan is one of the billable plans.
func ValidPlan(plan string) bool {
	switch plan {
	case PlanStarter, PlanProfessional, PlanEnterprise:
		return true
	}
	return false
}

// ValidUserStatus reports whether status is a known account status.
func ValidUserStatus(status string) bool {
	switch status {
	case UserStatusTrial, UserStatusActive, UserStatusExpired:
		return true
	}
	return false
}
