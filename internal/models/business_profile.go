package models

import (
	"time"

	"github.com/google/uuid"
)

// BusinessProfile holds the narrative company profile used to prefill grant
// applications. Exactly one profile exists per user.
type BusinessProfile struct {
	ID                uuid.UUID `json:"id" db:"id"`
	UserID            uuid.UUID `json:"user_id" db:"user_id"`
	Mission           string    `json:"mission" db:"mission"`
	Problem           string    `json:"problem" db:"problem"`
	Solution          string    `json:"solution" db:"solution"`
	TargetGeography   string    `json:"target_geography" db:"target_geography"`
	Industries        []string  `json:"industries" db:"industries"`
	RevenueBand       string    `json:"revenue_band" db:"revenue_band"`
	EmployeeCount     int       `json:"employee_count" db:"employee_count"`
	FoundedYear       int       `json:"founded_year" db:"founded_year"`
	CompletionPercent int       `json:"completion_percent" db:"completion_percent"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// BusinessProfileUpdate is the explicit partial-update type for profiles.
type BusinessProfileUpdate struct {
	Mission         *string  `json:"mission"`
	Problem         *string  `json:"problem"`
	Solution        *string  `json:"solution"`
	TargetGeography *string  `json:"target_geography"`
	Industries      []string `json:"industries"`
	RevenueBand     *string  `json:"revenue_band"`
	EmployeeCount   *int     `json:"employee_count"`
	FoundedYear     *int     `json:"founded_year"`
}
