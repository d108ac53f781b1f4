package models

import (
	"time"

	"github.com/google/uuid"
)

// Application lifecycle statuses.
const (
	ApplicationStatusDraft       = "draft"
	ApplicationStatusInProgress  = "in-progress"
	ApplicationStatusSubmitted   = "submitted"
	ApplicationStatusUnderReview = "under-review"
	ApplicationStatusAwarded     = "awarded"
	ApplicationStatusRejected    = "rejected"
)

// Application is one grant-funding application tracked by a user.
// AwardAmount is meaningful only when Status is awarded.
type Application struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	GrantName     string     `json:"grant_name" db:"grant_name"`
	Provider      string     `json:"provider" db:"provider"`
	Amount        float64    `json:"amount" db:"amount"`
	Status        string     `json:"status" db:"status"`
	Deadline      time.Time  `json:"deadline" db:"deadline"`
	AwardAmount   *float64   `json:"award_amount,omitempty" db:"award_amount"`
	AssignedTo    *string    `json:"assigned_to,omitempty" db:"assigned_to"`
	Notes         *string    `json:"notes,omitempty" db:"notes"`
	SubmittedDate *time.Time `json:"submitted_date,omitempty" db:"submitted_date"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// ApplicationUpdate is the explicit partial-update type for applications.
// Nil fields are left untouched; provided fields overwrite.
type ApplicationUpdate struct {
	GrantName     *string    `json:"grant_name"`
	Provider      *string    `json:"provider"`
	Amount        *float64   `json:"amount"`
	Status        *string    `json:"status"`
	Deadline      *time.Time `json:"deadline"`
	AwardAmount   *float64   `json:"award_amount"`
	AssignedTo    *string    `json:"assigned_to"`
	Notes         *string    `json:"notes"`
	SubmittedDate *time.Time `json:"submitted_date"`
}

// ApplicationStats aggregates a set of applications: per-status counts,
// requested and awarded totals, and the award success rate formatted to one
// decimal place ("0.0" for an empty set).
type ApplicationStats struct {
	Total          int     `json:"total"`
	Draft          int     `json:"draft"`
	InProgress     int     `json:"in_progress"`
	Submitted      int     `json:"submitted"`
	UnderReview    int     `json:"under_review"`
	Awarded        int     `json:"awarded"`
	Rejected       int     `json:"rejected"`
	TotalRequested float64 `json:"total_requested"`
	TotalAwarded   float64 `json:"total_awarded"`
	SuccessRate    string  `json:"success_rate"`
}

// ValidApplicationStatus reports whether status is a known lifecycle status.
func ValidApplicationStatus(status string) bool {
	switch status {
	case ApplicationStatusDraft, ApplicationStatusInProgress, ApplicationStatusSubmitted,
		ApplicationStatusUnderReview, ApplicationStatusAwarded, ApplicationStatusRejected:
		return true
	}
	return false
}
