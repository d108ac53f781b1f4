package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/msseason/ai-grant-finder/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*models.Application, error)
	List(ctx context.Context, limit, offset int) ([]*models.Application, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.ApplicationUpdate) (*models.Application, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetStats(ctx context.Context, userID *uuid.UUID) (*models.ApplicationStats, error)
	ListUpcomingDeadlines(ctx context.Context, before time.Time) ([]*models.Application, error)
}

type applicationRepo struct {
	db Database
}

func NewApplicationRepository(db Database) ApplicationRepository {
	return &applicationRepo{db: db}
}

const applicationColumns = `id, user_id, grant_name, provider, amount, status, deadline, award_amount, assigned_to, notes, submitted_date, created_at, updated_at`

func scanApplication(row pgx.Row) (*models.Application, error) {
	app := &models.Application{}
	err := row.Scan(&app.ID, &app.UserID, &app.GrantName, &app.Provider, &app.Amount, &app.Status, &app.Deadline, &app.AwardAmount, &app.AssignedTo, &app.Notes, &app.SubmittedDate, &app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Create inserts the application. Timestamps are stamped by the database and
// scanned back so the struct matches the stored row.
func (r *applicationRepo) Create(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO applications (id, user_id, grant_name, provider, amount, status, deadline, award_amount, assigned_to, notes, submitted_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, app.ID, app.UserID, app.GrantName, app.Provider, app.Amount, app.Status, app.Deadline, app.AwardAmount, app.AssignedTo, app.Notes, app.SubmittedDate).
		Scan(&app.CreatedAt, &app.UpdatedAt)
}

func (r *applicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE id = $1
	`
	return scanApplication(r.db.QueryRow(ctx, query, id))
}

func (r *applicationRepo) GetByUser(ctx context.Context, userID uuid.UUID) ([]*models.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (r *applicationRepo) List(ctx context.Context, limit, offset int) ([]*models.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

// Update applies the merge patch in one statement; nil fields keep the stored
// value and updated_at is refreshed. ErrNotFound on a missing id, with the
// table left untouched.
func (r *applicationRepo) Update(ctx context.Context, id uuid.UUID, patch *models.ApplicationUpdate) (*models.Application, error) {
	query := `
		UPDATE applications
		SET grant_name = COALESCE($1, grant_name),
		    provider = COALESCE($2, provider),
		    amount = COALESCE($3, amount),
		    status = COALESCE($4, status),
		    deadline = COALESCE($5, deadline),
		    award_amount = COALESCE($6, award_amount),
		    assigned_to = COALESCE($7, assigned_to),
		    notes = COALESCE($8, notes),
		    submitted_date = COALESCE($9, submitted_date),
		    updated_at = NOW()
		WHERE id = $10
		RETURNING ` + applicationColumns + `
	`
	return scanApplication(r.db.QueryRow(ctx, query, patch.GrantName, patch.Provider, patch.Amount, patch.Status, patch.Deadline, patch.AwardAmount, patch.AssignedTo, patch.Notes, patch.SubmittedDate, id))
}

func (r *applicationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM applications WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// GetStats aggregates the scope in a single query: all applications when
// userID is nil, one user's otherwise. totalAwarded counts award_amount only
// on awarded rows, missing amounts as zero.
func (r *applicationRepo) GetStats(ctx context.Context, userID *uuid.UUID) (*models.ApplicationStats, error) {
	stats := &models.ApplicationStats{}
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'draft'),
		       COUNT(*) FILTER (WHERE status = 'in-progress'),
		       COUNT(*) FILTER (WHERE status = 'submitted'),
		       COUNT(*) FILTER (WHERE status = 'under-review'),
		       COUNT(*) FILTER (WHERE status = 'awarded'),
		       COUNT(*) FILTER (WHERE status = 'rejected'),
		       COALESCE(SUM(amount), 0),
		       COALESCE(SUM(award_amount) FILTER (WHERE status = 'awarded'), 0)
		FROM applications
		WHERE $1::uuid IS NULL OR user_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(&stats.Total, &stats.Draft, &stats.InProgress, &stats.Submitted, &stats.UnderReview, &stats.Awarded, &stats.Rejected, &stats.TotalRequested, &stats.TotalAwarded)
	if err != nil {
		return nil, err
	}

	stats.SuccessRate = "0.0"
	if stats.Total > 0 {
		stats.SuccessRate = fmt.Sprintf("%.1f", float64(stats.Awarded)/float64(stats.Total)*100)
	}
	return stats, nil
}

// ListUpcomingDeadlines returns open applications whose deadline falls before
// the cutoff, soonest first. Used by the deadline-alert background job.
func (r *applicationRepo) ListUpcomingDeadlines(ctx context.Context, before time.Time) ([]*models.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE deadline <= $1 AND status IN ('draft', 'in-progress')
		ORDER BY deadline ASC
	`
	rows, err := r.db.Query(ctx, query, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

func collectApplications(rows pgx.Rows) ([]*models.Application, error) {
	var apps []*models.Application
	for rows.Next() {
		app := &models.Application{}
		if err := rows.Scan(&app.ID, &app.UserID, &app.GrantName, &app.Provider, &app.Amount, &app.Status, &app.Deadline, &app.AwardAmount, &app.AssignedTo, &app.Notes, &app.SubmittedDate, &app.CreatedAt, &app.UpdatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}
