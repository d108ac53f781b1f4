package repositories

import (
	"context"
	"errors"

	"github.com/msseason/ai-grant-finder/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BusinessProfileRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.BusinessProfile, error)
	Upsert(ctx context.Context, profile *models.BusinessProfile) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type businessProfileRepo struct {
	db Database
}

func NewBusinessProfileRepository(db Database) BusinessProfileRepository {
	return &businessProfileRepo{db: db}
}

const businessProfileColumns = `id, user_id, mission, problem, solution, target_geography, industries, revenue_band, employee_count, founded_year, completion_percent, created_at, updated_at`

func (r *businessProfileRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*models.BusinessProfile, error) {
	profile := &models.BusinessProfile{}
	query := `
		SELECT ` + businessProfileColumns + `
		FROM business_profiles
		WHERE user_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(&profile.ID, &profile.UserID, &profile.Mission, &profile.Problem, &profile.Solution, &profile.TargetGeography, &profile.Industries, &profile.RevenueBand, &profile.EmployeeCount, &profile.FoundedYear, &profile.CompletionPercent, &profile.CreatedAt, &profile.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Upsert keeps the 1:1 keying to the user: an existing row for the user is
// overwritten in place, preserving its id and created_at.
func (r *businessProfileRepo) Upsert(ctx context.Context, profile *models.BusinessProfile) error {
	query := `
		INSERT INTO business_profiles (id, user_id, mission, problem, solution, target_geography, industries, revenue_band, employee_count, founded_year, completion_percent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET mission = EXCLUDED.mission,
		    problem = EXCLUDED.problem,
		    solution = EXCLUDED.solution,
		    target_geography = EXCLUDED.target_geography,
		    industries = EXCLUDED.industries,
		    revenue_band = EXCLUDED.revenue_band,
		    employee_count = EXCLUDED.employee_count,
		    founded_year = EXCLUDED.founded_year,
		    completion_percent = EXCLUDED.completion_percent,
		    updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, profile.ID, profile.UserID, profile.Mission, profile.Problem, profile.Solution, profile.TargetGeography, profile.Industries, profile.RevenueBand, profile.EmployeeCount, profile.FoundedYear, profile.CompletionPercent)
	return err
}

func (r *businessProfileRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM business_profiles WHERE user_id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
