package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/msseason/ai-grant-finder/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	ExpireTrials(ctx context.Context, cutoff time.Time) (int64, error)
}

type userRepo struct {
	db Database
}

func NewUserRepository(db Database) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, password_hash, full_name, company_name, plan, role, status, trial_ends_at, created_at, updated_at`

// Create inserts the user as-is. Email uniqueness is owned by the caller and
// the unique index on users.email; this mirrors the auth service doing its
// own duplicate check before signup. The database stamps the timestamps and
// they are scanned back so the struct matches the stored row.
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, full_name, company_name, plan, role, status, trial_ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, user.ID, user.Email, user.PasswordHash, user.FullName, user.CompanyName, user.Plan, user.Role, user.Status, user.TrialEndsAt).
		Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.CompanyName, &user.Plan, &user.Role, &user.Status, &user.TrialEndsAt, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`
	err := r.db.QueryRow(ctx, query, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.CompanyName, &user.Plan, &user.Role, &user.Status, &user.TrialEndsAt, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies the merge patch in a single statement: nil patch fields keep
// the stored value, updated_at is always refreshed. Returns ErrNotFound when
// no row matches, leaving the table untouched.
func (r *userRepo) Update(ctx context.Context, id uuid.UUID, patch *models.UserUpdate) (*models.User, error) {
	user := &models.User{}
	query := `
		UPDATE users
		SET full_name = COALESCE($1, full_name),
		    company_name = COALESCE($2, company_name),
		    plan = COALESCE($3, plan),
		    status = COALESCE($4, status),
		    updated_at = NOW()
		WHERE id = $5
		RETURNING ` + userColumns + `
	`
	err := r.db.QueryRow(ctx, query, patch.FullName, patch.CompanyName, patch.Plan, patch.Status, id).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.CompanyName, &user.Plan, &user.Role, &user.Status, &user.TrialEndsAt, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ExpireTrials flips every trial account whose trial window closed before the
// cutoff to expired, in one statement. Returns the number of rows changed.
func (r *userRepo) ExpireTrials(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE users
		SET status = 'expired',
		    updated_at = NOW()
		WHERE status = 'trial' AND trial_ends_at IS NOT NULL AND trial_ends_at <= $1
	`
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *userRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.CompanyName, &user.Plan, &user.Role, &user.Status, &user.TrialEndsAt, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
