package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/msseason/ai-grant-finder/internal/models"
	"github.com/msseason/ai-grant-finder/internal/repositories"
)

// In-memory repositories for seeding tests; behavior-faithful enough to
// exercise the idempotency checks.

type memoryUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memoryUserRepo) Update(_ context.Context, id uuid.UUID, _ *models.UserUpdate) (*models.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *memoryUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *memoryUserRepo) List(_ context.Context, _, _ int) ([]*models.User, error) {
	var users []*models.User
	for _, user := range r.users {
		users = append(users, user)
	}
	return users, nil
}

func (r *memoryUserRepo) ExpireTrials(_ context.Context, cutoff time.Time) (int64, error) {
	var expired int64
	for _, user := range r.users {
		if user.Status == models.UserStatusTrial && user.TrialEndsAt != nil && !user.TrialEndsAt.After(cutoff) {
			user.Status = models.UserStatusExpired
			expired++
		}
	}
	return expired, nil
}

type memoryAppRepo struct {
	apps map[uuid.UUID]*models.Application
}

func newMemoryAppRepo() *memoryAppRepo {
	return &memoryAppRepo{apps: make(map[uuid.UUID]*models.Application)}
}

func (r *memoryAppRepo) Create(_ context.Context, app *models.Application) error {
	r.apps[app.ID] = app
	return nil
}

func (r *memoryAppRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	if app, ok := r.apps[id]; ok {
		return app, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *memoryAppRepo) GetByUser(_ context.Context, userID uuid.UUID) ([]*models.Application, error) {
	var apps []*models.Application
	for _, app := range r.apps {
		if app.UserID == userID {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

func (r *memoryAppRepo) List(_ context.Context, _, _ int) ([]*models.Application, error) {
	var apps []*models.Application
	for _, app := range r.apps {
		apps = append(apps, app)
	}
	return apps, nil
}

func (r *memoryAppRepo) Update(_ context.Context, id uuid.UUID, _ *models.ApplicationUpdate) (*models.Application, error) {
	if app, ok := r.apps[id]; ok {
		return app, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *memoryAppRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.apps, id)
	return nil
}

func (r *memoryAppRepo) GetStats(_ context.Context, _ *uuid.UUID) (*models.ApplicationStats, error) {
	return &models.ApplicationStats{SuccessRate: "0.0"}, nil
}

func (r *memoryAppRepo) ListUpcomingDeadlines(_ context.Context, before time.Time) ([]*models.Application, error) {
	var apps []*models.Application
	for _, app := range r.apps {
		if app.Deadline.Before(before) {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

type memoryProfileRepo struct {
	profiles map[uuid.UUID]*models.BusinessProfile // keyed by user id
}

func newMemoryProfileRepo() *memoryProfileRepo {
	return &memoryProfileRepo{profiles: make(map[uuid.UUID]*models.BusinessProfile)}
}

func (r *memoryProfileRepo) GetByUser(_ context.Context, userID uuid.UUID) (*models.BusinessProfile, error) {
	if profile, ok := r.profiles[userID]; ok {
		return profile, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *memoryProfileRepo) Upsert(_ context.Context, profile *models.BusinessProfile) error {
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *memoryProfileRepo) Delete(_ context.Context, userID uuid.UUID) error {
	delete(r.profiles, userID)
	return nil
}

func TestSeedService_Run_CreatesReferenceData(t *testing.T) {
	userRepo := newMemoryUserRepo()
	appRepo := newMemoryAppRepo()
	profileRepo := newMemoryProfileRepo()
	seeder := NewSeedService(userRepo, appRepo, profileRepo, plainHasher{})

	err := seeder.Run(context.Background())
	assert.NoError(t, err)

	demo, err := userRepo.GetByEmail(context.Background(), DemoUserEmail)
	assert.NoError(t, err)
	assert.Equal(t, models.PlanProfessional, demo.Plan)
	assert.Equal(t, models.RoleOwner, demo.Role)
	assert.Equal(t, models.UserStatusActive, demo.Status)
	assert.True(t, plainHasher{}.Verify(demo.PasswordHash, "demo1234"))

	admin, err := userRepo.GetByEmail(context.Background(), AdminUserEmail)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, models.PlanEnterprise, admin.Plan)

	apps, err := appRepo.GetByUser(context.Background(), demo.ID)
	assert.NoError(t, err)
	assert.Len(t, apps, 3)

	byName := make(map[string]*models.Application)
	var totalRequested float64
	for _, app := range apps {
		byName[app.GrantName] = app
		totalRequested += app.Amount
		assert.Equal(t, demo.ID, app.UserID)
		assert.True(t, app.Deadline.After(time.Now()))
	}
	assert.Equal(t, 425000.0, totalRequested)

	nsf := byName["NSF SBIR Phase I"]
	assert.Equal(t, models.ApplicationStatusSubmitted, nsf.Status)
	assert.Equal(t, 275000.0, nsf.Amount)
	assert.NotNil(t, nsf.SubmittedDate)

	aws := byName["AWS Activate Credits"]
	assert.Equal(t, models.ApplicationStatusAwarded, aws.Status)
	assert.NotNil(t, aws.AwardAmount)
	assert.Equal(t, 100000.0, *aws.AwardAmount)

	il := byName["Illinois SBIR Match"]
	assert.Equal(t, models.ApplicationStatusInProgress, il.Status)
	assert.Nil(t, il.AwardAmount)

	profile, err := profileRepo.GetByUser(context.Background(), demo.ID)
	assert.NoError(t, err)
	assert.Equal(t, 100, profile.CompletionPercent)
}

func TestSeedService_Run_IsIdempotent(t *testing.T) {
	userRepo := newMemoryUserRepo()
	appRepo := newMemoryAppRepo()
	profileRepo := newMemoryProfileRepo()
	seeder := NewSeedService(userRepo, appRepo, profileRepo, plainHasher{})

	assert.NoError(t, seeder.Run(context.Background()))

	demoFirst, _ := userRepo.GetByEmail(context.Background(), DemoUserEmail)
	firstApps, _ := appRepo.GetByUser(context.Background(), demoFirst.ID)

	assert.NoError(t, seeder.Run(context.Background()))

	demoSecond, _ := userRepo.GetByEmail(context.Background(), DemoUserEmail)
	assert.Equal(t, demoFirst.ID, demoSecond.ID)

	assert.Len(t, userRepo.users, 2)
	secondApps, _ := appRepo.GetByUser(context.Background(), demoSecond.ID)
	assert.Len(t, secondApps, len(firstApps))
	assert.Len(t, profileRepo.profiles, 1)
}
