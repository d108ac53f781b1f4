package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/msseason/ai-grant-finder/internal/models"
	"github.com/msseason/ai-grant-finder/internal/repositories"
)

type staticUserRepo struct {
	users []*models.User
}

func (r *staticUserRepo) Create(context.Context, *models.User) error { return nil }
func (r *staticUserRepo) GetByID(context.Context, uuid.UUID) (*models.User, error) {
	return nil, repositories.ErrNotFound
}
func (r *staticUserRepo) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}
func (r *staticUserRepo) Update(context.Context, uuid.UUID, *models.UserUpdate) (*models.User, error) {
	return nil, repositories.ErrNotFound
}
func (r *staticUserRepo) Delete(context.Context, uuid.UUID) error { return nil }
func (r *staticUserRepo) List(context.Context, int, int) ([]*models.User, error) {
	return r.users, nil
}
func (r *staticUserRepo) ExpireTrials(context.Context, time.Time) (int64, error) { return 0, nil }

func accountBase() []*models.User {
	old := time.Now().AddDate(0, -3, 0)
	return []*models.User{
		{ID: uuid.New(), Plan: models.PlanProfessional, Status: models.UserStatusActive, CreatedAt: old},
		{ID: uuid.New(), Plan: models.PlanEnterprise, Status: models.UserStatusActive, CreatedAt: old},
		{ID: uuid.New(), Plan: models.PlanStarter, Status: models.UserStatusTrial, CreatedAt: time.Now()},
	}
}

func TestGetUserStats_CountsByStatusAndPlan(t *testing.T) {
	svc := NewAnalyticsService(&staticUserRepo{users: accountBase()}, nil)

	stats, err := svc.GetUserStats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 2, stats.ActiveUsers)
	assert.Equal(t, 1, stats.TrialUsers)
	assert.Equal(t, 0, stats.ExpiredUsers)
	assert.Equal(t, 1, stats.NewThisMonth)
	assert.Equal(t, 1, stats.ByPlan[models.PlanProfessional])
	assert.Equal(t, 1, stats.ByPlan[models.PlanEnterprise])
	assert.Equal(t, 1, stats.ByPlan[models.PlanStarter])
}

func TestGetRevenueStats_ExcludesExpiredTrials(t *testing.T) {
	users := append(accountBase(), &models.User{
		ID: uuid.New(), Plan: models.PlanStarter, Status: models.UserStatusExpired, CreatedAt: time.Now(),
	})
	svc := NewAnalyticsService(&staticUserRepo{users: users}, nil)

	userStats, err := svc.GetUserStats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, userStats.ExpiredUsers)

	revenue, err := svc.GetRevenueStats(context.Background())
	assert.NoError(t, err)
	// Same MRR as the base: the expired account no longer bills.
	assert.Equal(t, 447.0, revenue.MRR)
}

func TestGetRevenueStats_ProjectsFromPlanPrices(t *testing.T) {
	svc := NewAnalyticsService(&staticUserRepo{users: accountBase()}, nil)

	stats, err := svc.GetRevenueStats(context.Background())
	assert.NoError(t, err)

	// professional 99 + enterprise 299 + trial starter 49
	assert.Equal(t, 447.0, stats.MRR)
	assert.Equal(t, 447.0*12, stats.ARR)
	assert.InDelta(t, 149.0, stats.ARPU, 0.001)
	assert.Equal(t, 99.0, stats.ByPlan[models.PlanProfessional])
	assert.Equal(t, 299.0, stats.ByPlan[models.PlanEnterprise])
	assert.Equal(t, 49.0, stats.ByPlan[models.PlanStarter])
}

func TestGetRevenueStats_EmptyBase(t *testing.T) {
	svc := NewAnalyticsService(&staticUserRepo{}, nil)

	stats, err := svc.GetRevenueStats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0.0, stats.MRR)
	assert.Equal(t, 0.0, stats.ARR)
	assert.Equal(t, 0.0, stats.ARPU)
}
