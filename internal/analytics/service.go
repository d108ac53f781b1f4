package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/msseason/ai-grant-finder/internal/models"
	"github.com/msseason/ai-grant-finder/internal/repositories"
	"github.com/msseason/ai-grant-finder/internal/services"
)

// Monthly plan prices in USD, used for revenue projections.
var planPrices = map[string]float64{
	models.PlanStarter:      49,
	models.PlanProfessional: 99,
	models.PlanEnterprise:   299,
}

// AnalyticsService computes the admin dashboard aggregates.
type AnalyticsService struct {
	userRepo repositories.UserRepository
	appSvc   services.ApplicationService
}

// UserStats summarizes the account base.
type UserStats struct {
	TotalUsers   int            `json:"total_users"`
	ActiveUsers  int            `json:"active_users"`
	TrialUsers   int            `json:"trial_users"`
	ExpiredUsers int            `json:"expired_users"`
	NewThisMonth int            `json:"new_this_month"`
	ByPlan       map[string]int `json:"by_plan"`
	LastUpdated  time.Time      `json:"last_updated"`
}

// RevenueStats projects subscription revenue from plan prices. Trial accounts
// count toward MRR at their selected plan since that is what they convert to.
type RevenueStats struct {
	MRR         float64            `json:"mrr"`
	ARR         float64            `json:"arr"`
	ARPU        float64            `json:"arpu"`
	ByPlan      map[string]float64 `json:"by_plan"`
	LastUpdated time.Time          `json:"last_updated"`
}

func NewAnalyticsService(userRepo repositories.UserRepository, appSvc services.ApplicationService) *AnalyticsService {
	return &AnalyticsService{
		userRepo: userRepo,
		appSvc:   appSvc,
	}
}

func (a *AnalyticsService) GetUserStats(ctx context.Context) (*UserStats, error) {
	users, err := a.userRepo.List(ctx, 10000, 0) // Get all, should paginate in production
	if err != nil {
		return nil, fmt.Errorf("failed to list users for analytics: %w", err)
	}

	stats := &UserStats{
		ByPlan:      make(map[string]int),
		LastUpdated: time.Now(),
	}

	monthStart := time.Date(time.Now().Year(), time.Now().Month(), 1, 0, 0, 0, 0, time.UTC)
	for _, user := range users {
		stats.TotalUsers++
		switch user.Status {
		case models.UserStatusActive:
			stats.ActiveUsers++
		case models.UserStatusTrial:
			stats.TrialUsers++
		case models.UserStatusExpired:
			stats.ExpiredUsers++
		}
		if !user.CreatedAt.Before(monthStart) {
			stats.NewThisMonth++
		}
		stats.ByPlan[user.Plan]++
	}

	return stats, nil
}

func (a *AnalyticsService) GetRevenueStats(ctx context.Context) (*RevenueStats, error) {
	users, err := a.userRepo.List(ctx, 10000, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list users for analytics: %w", err)
	}

	stats := &RevenueStats{
		ByPlan:      make(map[string]float64),
		LastUpdated: time.Now(),
	}

	billable := 0
	for _, user := range users {
		price, ok := planPrices[user.Plan]
		if !ok {
			continue
		}
		if user.Status != models.UserStatusActive && user.Status != models.UserStatusTrial {
			continue
		}
		stats.MRR += price
		stats.ByPlan[user.Plan] += price
		billable++
	}

	stats.ARR = stats.MRR * 12
	if billable > 0 {
		stats.ARPU = stats.MRR / float64(billable)
	}
	return stats, nil
}

// GetApplicationStats reports the platform-wide application aggregate, served
// through the application service's cache.
func (a *AnalyticsService) GetApplicationStats(ctx context.Context) (*models.ApplicationStats, error) {
	return a.appSvc.GetGlobalStats(ctx)
}
