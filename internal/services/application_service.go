package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/msseason/ai-grant-finder/internal/models"
	"github.com/msseason/ai-grant-finder/internal/repositories"
)

// ErrInvalidStatus is returned when an application carries an unknown
// lifecycle status.
var ErrInvalidStatus = errors.New("unknown application status")

const statsCacheTTL = 5 * time.Minute

// StatsCache is the slice of the cache holding computed application stats,
// keyed by scope ("all" or a user id).
type StatsCache interface {
	GetStats(ctx context.Context, scope string) (*models.ApplicationStats, error)
	SetStats(ctx context.Context, scope string, stats *models.ApplicationStats, ttl time.Duration) error
	DeleteStats(ctx context.Context, scope string) error
}

// ApplicationService owns validation and stats caching on top of the
// application repository. Every mutation invalidates the affected stats
// scopes.
type ApplicationService interface {
	Create(ctx context.Context, app *models.Application) error
	Get(ctx context.Context, id uuid.UUID) (*models.Application, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Application, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.Application, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.ApplicationUpdate) (*models.Application, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetUserStats(ctx context.Context, userID uuid.UUID) (*models.ApplicationStats, error)
	GetGlobalStats(ctx context.Context) (*models.ApplicationStats, error)
}

type applicationService struct {
	appRepo repositories.ApplicationRepository
	stats   StatsCache
}

func NewApplicationService(appRepo repositories.ApplicationRepository, stats StatsCache) ApplicationService {
	return &applicationService{appRepo: appRepo, stats: stats}
}

func (s *applicationService) Create(ctx context.Context, app *models.Application) error {
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	if app.Status == "" {
		app.Status = models.ApplicationStatusDraft
	}
	if !models.ValidApplicationStatus(app.Status) {
		return ErrInvalidStatus
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	s.invalidateStats(ctx, app.UserID)
	return nil
}

func (s *applicationService) Get(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return s.appRepo.GetByID(ctx, id)
}

func (s *applicationService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Application, error) {
	return s.appRepo.GetByUser(ctx, userID)
}

func (s *applicationService) ListAll(ctx context.Context, limit, offset int) ([]*models.Application, error) {
	return s.appRepo.List(ctx, limit, offset)
}

func (s *applicationService) Update(ctx context.Context, id uuid.UUID, patch *models.ApplicationUpdate) (*models.Application, error) {
	if patch.Status != nil && !models.ValidApplicationStatus(*patch.Status) {
		return nil, ErrInvalidStatus
	}

	// Moving into submitted stamps the submission date unless the caller
	// provided one.
	if patch.Status != nil && *patch.Status == models.ApplicationStatusSubmitted && patch.SubmittedDate == nil {
		now := time.Now()
		patch.SubmittedDate = &now
	}

	app, err := s.appRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, app.UserID)
	return app, nil
}

// Delete removes the application. The lookup first is deliberate: it yields
// ErrNotFound for missing ids and the owner id for cache invalidation.
func (s *applicationService) Delete(ctx context.Context, id uuid.UUID) error {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.appRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	s.invalidateStats(ctx, app.UserID)
	return nil
}

func (s *applicationService) GetUserStats(ctx context.Context, userID uuid.UUID) (*models.ApplicationStats, error) {
	return s.getStats(ctx, userID.String(), &userID)
}

func (s *applicationService) GetGlobalStats(ctx context.Context) (*models.ApplicationStats, error) {
	return s.getStats(ctx, "all", nil)
}

func (s *applicationService) getStats(ctx context.Context, scope string, userID *uuid.UUID) (*models.ApplicationStats, error) {
	if s.stats != nil {
		if cached, err := s.stats.GetStats(ctx, scope); err == nil && cached != nil {
			return cached, nil
		}
	}

	stats, err := s.appRepo.GetStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute application stats: %w", err)
	}

	if s.stats != nil {
		if err := s.stats.SetStats(ctx, scope, stats, statsCacheTTL); err != nil {
			log.Printf("Failed to cache application stats for %s: %v", scope, err)
		}
	}
	return stats, nil
}

func (s *applicationService) invalidateStats(ctx context.Context, userID uuid.UUID) {
	if s.stats == nil {
		return
	}
	if err := s.stats.DeleteStats(ctx, userID.String()); err != nil {
		log.Printf("Failed to invalidate stats cache for user %s: %v", userID, err)
	}
	if err := s.stats.DeleteStats(ctx, "all"); err != nil {
		log.Printf("Failed to invalidate global stats cache: %v", err)
	}
}
