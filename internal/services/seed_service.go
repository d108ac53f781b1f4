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

// Reference accounts created by the demo seeder.
const (
	DemoUserEmail  = "demo@grantfinder.com"
	AdminUserEmail = "admin@grantfinder.com"

	demoUserPassword  = "demo1234"
	adminUserPassword = "admin123"
)

// SeedService bootstraps the demo dataset. Safe to run on every startup:
// each step checks for its own data and creates it only when absent.
type SeedService struct {
	userRepo    repositories.UserRepository
	appRepo     repositories.ApplicationRepository
	profileRepo repositories.BusinessProfileRepository
	hasher      PasswordHasher
}

func NewSeedService(userRepo repositories.UserRepository, appRepo repositories.ApplicationRepository, profileRepo repositories.BusinessProfileRepository, hasher PasswordHasher) *SeedService {
	return &SeedService{
		userRepo:    userRepo,
		appRepo:     appRepo,
		profileRepo: profileRepo,
		hasher:      hasher,
	}
}

// Run seeds the reference users, applications and business profile. Users go
// first: applications and the profile reference the demo user's id.
func (s *SeedService) Run(ctx context.Context) error {
	demoUser, err := s.ensureUser(ctx, DemoUserEmail, demoUserPassword, "Demo User", "Demo Company LLC", models.PlanProfessional, models.RoleOwner)
	if err != nil {
		return fmt.Errorf("failed to seed demo user: %w", err)
	}

	if _, err := s.ensureUser(ctx, AdminUserEmail, adminUserPassword, "Admin User", "Grant Finder Pro", models.PlanEnterprise, models.RoleAdmin); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.ensureDemoApplications(ctx, demoUser.ID); err != nil {
		return fmt.Errorf("failed to seed demo applications: %w", err)
	}

	if err := s.ensureDemoProfile(ctx, demoUser.ID); err != nil {
		return fmt.Errorf("failed to seed demo business profile: %w", err)
	}

	return nil
}

func (s *SeedService) ensureUser(ctx context.Context, email, password, fullName, companyName, plan, role string) (*models.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		CompanyName:  companyName,
		Plan:         plan,
		Role:         role,
		Status:       models.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("Seeded reference user %s", email)
	return user, nil
}

// ensureDemoApplications creates the fixed reference set once. Deadlines are
// relative to now so the seeded data never looks stale.
func (s *SeedService) ensureDemoApplications(ctx context.Context, userID uuid.UUID) error {
	existing, err := s.appRepo.GetByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now()
	awarded := 100000.0
	assignedTo := "Demo User"
	nsfNotes := "Strong technical proposal submitted"
	awsNotes := "Approved! $100K in AWS credits received"
	ilNotes := "Waiting for federal SBIR decision first"
	nsfSubmitted := now.AddDate(0, 0, -5)
	awsSubmitted := now.AddDate(0, 0, -20)

	apps := []*models.Application{
		{
			ID:            uuid.New(),
			UserID:        userID,
			GrantName:     "NSF SBIR Phase I",
			Provider:      "National Science Foundation",
			Amount:        275000,
			Status:        models.ApplicationStatusSubmitted,
			Deadline:      now.AddDate(0, 0, 60),
			AssignedTo:    &assignedTo,
			Notes:         &nsfNotes,
			SubmittedDate: &nsfSubmitted,
		},
		{
			ID:            uuid.New(),
			UserID:        userID,
			GrantName:     "AWS Activate Credits",
			Provider:      "Amazon Web Services",
			Amount:        100000,
			Status:        models.ApplicationStatusAwarded,
			Deadline:      now.AddDate(0, 0, 30),
			AwardAmount:   &awarded,
			AssignedTo:    &assignedTo,
			Notes:         &awsNotes,
			SubmittedDate: &awsSubmitted,
		},
		{
			ID:         uuid.New(),
			UserID:     userID,
			GrantName:  "Illinois SBIR Match",
			Provider:   "Illinois DCEO",
			Amount:     50000,
			Status:     models.ApplicationStatusInProgress,
			Deadline:   now.AddDate(0, 0, 90),
			AssignedTo: &assignedTo,
			Notes:      &ilNotes,
		},
	}

	for _, app := range apps {
		if err := s.appRepo.Create(ctx, app); err != nil {
			return err
		}
	}
	log.Printf("Seeded %d reference applications", len(apps))
	return nil
}

func (s *SeedService) ensureDemoProfile(ctx context.Context, userID uuid.UUID) error {
	_, err := s.profileRepo.GetByUser(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	profile := &models.BusinessProfile{
		ID:                uuid.New(),
		UserID:            userID,
		Mission:           "Help small businesses discover and win non-dilutive funding.",
		Problem:           "Founders spend weeks hunting for grants they rarely qualify for.",
		Solution:          "A curated grant catalog with application tracking and grantor insight.",
		TargetGeography:   "United States",
		Industries:        []string{"software", "professional-services"},
		RevenueBand:       "$100K-$500K",
		EmployeeCount:     8,
		FoundedYear:       2021,
		CompletionPercent: 100,
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return err
	}
	log.Printf("Seeded reference business profile for %s", DemoUserEmail)
	return nil
}
