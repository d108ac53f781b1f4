package background

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/msseason/ai-grant-finder/internal/repositories"
	"github.com/msseason/ai-grant-finder/internal/services"
)

const deadlineAlertWindow = 7 * 24 * time.Hour

// JobScheduler manages the recurring background jobs: catalog refresh, stats
// warm-up, deadline alerts and the trial expiry sweep.
type JobScheduler struct {
	scheduler     gocron.Scheduler
	grantsService services.GrantsService
	appService    services.ApplicationService
	appRepo       repositories.ApplicationRepository
	userRepo      repositories.UserRepository
	jobs          map[string]gocron.Job
	mu            sync.RWMutex
}

func NewJobScheduler(grantsService services.GrantsService, appService services.ApplicationService, appRepo repositories.ApplicationRepository, userRepo repositories.UserRepository) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:     scheduler,
		grantsService: grantsService,
		appService:    appService,
		appRepo:       appRepo,
		userRepo:      userRepo,
		jobs:          make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Grants catalog refresh - every hour
	catalogJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.refreshGrantsCatalog),
		gocron.WithName("grants-catalog-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create catalog refresh job: %v", err)
	} else {
		js.addJob("catalog-refresh", catalogJob)
	}

	// Stats warm-up - every 5 minutes
	statsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(js.warmApplicationStats),
		gocron.WithName("application-stats-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create stats refresh job: %v", err)
	} else {
		js.addJob("stats-refresh", statsJob)
	}

	// Deadline alerts - every 6 hours
	alertsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(6*time.Hour),
		gocron.NewTask(js.processDeadlineAlerts),
		gocron.WithName("deadline-alerts"),
	)
	if err != nil {
		log.Printf("Failed to create deadline alerts job: %v", err)
	} else {
		js.addJob("deadline-alerts", alertsJob)
	}

	// Trial expiry sweep - every hour
	trialJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.sweepExpiredTrials),
		gocron.WithName("trial-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create trial expiry sweep job: %v", err)
	} else {
		js.addJob("trial-sweep", trialJob)
	}

	js.mu.RLock()
	count := len(js.jobs)
	js.mu.RUnlock()
	log.Printf("Registered %d background jobs", count)
}

func (js *JobScheduler) addJob(name string, job gocron.Job) {
	js.mu.Lock()
	defer js.mu.Unlock()
	js.jobs[name] = job
}

func (js *JobScheduler) refreshGrantsCatalog() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := js.grantsService.RefreshCatalog(ctx); err != nil {
		log.Printf("Grants catalog refresh failed: %v", err)
	}
}

// warmApplicationStats recomputes the platform-wide aggregate so the admin
// dashboard reads from a warm cache.
func (js *JobScheduler) warmApplicationStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if _, err := js.appService.GetGlobalStats(ctx); err != nil {
		log.Printf("Application stats refresh failed: %v", err)
	}
}

// sweepExpiredTrials moves trial accounts whose trial window has closed to
// expired. Expired accounts drop out of the revenue projection until they pick
// a plan again.
func (js *JobScheduler) sweepExpiredTrials() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	expired, err := js.userRepo.ExpireTrials(ctx, time.Now())
	if err != nil {
		log.Printf("Trial expiry sweep failed: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("Trial expiry sweep moved %d accounts to expired", expired)
	}
}

// processDeadlineAlerts logs open applications whose deadline falls within
// the alert window. TODO: deliver these through the notification channel once
// email sending lands.
func (js *JobScheduler) processDeadlineAlerts() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cutoff := time.Now().Add(deadlineAlertWindow)
	apps, err := js.appRepo.ListUpcomingDeadlines(ctx, cutoff)
	if err != nil {
		log.Printf("Deadline alert scan failed: %v", err)
		return
	}

	for _, app := range apps {
		days := int(time.Until(app.Deadline).Hours() / 24)
		log.Printf("Deadline alert: %s (%s) due in %d days for user %s", app.GrantName, app.Provider, days, app.UserID)
	}
}
