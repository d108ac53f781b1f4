package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"github.com/msseason/ai-grant-finder/internal/analytics"
	"github.com/msseason/ai-grant-finder/internal/caching"
	"github.com/msseason/ai-grant-finder/internal/handlers"
	"github.com/msseason/ai-grant-finder/internal/jobs/background"
	"github.com/msseason/ai-grant-finder/internal/middleware"
	"github.com/msseason/ai-grant-finder/internal/repositories"
	"github.com/msseason/ai-grant-finder/internal/services"
	"github.com/msseason/ai-grant-finder/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; tokens will not survive restarts")
	}
	tokenTTL := envInt("TOKEN_TTL_SECONDS", 3600)
	refreshTTL := envInt("REFRESH_TTL_SECONDS", 7*24*3600)

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := envInt("REDIS_DB", 0)

	// MinIO configuration
	minioEndpoint := envString("MINIO_ENDPOINT", "localhost:9000")
	minioAccessKey := envString("MINIO_ACCESS_KEY", "minioadmin")
	minioSecretKey := envString("MINIO_SECRET_KEY", "minioadmin")
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"

	minioSvc, err := services.NewMinioService(minioEndpoint, minioAccessKey, minioSecretKey, minioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}
	if err := minioSvc.EnsureBucketExists(context.Background(), services.DocumentBucket); err != nil {
		log.Printf("WARNING: Failed to ensure document bucket exists: %v", err)
	}

	// External grants datasets; optional, the API degrades to an empty
	// catalog when unset.
	grantsCatalogURL := os.Getenv("GRANTS_CATALOG_URL")
	grantorAnalysisURL := os.Getenv("GRANTOR_ANALYSIS_URL")

	// Create repositories
	userRepo := repositories.NewUserRepository(pool)
	appRepo := repositories.NewApplicationRepository(pool)
	profileRepo := repositories.NewBusinessProfileRepository(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	hasher := services.NewBcryptHasher()
	authSvc := services.NewAuthService(userRepo, hasher, cacheSvc, jwtSecret, tokenTTL, refreshTTL)
	appSvc := services.NewApplicationService(appRepo, cacheSvc)
	exportSvc := services.NewExportService(appRepo)
	grantsSvc := services.NewGrantsService(&http.Client{Timeout: 10 * time.Second}, grantsCatalogURL, grantorAnalysisURL, cacheSvc)
	analyticsSvc := analytics.NewAnalyticsService(userRepo, appSvc)

	// Seed the demo dataset unless explicitly disabled
	if os.Getenv("SEED_DEMO_DATA") != "false" {
		seeder := services.NewSeedService(userRepo, appRepo, profileRepo, hasher)
		if err := seeder.Run(context.Background()); err != nil {
			log.Printf("WARNING: Demo data seeding failed: %v", err)
		}
	}

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo)
	appHandlers := handlers.NewApplicationHandlers(appSvc, exportSvc, minioSvc)
	profileHandlers := handlers.NewProfileHandlers(profileRepo)
	grantHandlers := handlers.NewGrantHandlers(grantsSvc)
	userHandlers := handlers.NewUserHandlers(userRepo)
	adminHandlers := handlers.NewAdminHandlers(analyticsSvc, cacheSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background jobs
	scheduler, err := background.NewJobScheduler(grantsSvc, appSvc, appRepo, userRepo)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	// API routes
	v1 := e.Group("/v1")

	// Authentication routes (no JWT required for signup/login)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/logout", authHandlers.Logout)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(authSvc))

	protected.GET("/me", authHandlers.Me)

	// Application routes
	protected.GET("/applications", appHandlers.List)
	protected.POST("/applications", appHandlers.Create)
	protected.GET("/applications/stats", appHandlers.Stats)
	protected.GET("/applications/export", appHandlers.ExportCSV)
	protected.GET("/applications/:id", appHandlers.Get)
	protected.PATCH("/applications/:id", appHandlers.Update)
	protected.DELETE("/applications/:id", appHandlers.Delete)
	protected.POST("/applications/:id/documents", appHandlers.UploadDocument)
	protected.GET("/applications/:id/documents/:name", appHandlers.GetDocumentURL)
	protected.DELETE("/applications/:id/documents/:name", appHandlers.DeleteDocument)

	// Business profile routes
	protected.GET("/profile", profileHandlers.Get)
	protected.PUT("/profile", profileHandlers.Put)
	protected.PATCH("/profile", profileHandlers.Patch)
	protected.DELETE("/profile", profileHandlers.Delete)

	// Grants catalog routes
	protected.GET("/grants", grantHandlers.List)
	protected.GET("/grants/search", grantHandlers.Search)
	protected.GET("/grants/:id", grantHandlers.Get)
	protected.GET("/grants/:id/analysis", grantHandlers.Analysis)

	// Admin routes
	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnlyMiddleware())
	admin.GET("/users", userHandlers.List)
	admin.GET("/users/:id", userHandlers.Get)
	admin.PATCH("/users/:id", userHandlers.Update)
	admin.DELETE("/users/:id", userHandlers.Delete)
	admin.GET("/analytics/users", adminHandlers.UserStats)
	admin.GET("/analytics/revenue", adminHandlers.RevenueStats)
	admin.GET("/analytics/applications", adminHandlers.ApplicationStats)
	admin.POST("/cache/invalidate", adminHandlers.InvalidateCache)

	// Start server
	port := envInt("PORT", 8080)

	log.Printf("Grant Finder server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
