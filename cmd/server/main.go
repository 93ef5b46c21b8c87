package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tandemhq/tandem/internal"
	"github.com/tandemhq/tandem/internal/billing"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/email"
	"github.com/tandemhq/tandem/internal/handler"
	"github.com/tandemhq/tandem/internal/metrics"
	"github.com/tandemhq/tandem/internal/middleware"
	"github.com/tandemhq/tandem/internal/repository"
	"github.com/tandemhq/tandem/internal/service"
	"github.com/tandemhq/tandem/internal/storage"
	"github.com/tandemhq/tandem/internal/worker"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// Initialize file storage
	var store storage.Storage
	switch cfg.StorageProvider {
	case storage.ProviderR2:
		store, err = storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
	default:
		store, err = storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
	}
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	// Initialize email
	mailer := email.NewSender(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	}, logger)

	// Initialize billing (optional; handlers degrade gracefully)
	var billingService billing.Service
	var subscriptionService service.SubscriptionService
	if cfg.StripeSecretKey != "" {
		billingService = billing.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripePriceIDs)
		subscriptionService = service.NewSubscriptionService(repo, billingService, cfg.BaseURL, logger)
		logger.Info("Billing enabled", "prices", len(cfg.StripePriceIDs))
	} else {
		logger.Warn("Billing disabled: STRIPE_SECRET_KEY not set")
	}

	// Initialize services
	userService := service.NewUserService(db, repo, logger)
	tenantService := service.NewTenantService(repo, logger)
	employeeService := service.NewEmployeeService(repo, logger)
	feedbackService := service.NewFeedbackService(repo, mailer, cfg.BaseURL, logger)
	goalService := service.NewGoalService(repo, logger)
	reviewService := service.NewReviewService(repo, logger)
	analyticsService := service.NewAnalyticsService(repo, logger)
	accessService := service.NewAccessService(repo, logger)
	avatarProcessor := service.NewAvatarProcessor()

	// Initialize middleware
	isSecure := cfg.Env != "development"
	authMw := middleware.NewAuthMiddleware(userService, logger, isSecure)
	guard := middleware.NewFeatureGuard(accessService, logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	authLimiter := middleware.NewAuthRateLimiter(logger)
	publicLimiter := middleware.NewRateLimitMiddleware(
		middleware.NewRateLimiter(60, time.Minute, logger), logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService, logger, isSecure)
	pricingHandler := handler.NewPricingHandler(logger)
	employeeHandler := handler.NewEmployeeHandler(employeeService, avatarProcessor, store, logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, logger)
	goalHandler := handler.NewGoalHandler(goalService, logger)
	reviewHandler := handler.NewReviewHandler(reviewService, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, reviewService, guard, logger)
	featureHandler := handler.NewFeatureHandler(guard, logger)
	billingHandler := handler.NewBillingHandler(subscriptionService, billingService, logger)
	adminHandler := handler.NewAdminHandler(tenantService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics (basic-auth protected when credentials are configured)
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	// Public API
	mux.HandleFunc("GET /api/pricing", pricingHandler.List)
	mux.Handle("POST /api/auth/register", authLimiter.LimitRegister(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", authLimiter.LimitLogin(http.HandlerFunc(authHandler.Login)))

	// Anonymous feedback form. Rate limited since the token is the only
	// credential.
	mux.Handle("GET /f/{token}", publicLimiter.Limit(http.HandlerFunc(feedbackHandler.PublicGet)))
	mux.Handle("POST /f/{token}", publicLimiter.Limit(http.HandlerFunc(feedbackHandler.PublicSubmit)))

	// Stripe webhook (signature-verified, never session-authed)
	mux.HandleFunc("POST /webhooks/stripe", billingHandler.Webhook)

	// Middleware stacks
	requireUser := middleware.Stack(authMw.WithUser, authMw.RequireUser)
	requireManager := middleware.Stack(authMw.WithUser, authMw.RequireUser, authMw.RequireTenantRole)
	requirePlatformAdmin := middleware.Stack(authMw.WithUser, authMw.RequireUser, authMw.RequirePlatformAdmin)

	gated := func(feature domain.Feature) func(http.Handler) http.Handler {
		return middleware.Stack(authMw.WithUser, authMw.RequireUser, guard.RequireFeature(feature))
	}

	route := func(pattern string, stack func(http.Handler) http.Handler, h http.HandlerFunc) {
		mux.Handle(pattern, stack(h))
	}

	// Session management
	route("POST /api/auth/logout", requireUser, authHandler.Logout)
	route("GET /api/auth/me", requireUser, authHandler.Me)
	route("POST /api/auth/change-password", requireUser, authHandler.ChangePassword)

	// Advisory feature availability check for the client UI
	route("GET /api/features/{name}", requireUser, featureHandler.Check)

	// Employee directory (core; seat limits are enforced in the service)
	route("GET /api/employees", requireUser, employeeHandler.List)
	route("POST /api/employees", requireManager, employeeHandler.Create)
	route("GET /api/employees/{id}", requireUser, employeeHandler.Get)
	route("PATCH /api/employees/{id}", requireManager, employeeHandler.Update)
	route("DELETE /api/employees/{id}", requireManager, employeeHandler.Delete)
	route("PUT /api/employees/{id}/avatar", requireManager, employeeHandler.UploadAvatar)
	route("GET /api/employees/{id}/avatar", requireUser, employeeHandler.GetAvatar)

	// 360 feedback
	route("POST /api/feedback-requests", gated(domain.FeatureFeedback360), feedbackHandler.Create)
	route("GET /api/feedback-requests", gated(domain.FeatureFeedback360), feedbackHandler.List)
	route("GET /api/feedback-requests/{id}", gated(domain.FeatureFeedback360), feedbackHandler.Get)
	route("POST /api/feedback-requests/{id}/close", gated(domain.FeatureFeedback360), feedbackHandler.Close)
	route("GET /api/feedback-requests/{id}/responses", gated(domain.FeatureFeedback360), feedbackHandler.ListResponses)

	// Goal tracking
	route("POST /api/goals", gated(domain.FeatureGoalTracking), goalHandler.Create)
	route("GET /api/goals", gated(domain.FeatureGoalTracking), goalHandler.List)
	route("GET /api/goals/{id}", gated(domain.FeatureGoalTracking), goalHandler.Get)
	route("PATCH /api/goals/{id}", gated(domain.FeatureGoalTracking), goalHandler.Update)

	// Performance reviews
	route("POST /api/reviews", gated(domain.FeaturePerformanceReviews), reviewHandler.Create)
	route("GET /api/reviews", gated(domain.FeaturePerformanceReviews), reviewHandler.List)
	route("GET /api/reviews/{id}", gated(domain.FeaturePerformanceReviews), reviewHandler.Get)
	route("PATCH /api/reviews/{id}", gated(domain.FeaturePerformanceReviews), reviewHandler.Update)
	route("POST /api/reviews/{id}/finalize", gated(domain.FeaturePerformanceReviews), reviewHandler.Finalize)

	// Analytics carries tier info so the response can say which tier
	// produced it; export branches on the custom-reports feature.
	analyticsStack := middleware.Stack(authMw.WithUser, authMw.RequireUser,
		guard.AddTierInfo, guard.RequireFeature(domain.FeatureAdvancedAnalytics))
	route("GET /api/analytics", analyticsStack, analyticsHandler.Summary)
	route("GET /api/export/reviews", gated(domain.FeatureDataExport), analyticsHandler.ExportReviews)

	// Billing (tenant managers only)
	route("POST /api/billing/checkout", requireManager, billingHandler.Checkout)
	route("POST /api/billing/portal", requireManager, billingHandler.Portal)

	// Platform admin
	route("GET /api/admin/tenants", requirePlatformAdmin, adminHandler.ListTenants)
	route("GET /api/admin/tenants/{id}", requirePlatformAdmin, adminHandler.GetTenant)
	route("PATCH /api/admin/tenants/{id}", requirePlatformAdmin, adminHandler.UpdateTenant)

	// Outer middleware applies to every route
	root := middleware.Stack(
		securityMw.Handler,
		metrics.Middleware,
		loggingMw.Handler,
	)(mux)

	// ==========================================================================
	// Background worker
	// ==========================================================================

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if cfg.WorkerEnabled {
		w := worker.New(cfg.WorkerPollInterval, logger,
			&worker.SessionCleanupTask{Users: userService},
			&worker.FeedbackExpiryTask{Feedback: feedbackService},
		)
		go w.Start(workerCtx)
	}

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	stopWorker()

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
