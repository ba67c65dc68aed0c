// Package main provides the main entry point for the Digital Ads Platform backend
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/adsphere/adsphere/app/handlers"
	"github.com/adsphere/adsphere/app/middleware"
	"github.com/adsphere/adsphere/app/router"
	"github.com/adsphere/adsphere/app/services"
	businessflow "github.com/adsphere/adsphere/business_flow"
	"github.com/adsphere/adsphere/config"
	_ "github.com/adsphere/adsphere/docs"
	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/repository"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Digital Ads Platform API...")

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	config.SetupLogging(cfg.Logging)

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := cfg.Server.Address()
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(
			&models.User{},
			&models.UserSession{},
			&models.OTPVerification{},
			&models.AuditLog{},
			&models.Plan{},
			&models.Subscription{},
			&models.Payment{},
			&models.Campaign{},
			&models.CampaignMedia{},
		); err != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeNotificationService picks providers based on configuration
func initializeNotificationService(cfg *config.ProductionConfig) services.NotificationService {
	var emailProvider services.EmailProvider
	if cfg.Email.Host != "" {
		emailProvider = services.NewSMTPEmailProvider(cfg.Email.Host, cfg.Email.Port, cfg.Email.Username, cfg.Email.Password, cfg.Email.FromEmail)
	} else {
		emailProvider = services.NewMockEmailProvider()
	}

	var smsProvider services.SMSProvider
	if cfg.SMS.ProviderDomain != "" && cfg.SMS.ProviderDomain != "mock" {
		smsProvider = services.NewHTTPSMSProvider(cfg.SMS.APIKey, cfg.SMS.SourceNumber)
	} else {
		smsProvider = services.NewMockSMSProvider()
	}

	return services.NewNotificationService(emailProvider, smsProvider)
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, 30*time.Second)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewUserSessionRepository(db)
	otpRepo := repository.NewOTPVerificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	planRepo := repository.NewPlanRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	mediaRepo := repository.NewCampaignMediaRepository(db)

	// Services
	notificationService := initializeNotificationService(cfg)

	captchaSvc, err := services.NewCaptchaServiceRotate(cfg.Security.CaptchaTTL, 15, 300)
	if err != nil {
		return nil, err
	}

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	fileStore, err := services.NewLocalFileStore(cfg.Upload.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}

	// Flows
	signupFlow := businessflow.NewSignupFlow(
		userRepo,
		otpRepo,
		sessionRepo,
		auditRepo,
		tokenService,
		notificationService,
		db,
	)

	loginFlow := businessflow.NewLoginFlow(
		userRepo,
		sessionRepo,
		auditRepo,
		tokenService,
		db,
	)

	adminAuthFlow := businessflow.NewAdminAuthFlow(
		userRepo,
		sessionRepo,
		auditRepo,
		tokenService,
		captchaSvc,
	)

	planFlow := businessflow.NewPlanFlow(
		planRepo,
		subscriptionRepo,
		auditRepo,
		rc,
		&cfg.Cache,
	)

	paymentFlow := businessflow.NewPaymentFlow(
		paymentRepo,
		subscriptionRepo,
		planRepo,
		userRepo,
		auditRepo,
		notificationService,
		db,
	)

	campaignFlow := businessflow.NewCampaignFlow(
		campaignRepo,
		mediaRepo,
		userRepo,
		planRepo,
		subscriptionRepo,
		auditRepo,
		db,
	)

	reviewFlow := businessflow.NewMediaReviewFlow(
		mediaRepo,
		campaignRepo,
		auditRepo,
		fileStore,
		db,
	)

	uploadFlow := businessflow.NewUploadFlow(fileStore, auditRepo)

	adminFlow := businessflow.NewAdminFlow(userRepo, subscriptionRepo, planRepo)

	// Handlers
	h := router.Handlers{
		Auth:        handlers.NewAuthHandler(signupFlow, loginFlow),
		AdminAuth:   handlers.NewAdminAuthHandler(adminAuthFlow),
		Plan:        handlers.NewPlanHandler(planFlow),
		Payment:     handlers.NewPaymentHandler(paymentFlow),
		Campaign:    handlers.NewCampaignHandler(campaignFlow, reviewFlow),
		MediaReview: handlers.NewMediaReviewHandler(reviewFlow),
		Upload:      handlers.NewUploadHandler(uploadFlow),
		Admin:       handlers.NewAdminHandler(adminFlow),
	}

	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	appRouter := router.NewFiberRouter(h, authMiddleware, cfg.Security.AllowedOrigins)

	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
