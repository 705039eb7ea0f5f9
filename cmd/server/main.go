package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"safarsathi-service/internal/domain/repository"
	"safarsathi-service/internal/infrastructure/config"
	"safarsathi-service/internal/infrastructure/oauth"
	"safarsathi-service/internal/infrastructure/persistence"
	"safarsathi-service/internal/infrastructure/security"
	"safarsathi-service/internal/interface/gmail"
	repo "safarsathi-service/internal/interface/repository"
	"safarsathi-service/internal/interface/rest"
	"safarsathi-service/internal/usecase"
	"safarsathi-service/pkg/logger"
	"safarsathi-service/pkg/metrics"
	"safarsathi-service/templates"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Starting SafarSathi Service", "version", cfg.AppVersion)

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	store, err := persistence.NewMongoStore(ctx, persistence.MongoConfig{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDB,
		Username: cfg.MongoUser,
		Password: cfg.MongoPassword,
		AppName:  "safarsathi-service",
	})
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	if err := store.EnsureIndexes(ctx, repo.MongoIndexes()); err != nil {
		log.Fatal("Failed to create MongoDB indexes", "error", err)
	}
	db := store.DB

	// Set up repositories
	actorRepo := repo.NewMongoActorRepository(db)
	offeringRepo := repo.NewMongoServiceOfferingRepository(db)
	locationRepo := repo.NewMongoLocationRepository(db)
	requestRepo := repo.NewMongoLocationRequestRepository(db)
	packageRepo := repo.NewMongoPackageRepository(db)
	bookingRepo := repo.NewMongoBookingRepository(db)

	// Verification codes live in Redis when configured, otherwise in memory
	var codeRepo repository.CodeRepository
	var closeCodes func()
	if cfg.RedisURL != "" {
		redisClient, err := persistence.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			log.Fatal("Failed to connect to Redis", "error", err)
		}
		codeRepo = repo.NewRedisCodeRepository(redisClient)
		closeCodes = func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Redis close error", "error", err)
			}
		}
	} else {
		log.Warn("REDIS_URL not set, verification codes are kept in memory")
		memoryCodes := repo.NewMemoryCodeRepository(cfg.OTPSweep, time.Now)
		codeRepo = memoryCodes
		closeCodes = memoryCodes.Close
	}

	// Payment ledger is optional
	var ledger repository.PaymentOrderRepository
	if cfg.PostgresURI != "" {
		gormDB, err := persistence.NewPostgresDB(cfg.PostgresURI, &repo.PaymentOrders{})
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		ledger = repo.NewGormPaymentOrderRepository(gormDB)
	} else {
		log.Warn("POSTGRES_DSN not set, payment orders are not recorded")
	}

	// Set up image storage
	var imageRepo repository.ImageRepository
	if cfg.S3Bucket != "" {
		s3Repo, err := repo.NewS3ImageRepository(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicBaseURL)
		if err != nil {
			log.Fatal("Failed to set up S3 image storage", "error", err)
		}
		imageRepo = s3Repo
	} else {
		log.Warn("S3_BUCKET not set, images are kept in memory")
		imageRepo = repo.NewMemoryImageRepository()
	}

	// Set up outbound mail through Gmail when OAuth credentials are present
	var mailer repository.MailRepository = repo.NewLogMailRepository(log)
	gmailOAuth := oauth.NewGmailOAuth(
		cfg.GmailClientID,
		cfg.GmailClientSecret,
		cfg.GmailRefreshToken,
		"",
		log,
	)
	if gmailOAuth.Configured() {
		gmailMailer, err := gmail.NewGmailMailer(ctx, gmailOAuth.GetTokenSource(ctx), cfg.MailFrom, log)
		if err != nil {
			log.Fatal("Failed to create Gmail mailer", "error", err)
		}
		mailer = gmailMailer
	} else {
		log.Warn("Gmail credentials not set, emails are logged instead of sent")
	}
	mailer = repo.NewMongoMailLogRepository(db, mailer, log)

	// Set up collaborators
	m := metrics.NewMetrics("safarsathi", prometheus.DefaultRegisterer)
	renderer, err := templates.NewRenderer()
	if err != nil {
		log.Fatal("Failed to parse email templates", "error", err)
	}
	notifier := usecase.NewNotifier(mailer, renderer, m, cfg.FrontendURL, log)
	hasher := security.NewPasswordHasher(cfg.BcryptCost)
	tokens := security.NewTokenSigner(cfg.JWTSecret, cfg.JWTExpires)
	gateway := repo.NewStripePaymentGateway(cfg.StripeSecretKey, log)

	// Set up use cases
	uc := rest.UseCases{
		Accounts:  usecase.NewAccounts(actorRepo, codeRepo, imageRepo, hasher, tokens, notifier, cfg.OTPTTL, log),
		Gate:      usecase.NewAccessGate(actorRepo, tokens, log),
		Offerings: usecase.NewServiceOfferingRegistry(offeringRepo, actorRepo, m, log),
		Locations: usecase.NewLocationRegistry(locationRepo, requestRepo, actorRepo, imageRepo, notifier, m, log),
		Packages:  usecase.NewPackageComposer(packageRepo, offeringRepo, locationRepo, actorRepo, imageRepo, m, log),
		Bookings:  usecase.NewBookingEngine(bookingRepo, packageRepo, m, log),
		Payments:  usecase.NewPayments(gateway, ledger, cfg.PaymentCurrency, m, log),
	}

	// Set up HTTP server
	handler := rest.NewHandler(uc, rest.Options{
		AppVersion:     cfg.AppVersion,
		AllowedOrigins: cfg.AllowedOrigins(),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		CookieTTL:      cfg.CookieExpires,
		SecureCookies:  cfg.SecureCookies,
	}, m, log)
	app := rest.NewApp(handler)

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()
	closeCodes()

	// Disconnect from MongoDB
	if err := store.Close(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("SafarSathi Service stopped")
}
