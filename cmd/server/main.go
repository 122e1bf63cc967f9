package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"examscheduler/config"
	authadapter "examscheduler/internal/adapters/auth"
	"examscheduler/internal/adapters/email"
	deliveryhttp "examscheduler/internal/delivery/http"
	"examscheduler/internal/delivery/http/controllers"
	"examscheduler/internal/delivery/http/middleware"
	"examscheduler/internal/repository/postgres"
	"examscheduler/internal/services"
)

// @title Exam Scheduler API
// @version 1.0
// @description Exam session scheduling with availability profiles, conflict detection, and automatic timetable generation.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}

	sessionRepo := postgres.NewSessionRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	catalogRepo := postgres.NewCatalogRepository(db)
	userRepo := postgres.NewUserRepository(db)

	hasher := authadapter.NewBcryptHasher(bcrypt.DefaultCost)
	issuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	verifier := authadapter.NewJWTVerifier(cfg.JWTSecret)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.AWSInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	renderer := email.NewTemplateRenderer()

	const serviceTimeout = 10 * time.Second
	notificationService := services.NewNotificationService(mailer, renderer)
	schedulingService := services.NewSchedulingService(sessionRepo, staffRepo, catalogRepo, notificationService, nil, nil, serviceTimeout)
	availabilityService := services.NewAvailabilityService(staffRepo, serviceTimeout)
	authService := services.NewAuthService(userRepo, hasher, issuer, time.Duration(cfg.JWTExpiryHours)*time.Hour)

	schedulingController := controllers.NewSchedulingController(logger, schedulingService)
	availabilityController := controllers.NewAvailabilityController(logger, availabilityService)
	authController := controllers.NewAuthController(logger, authService)

	mux := deliveryhttp.NewRouter(schedulingController, availabilityController, authController, verifier, logger)

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
