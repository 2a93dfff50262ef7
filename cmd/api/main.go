package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finara/internal/config"
	"finara/internal/database"
	"finara/internal/jobs"
	"finara/internal/logger"
	"finara/internal/mailer"
	"finara/internal/middleware"
	"finara/internal/scheduler"
	"finara/internal/server"
	"finara/internal/services"
	"finara/internal/validator"
)

// @title           Finara API
// @version         1.0
// @description     Finara tracks income and expenses, computes period analytics and emails monthly reports.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 15 * time.Second

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(database.DefaultMigrationsPath); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	db := dbManager.DB()
	userService := services.NewUserService(db)
	transactionService := services.NewTransactionService(db)
	analyticsService := services.NewAnalyticsService(db)
	reportService := services.NewReportService(db)
	auditService := services.NewAuditService(db, logger.Named("audit"))

	sender := mailer.NewSender(appConfig.ResendAPIKey, appConfig.MailFrom, logger.Named("mailer"))
	reportMailer := mailer.NewReportMailer(sender, appConfig.MailTimeout, logger.Named("mailer"))

	sched := scheduler.New(db, logger.Named("scheduler"), appConfig.SchedulerInterval)
	jobs.Register(sched, db, analyticsService, reportMailer, logger.Named("jobs"))

	router := server.NewRouter(server.Deps{
		Log:                log,
		Tokens:             middleware.NewTokenManager(appConfig.JWTSecret, appConfig.JWTExpirationDur),
		PipelineAPIKey:     appConfig.PipelineAPIKey,
		UserService:        userService,
		TransactionService: transactionService,
		AnalyticsService:   analyticsService,
		ReportService:      reportService,
		AuditService:       auditService,
		Jobs:               sched,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	schedulerDone := make(chan struct{})
	if appConfig.SchedulerEnabled {
		go func() {
			defer close(schedulerDone)
			sched.Start(ctx)
		}()
	} else {
		log.Info("Scheduler disabled, jobs run only through the pipeline endpoints")
		close(schedulerDone)
	}

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting Finara backend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			stop()
			<-schedulerDone
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
	<-schedulerDone

	return nil
}
