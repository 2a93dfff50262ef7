// Command worker runs one background job to completion and exits. It is
// meant for external cron triggers when the API's in-process scheduler is
// disabled.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finara/internal/config"
	"finara/internal/database"
	apperrors "finara/internal/errors"
	"finara/internal/jobs"
	"finara/internal/logger"
	"finara/internal/mailer"
	"finara/internal/scheduler"
	"finara/internal/services"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	exitRunning = 3
)

func main() {
	logger.Init(os.Getenv("ENV"))
	code := run()
	logger.Sync()
	os.Exit(code)
}

func run() int {
	log := logger.Named("worker")

	migrateFirst := flag.Bool("migrate", false, "apply pending migrations before running")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: worker [-migrate] <%s|%s>\n", jobs.ReportJobName, jobs.RecurringJobName)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		return exitUsage
	}
	name := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Errorw("failed to load configuration", "error", err)
		return exitFailed
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		log.Errorw("failed to connect to database", "error", err)
		return exitFailed
	}
	defer dbManager.Close()

	if *migrateFirst {
		if err := dbManager.RunMigrations(database.DefaultMigrationsPath); err != nil {
			log.Errorw("failed to run migrations", "error", err)
			return exitFailed
		}
	}

	db := dbManager.DB()
	analytics := services.NewAnalyticsService(db)
	sender := mailer.NewSender(cfg.ResendAPIKey, cfg.MailFrom, logger.Named("mailer"))
	reportMailer := mailer.NewReportMailer(sender, cfg.MailTimeout, logger.Named("mailer"))

	sched := scheduler.New(db, logger.Named("scheduler"), cfg.SchedulerInterval)
	jobs.Register(sched, db, analytics, reportMailer, logger.Named("jobs"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := sched.RunNow(ctx, name)
	switch {
	case apperrors.Is(err, apperrors.ErrJobNotFound):
		log.Errorw("unknown job", "job", name, "available", sched.Names())
		return exitUsage
	case apperrors.Is(err, apperrors.ErrJobAlreadyRunning):
		log.Warnw("job already running elsewhere", "job", name)
		return exitRunning
	}

	if result != nil {
		out, _ := json.Marshal(result)
		fmt.Println(string(out))
	}
	if err != nil {
		log.Errorw("job failed", "job", name, "error", err)
		return exitFailed
	}
	return exitOK
}
