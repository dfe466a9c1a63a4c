// Package server owns application lifecycle: the HTTP server, the
// background jobs, and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"HockeyQuant/internal/usecase"
	"HockeyQuant/pkg/config"
	pkghttp "HockeyQuant/pkg/http"
	"HockeyQuant/pkg/logger"
	"HockeyQuant/pkg/util"

	"github.com/go-co-op/gocron/v2"
)

// App wires the HTTP server and the background jobs together.
type App struct {
	cfg       *config.Config
	log       *logger.Logger
	server    *pkghttp.Server
	scheduler *usecase.LockScheduler
	tracker   *usecase.AccuracyTracker
	cron      gocron.Scheduler
	closers   []io.Closer
}

func NewApp(
	cfg *config.Config,
	log *logger.Logger,
	server *pkghttp.Server,
	scheduler *usecase.LockScheduler,
	tracker *usecase.AccuracyTracker,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		server:    server,
		scheduler: scheduler,
		tracker:   tracker,
	}
}

// AddCloser registers a resource to close on shutdown, last first.
func (a *App) AddCloser(c io.Closer) {
	a.closers = append(a.closers, c)
}

// Run starts everything and blocks until SIGINT/SIGTERM.
func (a *App) Run() error {
	if err := a.startJobs(); err != nil {
		return fmt.Errorf("start jobs: %w", err)
	}

	if err := a.server.Start(); err != nil {
		return fmt.Errorf("start http: %w", err)
	}

	a.log.Info("application started",
		logger.String("environment", a.cfg.Environment),
		logger.Int("port", a.cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return a.shutdown()
}

// startJobs schedules the lock poll and the nightly grading run.
func (a *App) startJobs() error {
	cron, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return err
	}
	a.cron = cron

	_, err = cron.NewJob(
		gocron.DurationJob(a.cfg.Jobs.LockPollInterval),
		gocron.NewTask(a.lockPoll),
	)
	if err != nil {
		return fmt.Errorf("lock poll job: %w", err)
	}

	_, err = cron.NewJob(
		gocron.CronJob(a.cfg.Jobs.GradeCron, false),
		gocron.NewTask(a.gradePending),
	)
	if err != nil {
		return fmt.Errorf("grade job: %w", err)
	}

	cron.Start()
	return nil
}

func (a *App) lockPoll() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	date := util.DateKey(time.Now())
	if _, err := a.scheduler.StorePredictions(ctx, date); err != nil {
		a.log.Warn("lock poll failed",
			logger.String("date", date),
			logger.Error(err))
	}
}

func (a *App) gradePending() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	total, dates, err := a.tracker.UpdateAllPending(ctx)
	if err != nil {
		a.log.Warn("nightly grading failed", logger.Error(err))
		return
	}
	a.log.Info("nightly grading finished",
		logger.Int("graded", total),
		logger.Strings("dates", dates))
}

func (a *App) shutdown() error {
	a.log.Info("shutting down")

	if a.cron != nil {
		if err := a.cron.Shutdown(); err != nil {
			a.log.Warn("cron shutdown", logger.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(ctx); err != nil {
		a.log.Warn("http shutdown", logger.Error(err))
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn("close resource", logger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
