package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/parishhub/eventcal/internal/calendar"
	"github.com/parishhub/eventcal/internal/config"
	"github.com/parishhub/eventcal/internal/eventstore"
	httpserver "github.com/parishhub/eventcal/internal/http"
	"github.com/parishhub/eventcal/internal/refresh"
	"github.com/parishhub/eventcal/internal/store"
	"github.com/parishhub/eventcal/internal/view"
)

func main() {
	// The standard logger is configured here so package-level helpers
	// (internal/http/errors) emit through the same JSON formatter.
	logrus.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.NewEntry(logrus.StandardLogger())

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.WithError(err).Fatal("failed to create db pool")
	}
	defer pool.Close()

	if err := store.ApplyMigrations(ctx, pool); err != nil {
		log.WithError(err).Fatal("failed to apply migrations")
	}

	stor := store.New(pool)
	events := eventstore.New(stor.Events, log)
	defer events.Close()

	// Initial load; a failure here is not fatal, the snapshot starts empty
	// and the scheduler keeps trying.
	if res, err := events.Refresh(ctx); err != nil {
		log.WithError(err).Error("initial refresh failed")
	} else {
		log.WithFields(logrus.Fields{"loaded": res.Loaded, "skipped": res.Skipped}).Info("initial refresh complete")
	}

	go func() {
		for range events.Subscribe() {
			log.WithField("events", len(events.Snapshot())).Info("event snapshot updated")
		}
	}()

	calCfg := calendar.Config{Location: cfg.Location(), WeekStart: cfg.WeekStartDay()}
	presenter := view.NewPresenter(events, calCfg, time.Now())

	scheduler, err := refresh.NewScheduler(cfg.RefreshCron, events, log)
	if err != nil {
		log.WithError(err).Fatal("invalid refresh schedule")
	}
	scheduler.Start()
	defer scheduler.Stop()

	r := httpserver.NewRouter(cfg, stor, events, presenter, log)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
