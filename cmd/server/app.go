package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hperssn/coachbook/internal/config"
	"github.com/hperssn/coachbook/internal/notify"
	"github.com/hperssn/coachbook/internal/runner"
	"github.com/hperssn/coachbook/internal/schedule"
	"github.com/hperssn/coachbook/internal/storage"
)

// app holds everything the subcommands share.
type app struct {
	repo         storage.Repository
	store        *schedule.Store
	availability *schedule.Availability
	events       *notify.Broadcaster
	driver       *runner.Driver
}

func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := slog.Default()

	repo, err := storage.Open(cfg.Store, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}

	store, err := schedule.Open(ctx, repo,
		schedule.WithDurations(cfg.Durations),
		schedule.WithLogger(logger),
	)
	if err != nil {
		repo.Close()
		return nil, err
	}

	events := notify.NewBroadcaster(16)

	dispatcher := notify.NewDispatcher().
		WithLogger(logger).
		WithTimeout(30 * time.Second)
	dispatcher.Register(notify.NewLogSender(logger))
	dispatcher.Register(events)
	if cfg.WebhookURL != "" {
		dispatcher.Register(notify.NewWebhookSender(cfg.WebhookURL))
	}

	reminders := schedule.NewReminders(store, dispatcher,
		schedule.WithTolerance(cfg.Tolerance),
		schedule.WithRequireConfirmation(cfg.ConfirmDelivery),
		schedule.WithIcon(cfg.Icon),
	)

	driver := runner.NewDriver(schedule.NewLedger(store), reminders,
		runner.WithInterval(cfg.Tick),
		runner.WithLogger(logger),
	)

	return &app{
		repo:         repo,
		store:        store,
		availability: schedule.NewAvailability(store, cfg.Hours()),
		events:       events,
		driver:       driver,
	}, nil
}

func (a *app) Close() error {
	return a.repo.Close()
}
