// Package runner drives the periodic ledger and reminder ticks.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hperssn/coachbook/internal/schedule"
)

// Clock is the single time source for every tick.
type Clock func() time.Time

type TickEvent struct {
	At       time.Time
	Ledger   schedule.LedgerReport
	Reminder schedule.ReminderReport
	Err      error
}

type Driver struct {
	mu sync.Mutex

	ledger    *schedule.Ledger
	reminders *schedule.Reminders
	clock     Clock
	interval  time.Duration
	logger    *slog.Logger
}

type Option func(*Driver)

func WithClock(clock Clock) Option {
	return func(d *Driver) {
		d.clock = clock
	}
}

func WithInterval(interval time.Duration) Option {
	return func(d *Driver) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

func NewDriver(ledger *schedule.Ledger, reminders *schedule.Reminders, opts ...Option) *Driver {
	d := &Driver{
		ledger:    ledger,
		reminders: reminders,
		clock:     time.Now,
		interval:  time.Minute,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Tick runs the ledger, then the reminders, at the clock's current time.
func (d *Driver) Tick(ctx context.Context) TickEvent {
	d.mu.Lock()
	defer d.mu.Unlock()

	ev := TickEvent{At: d.clock()}

	var ledgerErr, reminderErr error
	ev.Ledger, ledgerErr = d.ledger.Tick(ctx, ev.At)
	ev.Reminder, reminderErr = d.reminders.Tick(ctx, ev.At)
	ev.Err = errors.Join(ledgerErr, reminderErr)

	if ev.Err != nil {
		d.logger.Error("tick failed", "at", ev.At, "error", ev.Err)
	}

	return ev
}

// Run ticks once immediately, catching up on anything missed while the
// process was down, then on every interval until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("driver started", "interval", d.interval)
	d.Tick(ctx)

	for {
		select {
		case <-ticker.C:
			d.Tick(ctx)

		case <-ctx.Done():
			d.logger.Info("driver stopped")
			return
		}
	}
}
