package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hperssn/coachbook/internal/domain"
	"github.com/hperssn/coachbook/internal/notify"
)

type ReminderState int

const (
	// Pending: the notification time has not been reached.
	Pending ReminderState = iota
	// Due: notification time reached, session not started, not yet sent.
	Due
	// Fired: the reminder was sent. Terminal.
	Fired
	// Expired: the session started without a reminder. No reminder will fire.
	Expired
)

func (s ReminderState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Due:
		return "due"
	case Fired:
		return "fired"
	case Expired:
		return "expired"
	}
	return "unknown"
}

// StateAt derives the reminder state of sess at now.
func StateAt(sess domain.Session, now time.Time) ReminderState {
	switch {
	case sess.NotificationSent:
		return Fired
	case !now.Before(sess.Start):
		return Expired
	case now.Before(sess.NotificationTime()):
		return Pending
	default:
		return Due
	}
}

const DefaultReminderIcon = "/assets/icons/dumbbell-icon.png"

// Reminders fires one reminder per session through a Notifier.
type Reminders struct {
	store    *Store
	notifier notify.Notifier
	logger   *slog.Logger

	tolerance           time.Duration
	requireConfirmation bool
	icon                string

	// serializes ticks so a reminder is never delivered twice
	mu sync.Mutex
}

type ReminderOption func(*Reminders)

// WithTolerance enables the near-miss check: a reminder also fires when now
// is within d of its notification time, even slightly before it.
func WithTolerance(d time.Duration) ReminderOption {
	return func(r *Reminders) {
		r.tolerance = d
	}
}

// WithRequireConfirmation marks a reminder sent only after the notifier
// reports success. Failed deliveries are retried on later ticks while the
// reminder is still due.
func WithRequireConfirmation(require bool) ReminderOption {
	return func(r *Reminders) {
		r.requireConfirmation = require
	}
}

func WithIcon(ref string) ReminderOption {
	return func(r *Reminders) {
		r.icon = ref
	}
}

func NewReminders(store *Store, notifier notify.Notifier, opts ...ReminderOption) *Reminders {
	r := &Reminders{
		store:    store,
		notifier: notifier,
		logger:   store.logger,
		icon:     DefaultReminderIcon,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

type ReminderReport struct {
	Fired  []string
	Failed []string
}

// shouldFire checks the catch-up window first, so a reminder missed during a
// long gap between ticks still fires as long as the session has not started.
func (r *Reminders) shouldFire(sess domain.Session, now time.Time) bool {
	if sess.NotificationSent || !now.Before(sess.Start) {
		return false
	}

	notifyAt := sess.NotificationTime()
	if !notifyAt.After(now) {
		return true
	}

	if r.tolerance > 0 {
		diff := now.Sub(notifyAt)
		if diff < 0 {
			diff = -diff
		}
		return diff < r.tolerance
	}

	return false
}

func (r *Reminders) message(sess domain.Session) notify.Reminder {
	name := "your client"
	if client, err := r.store.GetClient(sess.ClientID); err == nil {
		name = client.Name
	}

	return notify.Reminder{
		Title:        "Training reminder",
		Body:         fmt.Sprintf("Training with %s in %d minutes", name, sess.LeadMin),
		SourceID:     sess.ID,
		IconRef:      r.icon,
		SessionStart: sess.Start,
	}
}

// Tick delivers every reminder that should fire at now, then records it as
// sent. Safe to call at any cadence.
func (r *Reminders) Tick(ctx context.Context, now time.Time) (ReminderReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		report ReminderReport
		errs   []error
	)

	for _, sess := range r.store.Sessions() {
		if !r.shouldFire(sess, now) {
			continue
		}

		if err := r.notifier.Deliver(ctx, r.message(sess)); err != nil {
			r.logger.Warn("reminder delivery failed", "session", sess.ID, "error", err)
			if r.requireConfirmation {
				report.Failed = append(report.Failed, sess.ID)
				continue
			}
		}

		if err := r.markSent(ctx, sess.ID); err != nil {
			r.logger.Error("reminder not recorded", "session", sess.ID, "error", err)
			errs = append(errs, fmt.Errorf("mark reminder %s sent: %w", sess.ID, err))
			continue
		}

		report.Fired = append(report.Fired, sess.ID)
		r.logger.Info("reminder fired", "session", sess.ID, "start", sess.Start)
	}

	return report, errors.Join(errs...)
}

func (r *Reminders) markSent(ctx context.Context, id string) error {
	return r.store.Update(ctx, func(tx *Tx) error {
		sess, err := tx.GetSession(id)
		if err != nil {
			return err
		}
		if sess.NotificationSent {
			return nil
		}
		sess.NotificationSent = true
		return tx.UpdateSession(sess)
	})
}
