package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const defaultSendTimeout = 30 * time.Second

// Dispatcher routes reminders to registered senders. It implements Notifier.
type Dispatcher struct {
	senders []Sender
	mu      sync.RWMutex
	timeout time.Duration
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher that sends to each sender in turn, so
// Deliver can report every failure.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		senders: make([]Sender, 0),
		timeout: defaultSendTimeout,
		logger:  slog.Default(),
	}
}

func (d *Dispatcher) WithLogger(logger *slog.Logger) *Dispatcher {
	d.logger = logger
	return d
}

func (d *Dispatcher) WithTimeout(timeout time.Duration) *Dispatcher {
	d.timeout = timeout
	return d
}

// Register adds a sender to the dispatcher.
func (d *Dispatcher) Register(sender Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders = append(d.senders, sender)
}

// Deliver sends the reminder to every sender and joins the errors of all
// failed senders.
func (d *Dispatcher) Deliver(ctx context.Context, r Reminder) error {
	d.mu.RLock()
	senders := make([]Sender, len(d.senders))
	copy(senders, d.senders)
	d.mu.RUnlock()

	if len(senders) == 0 {
		return errors.New("notify: no senders registered")
	}

	var errs []error
	for _, sender := range senders {
		if err := d.sendWithRecover(ctx, sender, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) sendWithRecover(ctx context.Context, sender Sender, r Reminder) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("notify: panic in sender %s: %v", sender.Name(), rec)
			d.logger.Error("notify: sender panicked", "sender", sender.Name(), "panic", rec)
		}
	}()

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := sender.Send(sendCtx, r); err != nil {
		d.logger.Warn("notify: send failed", "sender", sender.Name(), "session", r.SourceID, "error", err)
		return fmt.Errorf("%s: %w", sender.Name(), err)
	}
	return nil
}
