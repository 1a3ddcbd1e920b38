// Package notify delivers session reminders to the trainer.
package notify

import (
	"context"
	"time"
)

// Reminder is one "session starts soon" message.
type Reminder struct {
	// Title is the notification headline.
	Title string `json:"title"`

	// Body is the human-readable message.
	Body string `json:"body"`

	// SourceID is the session the reminder belongs to. Platforms use it as a
	// tag so repeated deliveries replace each other.
	SourceID string `json:"sourceId"`

	// IconRef points at the icon shown with the notification.
	IconRef string `json:"iconRef"`

	// SessionStart is when the session begins.
	SessionStart time.Time `json:"sessionStart"`
}

// Notifier is what the scheduling core calls to deliver a reminder.
type Notifier interface {
	Deliver(ctx context.Context, r Reminder) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, r Reminder) error

func (f NotifierFunc) Deliver(ctx context.Context, r Reminder) error {
	return f(ctx, r)
}

// Sender is one delivery channel registered with a Dispatcher.
type Sender interface {
	// Send delivers the reminder. Returns an error if it could not be sent.
	Send(ctx context.Context, r Reminder) error

	// Name returns the sender's name for logging purposes.
	Name() string
}
