package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// DefaultDurations are the bookable session lengths in minutes.
var DefaultDurations = []int{60, 90, 120}

type Session struct {
	ID               string
	ClientID         string
	Start            time.Time
	DurationMin      int
	LeadMin          int
	Completed        bool
	ModuleDeducted   bool
	NotificationSent bool
	CreatedAt        time.Time
}

func NewSession(id, clientID string, start time.Time, durationMin, leadMin int) *Session {
	if id == "" {
		id = uuid.New().String()
	}

	return &Session{
		ID:          id,
		ClientID:    clientID,
		Start:       start,
		DurationMin: durationMin,
		LeadMin:     leadMin,
		CreatedAt:   time.Now(),
	}
}

func (s Session) Interval() Interval {
	return NewInterval(s.Start, s.DurationMin)
}

// End is always derived from Start and DurationMin.
func (s Session) End() time.Time {
	return s.Interval().End
}

// NotificationTime is when the reminder becomes due.
func (s Session) NotificationTime() time.Time {
	return s.Start.Add(-time.Duration(s.LeadMin) * time.Minute)
}

func (s Session) Includes(t time.Time) bool {
	return s.Interval().Contains(t)
}

// Elapsed reports whether the session has started before now.
func (s Session) Elapsed(now time.Time) bool {
	return s.Start.Before(now)
}

func AllowedDuration(minutes int, allowed []int) bool {
	if len(allowed) == 0 {
		allowed = DefaultDurations
	}
	return slices.Contains(allowed, minutes)
}

func ValidateBooking(durationMin, leadMin int, allowed []int) error {
	if !AllowedDuration(durationMin, allowed) {
		return invalid("duration %d min is not one of %v", durationMin, allowedOrDefault(allowed))
	}
	if leadMin <= 0 {
		return invalid("reminder lead time must be positive, got %d", leadMin)
	}
	return nil
}

func (s Session) Validate(allowed []int) error {
	if s.ClientID == "" {
		return invalid("session has no client")
	}
	if s.Start.IsZero() {
		return invalid("session has no start time")
	}
	return ValidateBooking(s.DurationMin, s.LeadMin, allowed)
}

// CheckTransition rejects replacements that would reset a one-way flag.
func (s Session) CheckTransition(prev Session) error {
	switch {
	case prev.ModuleDeducted && !s.ModuleDeducted:
		return invalid("session %s: module deduction cannot be undone", s.ID)
	case prev.NotificationSent && !s.NotificationSent:
		return invalid("session %s: reminder already sent", s.ID)
	case prev.Completed && !s.Completed:
		return invalid("session %s: already completed", s.ID)
	}
	return nil
}

func allowedOrDefault(allowed []int) []int {
	if len(allowed) == 0 {
		return DefaultDurations
	}
	return allowed
}
