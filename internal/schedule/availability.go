package schedule

import (
	"fmt"
	"time"

	"github.com/hperssn/coachbook/internal/domain"
)

// Hours is the daily operating window, as offsets from local midnight.
// Slots are enumerated from Open up to Close in Step increments; a session
// must end at or before Close.
type Hours struct {
	Open  time.Duration
	Close time.Duration
	Step  time.Duration
}

func DefaultHours() Hours {
	return Hours{
		Open:  10 * time.Hour,
		Close: 20 * time.Hour,
		Step:  30 * time.Minute,
	}
}

func (h Hours) Validate() error {
	switch {
	case h.Open < 0 || h.Close > 24*time.Hour:
		return fmt.Errorf("%w: hours must lie within one day", domain.ErrInvalidInput)
	case h.Open >= h.Close:
		return fmt.Errorf("%w: opening %s is not before closing %s", domain.ErrInvalidInput, h.Open, h.Close)
	case h.Step <= 0:
		return fmt.Errorf("%w: slot step must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// on returns the wall-clock time offset from midnight on t's date.
func on(t time.Time, offset time.Duration) time.Time {
	y, m, d := t.Date()
	hour := int(offset / time.Hour)
	minute := int(offset % time.Hour / time.Minute)
	return time.Date(y, m, d, hour, minute, 0, 0, t.Location())
}

// ClosingOn is the closing boundary for the day containing t.
func (h Hours) ClosingOn(t time.Time) time.Time {
	return on(t, h.Close)
}

func (h Hours) OpeningOn(t time.Time) time.Time {
	return on(t, h.Open)
}

type Status int

const (
	Available Status = iota
	OutsideHours
	Conflict
)

func (s Status) String() string {
	switch s {
	case Available:
		return "available"
	case OutsideHours:
		return "outside_hours"
	case Conflict:
		return "conflict"
	}
	return "unknown"
}

// Result is the outcome of checking one candidate booking. A conflict is a
// normal result, not an error.
type Result struct {
	Interval  domain.Interval
	Status    Status
	Conflicts []domain.Session
}

func (r Result) OK() bool {
	return r.Status == Available
}

// Availability answers which durations can be booked at a start time.
type Availability struct {
	store *Store
	hours Hours
}

func NewAvailability(store *Store, hours Hours) *Availability {
	return &Availability{
		store: store,
		hours: hours,
	}
}

func (a *Availability) Hours() Hours {
	return a.hours
}

func (a *Availability) evaluate(start time.Time, minutes int, find func(domain.Interval) []domain.Session) Result {
	iv := domain.NewInterval(start, minutes)

	if start.Before(a.hours.OpeningOn(start)) || iv.End.After(a.hours.ClosingOn(start)) {
		return Result{Interval: iv, Status: OutsideHours}
	}

	if found := find(iv); len(found) > 0 {
		return Result{Interval: iv, Status: Conflict, Conflicts: found}
	}

	return Result{Interval: iv, Status: Available}
}

// Check evaluates one duration. The only error is a duration outside the
// allowed set.
func (a *Availability) Check(start time.Time, minutes int) (Result, error) {
	if !domain.AllowedDuration(minutes, a.store.durations) {
		return Result{}, fmt.Errorf("%w: duration %d min is not one of %v", domain.ErrInvalidInput, minutes, a.store.durations)
	}
	return a.evaluate(start, minutes, a.store.FindConflicts), nil
}

// AvailableDurations returns, ascending, every allowed duration that starts
// after opening, fits before closing and overlaps nothing. Each duration is judged on its own.
func (a *Availability) AvailableDurations(start time.Time) []int {
	var out []int
	for _, minutes := range a.store.durations {
		if a.evaluate(start, minutes, a.store.FindConflicts).OK() {
			out = append(out, minutes)
		}
	}
	return out
}

// CanStart reports whether any duration is bookable at start.
func (a *Availability) CanStart(start time.Time) bool {
	return len(a.AvailableDurations(start)) > 0
}

// Slots enumerates slot start times in [Open, Close) on day's date.
func (a *Availability) Slots(day time.Time) []time.Time {
	var out []time.Time
	closing := a.hours.ClosingOn(day)
	for t := a.hours.OpeningOn(day); t.Before(closing); t = t.Add(a.hours.Step) {
		out = append(out, t)
	}
	return out
}
