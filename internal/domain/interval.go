package domain

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start time.Time, minutes int) Interval {
	return Interval{
		Start: start,
		End:   start.Add(time.Duration(minutes) * time.Minute),
	}
}

// Overlaps reports whether the two ranges share an instant. Back-to-back
// intervals do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.End.After(other.Start) && i.Start.Before(other.End)
}

// Contains reports whether t lies in [Start, End).
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}
