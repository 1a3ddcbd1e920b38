// Package calendar builds the month grid, the day schedule and the client
// timelines the view layer renders.
package calendar

import (
	"cmp"
	"slices"
	"time"

	"github.com/hperssn/coachbook/internal/domain"
	"github.com/hperssn/coachbook/internal/schedule"
)

type Calendar struct {
	store        *schedule.Store
	availability *schedule.Availability
}

func New(store *schedule.Store, availability *schedule.Availability) *Calendar {
	return &Calendar{
		store:        store,
		availability: availability,
	}
}

type DayCell struct {
	Date        time.Time `json:"date"`
	Day         int       `json:"day"`
	HasSessions bool      `json:"hasSessions"`
	Today       bool      `json:"today"`
}

// Month is a Monday-first grid. Leading is the number of blank cells before
// the first day.
type Month struct {
	Year    int        `json:"year"`
	Month   time.Month `json:"month"`
	Leading int        `json:"leading"`
	Days    []DayCell  `json:"days"`
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (c *Calendar) Month(year int, month time.Month, now time.Time) Month {
	loc := now.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	busy := make(map[int]bool)
	for _, s := range c.store.Sessions() {
		start := s.Start.In(loc)
		if start.Year() == year && start.Month() == month {
			busy[start.Day()] = true
		}
	}

	m := Month{
		Year:    year,
		Month:   month,
		Leading: (int(first.Weekday()) + 6) % 7,
	}
	for d := 1; d <= last.Day(); d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, loc)
		m.Days = append(m.Days, DayCell{
			Date:        date,
			Day:         d,
			HasSessions: busy[d],
			Today:       sameDay(date, now),
		})
	}
	return m
}

type SlotKind string

const (
	SlotFree         SlotKind = "free"
	SlotUnavailable  SlotKind = "unavailable"
	SlotStart        SlotKind = "start"
	SlotContinuation SlotKind = "continuation"
)

type Slot struct {
	Time        time.Time `json:"time"`
	Kind        SlotKind  `json:"kind"`
	SessionID   string    `json:"sessionId,omitempty"`
	ClientName  string    `json:"clientName,omitempty"`
	DurationMin int       `json:"durationMin,omitempty"`
	// Span is how many slots a starting session covers.
	Span int `json:"span,omitempty"`
	// Durations lists what can be booked at a free slot.
	Durations []int `json:"durations,omitempty"`
}

// Day lays out the operating window of date slot by slot.
func (c *Calendar) Day(date time.Time) []Slot {
	var sessions []domain.Session
	for _, s := range c.store.Sessions() {
		if sameDay(s.Start.In(date.Location()), date) {
			sessions = append(sessions, s)
		}
	}

	step := c.availability.Hours().Step
	slots := c.availability.Slots(date)
	out := make([]Slot, 0, len(slots))

	for _, t := range slots {
		idx := slices.IndexFunc(sessions, func(s domain.Session) bool { return s.Includes(t) })
		if idx < 0 {
			durations := c.availability.AvailableDurations(t)
			kind := SlotFree
			if len(durations) == 0 {
				kind = SlotUnavailable
			}
			out = append(out, Slot{Time: t, Kind: kind, Durations: durations})
			continue
		}

		s := sessions[idx]
		slot := Slot{Time: t, Kind: SlotContinuation, SessionID: s.ID, DurationMin: s.DurationMin}
		if s.Start.Equal(t) {
			slot.Kind = SlotStart
			slot.Span = int((s.Interval().Duration() + step - 1) / step)
			if client, err := c.store.GetClient(s.ClientID); err == nil {
				slot.ClientName = client.Name
			}
		}
		out = append(out, slot)
	}

	return out
}

type EntryStatus string

const (
	EntryPast     EntryStatus = "past"
	EntryUpcoming EntryStatus = "upcoming"
)

type Entry struct {
	Session domain.Session `json:"session"`
	Status  EntryStatus    `json:"status"`
}

func byStart(a, b domain.Session) int {
	return cmp.Compare(a.Start.UnixNano(), b.Start.UnixNano())
}

// History returns the client's sessions that started before now, newest
// first.
func (c *Calendar) History(clientID string, now time.Time) ([]domain.Session, error) {
	if _, err := c.store.GetClient(clientID); err != nil {
		return nil, err
	}

	var past []domain.Session
	for _, s := range c.store.SessionsForClient(clientID) {
		if s.Elapsed(now) {
			past = append(past, s)
		}
	}
	slices.SortFunc(past, func(a, b domain.Session) int { return byStart(b, a) })
	return past, nil
}

// Schedule returns every session of the client, oldest first.
func (c *Calendar) Schedule(clientID string, now time.Time) ([]Entry, error) {
	if _, err := c.store.GetClient(clientID); err != nil {
		return nil, err
	}

	sessions := c.store.SessionsForClient(clientID)
	slices.SortFunc(sessions, byStart)

	out := make([]Entry, len(sessions))
	for i, s := range sessions {
		status := EntryUpcoming
		if s.Elapsed(now) {
			status = EntryPast
		}
		out[i] = Entry{Session: s, Status: status}
	}
	return out, nil
}
