package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hperssn/coachbook/internal/domain"
)

// Booking is a request to reserve a slot for a client.
type Booking struct {
	ClientID    string
	Start       time.Time
	DurationMin int
	LeadMin     int
}

// Booker creates sessions after validating them against the store and the
// operating hours.
type Booker struct {
	store        *Store
	availability *Availability
	logger       *slog.Logger
}

func NewBooker(store *Store, availability *Availability) *Booker {
	return &Booker{
		store:        store,
		availability: availability,
		logger:       store.logger,
	}
}

// Book validates input, then checks the client, the closing boundary and
// overlaps inside one store update so concurrent bookings cannot both win.
func (b *Booker) Book(ctx context.Context, req Booking) (domain.Session, error) {
	if err := domain.ValidateBooking(req.DurationMin, req.LeadMin, b.store.durations); err != nil {
		return domain.Session{}, err
	}
	if req.Start.IsZero() {
		return domain.Session{}, fmt.Errorf("%w: start time is required", domain.ErrInvalidInput)
	}

	var booked domain.Session
	err := b.store.Update(ctx, func(tx *Tx) error {
		if _, err := tx.GetClient(req.ClientID); err != nil {
			return err
		}

		res := b.availability.evaluate(req.Start, req.DurationMin, tx.FindConflicts)
		switch res.Status {
		case OutsideHours:
			hours := b.availability.hours
			return fmt.Errorf("%w: %s + %d min is not within %s-%s", domain.ErrOutsideHours,
				req.Start.Format("15:04"), req.DurationMin,
				hours.OpeningOn(req.Start).Format("15:04"), hours.ClosingOn(req.Start).Format("15:04"))
		case Conflict:
			return &domain.ConflictError{Sessions: res.Conflicts}
		}

		sess := domain.NewSession("", req.ClientID, req.Start, req.DurationMin, req.LeadMin)

		var err error
		booked, err = tx.AddSession(*sess)
		return err
	})
	if err != nil {
		return domain.Session{}, err
	}

	b.logger.Info("session booked",
		"session", booked.ID,
		"client", booked.ClientID,
		"start", booked.Start,
		"duration", booked.DurationMin,
	)

	return booked, nil
}
