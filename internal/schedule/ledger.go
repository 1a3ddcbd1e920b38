package schedule

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/hperssn/coachbook/internal/domain"
)

// Ledger deducts prepaid module credits once a session has started.
type Ledger struct {
	store  *Store
	logger *slog.Logger
}

func NewLedger(store *Store) *Ledger {
	return &Ledger{
		store:  store,
		logger: store.logger,
	}
}

type LedgerReport struct {
	Deducted  []string
	Completed []string
	// Unpaid lists started sessions left undeducted: single-plan clients,
	// missing clients, or an exhausted module balance.
	Unpaid []string
}

func (r LedgerReport) Changed() bool {
	return len(r.Deducted) > 0 || len(r.Completed) > 0
}

// Tick deducts one credit for every started, undeducted session whose client
// is on the module plan with credit left, oldest session first. Sessions
// whose end has passed are marked completed. Balances never go negative;
// repeated ticks with the same now change nothing further.
func (l *Ledger) Tick(ctx context.Context, now time.Time) (LedgerReport, error) {
	var report LedgerReport

	err := l.store.Update(ctx, func(tx *Tx) error {
		report = LedgerReport{}

		sessions := tx.Sessions()
		slices.SortStableFunc(sessions, func(a, b domain.Session) int {
			return cmp.Compare(a.Start.UnixNano(), b.Start.UnixNano())
		})

		for _, sess := range sessions {
			changed := false

			if !sess.ModuleDeducted && sess.Elapsed(now) {
				client, err := tx.GetClient(sess.ClientID)
				if err == nil && client.HasCredit() {
					client.ModuleCount--
					if err := tx.UpdateClient(client); err != nil {
						return err
					}
					sess.ModuleDeducted = true
					changed = true
					report.Deducted = append(report.Deducted, sess.ID)
				} else {
					report.Unpaid = append(report.Unpaid, sess.ID)
				}
			}

			if !sess.Completed && !sess.End().After(now) {
				sess.Completed = true
				changed = true
				report.Completed = append(report.Completed, sess.ID)
			}

			if changed {
				if err := tx.UpdateSession(sess); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return LedgerReport{}, err
	}

	if report.Changed() {
		l.logger.Info("ledger tick",
			"deducted", len(report.Deducted),
			"completed", len(report.Completed),
			"unpaid", len(report.Unpaid),
		)
	}

	return report, nil
}
