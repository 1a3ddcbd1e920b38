// Package schedule is the booking core: the session store, availability,
// the module ledger and the reminder state machine.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/hperssn/coachbook/internal/domain"
	"github.com/hperssn/coachbook/internal/storage"
)

// Store owns every client and session. All mutations go through Update, which
// writes the full collections to the repository before the change becomes
// visible to readers.
type Store struct {
	mu sync.RWMutex

	repo   storage.Repository
	logger *slog.Logger

	durations []int

	clients      map[string]domain.Client
	clientOrder  []string
	sessions     map[string]domain.Session
	sessionOrder []string
}

type Option func(*Store)

// WithDurations sets the bookable session lengths in minutes.
func WithDurations(minutes []int) Option {
	return func(s *Store) {
		if len(minutes) > 0 {
			s.durations = slices.Clone(minutes)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open loads both collections from repo.
func Open(ctx context.Context, repo storage.Repository, opts ...Option) (*Store, error) {
	s := &Store{
		repo:      repo,
		logger:    slog.Default(),
		durations: slices.Clone(domain.DefaultDurations),
		clients:   make(map[string]domain.Client),
		sessions:  make(map[string]domain.Session),
	}

	for _, opt := range opts {
		opt(s)
	}
	slices.Sort(s.durations)

	snap, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}

	for _, c := range snap.Clients {
		if _, dup := s.clients[c.ID]; dup {
			s.logger.Warn("duplicate client record ignored", "client", c.ID)
			continue
		}
		s.clients[c.ID] = c
		s.clientOrder = append(s.clientOrder, c.ID)
	}

	for _, sess := range snap.Sessions {
		if _, dup := s.sessions[sess.ID]; dup {
			s.logger.Warn("duplicate session record ignored", "session", sess.ID)
			continue
		}
		if _, ok := s.clients[sess.ClientID]; !ok {
			s.logger.Warn("session references unknown client", "session", sess.ID, "client", sess.ClientID)
		}
		s.sessions[sess.ID] = sess
		s.sessionOrder = append(s.sessionOrder, sess.ID)
	}

	s.logger.Debug("store loaded", "clients", len(s.clients), "sessions", len(s.sessions))

	return s, nil
}

// Durations returns the allowed session lengths, ascending.
func (s *Store) Durations() []int {
	return slices.Clone(s.durations)
}

// Update runs fn as one atomic mutation. Changes staged on tx are persisted
// and published only if fn returns nil and the save succeeds. fn must use tx
// for reads; calling Store read methods from inside fn deadlocks.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newTx(s)
	if err := fn(tx); err != nil {
		return err
	}

	if !tx.dirty() {
		return nil
	}

	if err := s.repo.Save(ctx, tx.snapshot()); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}

	tx.commit()
	return nil
}

func (s *Store) AddClient(ctx context.Context, c domain.Client) (domain.Client, error) {
	var added domain.Client
	err := s.Update(ctx, func(tx *Tx) error {
		var err error
		added, err = tx.AddClient(c)
		return err
	})
	return added, err
}

func (s *Store) GetClient(id string) (domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return domain.Client{}, domain.NewNotFoundError("client", id)
	}
	return c, nil
}

// UpdateClient replaces the stored client with the same ID.
func (s *Store) UpdateClient(ctx context.Context, c domain.Client) error {
	return s.Update(ctx, func(tx *Tx) error {
		return tx.UpdateClient(c)
	})
}

// Clients returns every client in creation order.
func (s *Store) Clients() []domain.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Client, 0, len(s.clientOrder))
	for _, id := range s.clientOrder {
		out = append(out, s.clients[id])
	}
	return out
}

func (s *Store) AddSession(ctx context.Context, sess domain.Session) (domain.Session, error) {
	var added domain.Session
	err := s.Update(ctx, func(tx *Tx) error {
		var err error
		added, err = tx.AddSession(sess)
		return err
	})
	return added, err
}

func (s *Store) GetSession(id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.NewNotFoundError("session", id)
	}
	return sess, nil
}

// UpdateSession replaces the stored session with the same ID.
func (s *Store) UpdateSession(ctx context.Context, sess domain.Session) error {
	return s.Update(ctx, func(tx *Tx) error {
		return tx.UpdateSession(sess)
	})
}

// Sessions returns every session in creation order.
func (s *Store) Sessions() []domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Session, 0, len(s.sessionOrder))
	for _, id := range s.sessionOrder {
		out = append(out, s.sessions[id])
	}
	return out
}

// SessionsForClient returns the client's sessions in no particular order.
func (s *Store) SessionsForClient(clientID string) []domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Session
	for _, sess := range s.sessions {
		if sess.ClientID == clientID {
			out = append(out, sess)
		}
	}
	return out
}

// FindConflicts returns every stored session overlapping iv.
func (s *Store) FindConflicts(iv domain.Interval) []domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return conflicts(s.sessionOrder, s.sessions, iv)
}

func conflicts(order []string, sessions map[string]domain.Session, iv domain.Interval) []domain.Session {
	var out []domain.Session
	for _, id := range order {
		if sess := sessions[id]; sess.Interval().Overlaps(iv) {
			out = append(out, sess)
		}
	}
	return out
}
