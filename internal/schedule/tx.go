package schedule

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/hperssn/coachbook/internal/domain"
	"github.com/hperssn/coachbook/internal/storage"
)

// Tx stages changes for one Store.Update call. Reads see staged changes.
type Tx struct {
	store *Store

	clients     map[string]domain.Client
	newClients  []string
	sessions    map[string]domain.Session
	newSessions []string
}

func newTx(s *Store) *Tx {
	return &Tx{
		store:    s,
		clients:  make(map[string]domain.Client),
		sessions: make(map[string]domain.Session),
	}
}

func (tx *Tx) dirty() bool {
	return len(tx.clients) > 0 || len(tx.sessions) > 0
}

func (tx *Tx) GetClient(id string) (domain.Client, error) {
	if c, ok := tx.clients[id]; ok {
		return c, nil
	}
	if c, ok := tx.store.clients[id]; ok {
		return c, nil
	}
	return domain.Client{}, domain.NewNotFoundError("client", id)
}

func (tx *Tx) GetSession(id string) (domain.Session, error) {
	if sess, ok := tx.sessions[id]; ok {
		return sess, nil
	}
	if sess, ok := tx.store.sessions[id]; ok {
		return sess, nil
	}
	return domain.Session{}, domain.NewNotFoundError("session", id)
}

func (tx *Tx) AddClient(c domain.Client) (domain.Client, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if err := c.Validate(); err != nil {
		return domain.Client{}, err
	}
	if _, err := tx.GetClient(c.ID); err == nil {
		return domain.Client{}, domain.ErrAlreadyExists
	}

	tx.clients[c.ID] = c
	tx.newClients = append(tx.newClients, c.ID)
	return c, nil
}

func (tx *Tx) UpdateClient(c domain.Client) error {
	if _, err := tx.GetClient(c.ID); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	tx.clients[c.ID] = c
	return nil
}

// AddSession inserts a session for an existing client. Conflicts are not
// checked here; see Booker.
func (tx *Tx) AddSession(sess domain.Session) (domain.Session, error) {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	if err := sess.Validate(tx.store.durations); err != nil {
		return domain.Session{}, err
	}
	if _, err := tx.GetClient(sess.ClientID); err != nil {
		return domain.Session{}, err
	}
	if _, err := tx.GetSession(sess.ID); err == nil {
		return domain.Session{}, domain.ErrAlreadyExists
	}

	tx.sessions[sess.ID] = sess
	tx.newSessions = append(tx.newSessions, sess.ID)
	return sess, nil
}

func (tx *Tx) UpdateSession(sess domain.Session) error {
	prev, err := tx.GetSession(sess.ID)
	if err != nil {
		return err
	}
	if err := sess.CheckTransition(prev); err != nil {
		return err
	}

	// Stored sessions keep their length even if the allowed set changed.
	allowed := tx.store.durations
	if sess.DurationMin == prev.DurationMin {
		allowed = append(slices.Clone(allowed), prev.DurationMin)
	}
	if err := sess.Validate(allowed); err != nil {
		return err
	}
	// Flag updates on a session whose client was removed still go through.
	if sess.ClientID != prev.ClientID {
		if _, err := tx.GetClient(sess.ClientID); err != nil {
			return err
		}
	}

	tx.sessions[sess.ID] = sess
	return nil
}

func (tx *Tx) Clients() []domain.Client {
	out := make([]domain.Client, 0, len(tx.store.clientOrder)+len(tx.newClients))
	for _, id := range tx.clientOrder() {
		c, _ := tx.GetClient(id)
		out = append(out, c)
	}
	return out
}

func (tx *Tx) Sessions() []domain.Session {
	out := make([]domain.Session, 0, len(tx.store.sessionOrder)+len(tx.newSessions))
	for _, id := range tx.sessionOrder() {
		sess, _ := tx.GetSession(id)
		out = append(out, sess)
	}
	return out
}

func (tx *Tx) FindConflicts(iv domain.Interval) []domain.Session {
	merged := maps.Clone(tx.store.sessions)
	maps.Copy(merged, tx.sessions)
	return conflicts(tx.sessionOrder(), merged, iv)
}

func (tx *Tx) clientOrder() []string {
	return append(slices.Clone(tx.store.clientOrder), tx.newClients...)
}

func (tx *Tx) sessionOrder() []string {
	return append(slices.Clone(tx.store.sessionOrder), tx.newSessions...)
}

func (tx *Tx) snapshot() *storage.Snapshot {
	return &storage.Snapshot{
		Clients:  tx.Clients(),
		Sessions: tx.Sessions(),
	}
}

func (tx *Tx) commit() {
	s := tx.store
	maps.Copy(s.clients, tx.clients)
	maps.Copy(s.sessions, tx.sessions)
	s.clientOrder = append(s.clientOrder, tx.newClients...)
	s.sessionOrder = append(s.sessionOrder, tx.newSessions...)
}
