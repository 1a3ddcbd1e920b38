package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hperssn/coachbook/internal/domain"
	"github.com/hperssn/coachbook/internal/storage"
)

var day = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func newTestRepo() *storage.MemoryRepository {
	return storage.NewMemoryRepository()
}

func newTestStore(t *testing.T) (*Store, *storage.MemoryRepository) {
	t.Helper()

	repo := storage.NewMemoryRepository()
	store, err := Open(context.Background(), repo)
	require.NoError(t, err)
	return store, repo
}

func addClient(t *testing.T, s *Store, name string, plan domain.TrainingType, credits int) domain.Client {
	t.Helper()

	c, err := s.AddClient(context.Background(), domain.Client{Name: name, TrainingType: plan, ModuleCount: credits})
	require.NoError(t, err)
	return c
}

func addSession(t *testing.T, s *Store, clientID string, start time.Time, minutes, lead int) domain.Session {
	t.Helper()

	sess, err := s.AddSession(context.Background(), domain.Session{ClientID: clientID, Start: start, DurationMin: minutes, LeadMin: lead})
	require.NoError(t, err)
	return sess
}

// failingRepo fails every Save after the first n.
type failingRepo struct {
	*storage.MemoryRepository
	allow int
}

var errDiskFull = errors.New("disk full")

func (f *failingRepo) Save(ctx context.Context, snap *storage.Snapshot) error {
	if f.allow <= 0 {
		return errDiskFull
	}
	f.allow--
	return f.MemoryRepository.Save(ctx, snap)
}

// openWithOrphans loads a store in which sessions reference a client that is
// no longer in the clients collection.
func openWithOrphans(t *testing.T, repo storage.Repository, clients []domain.Client, sessions []domain.Session) *Store {
	t.Helper()

	require.NoError(t, repo.Save(context.Background(), &storage.Snapshot{Clients: clients, Sessions: sessions}))
	store, err := Open(context.Background(), repo)
	require.NoError(t, err)
	return store
}
