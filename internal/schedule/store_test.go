package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hperssn/coachbook/internal/domain"
	"github.com/hperssn/coachbook/internal/storage"
)

func TestStore_ClientCRUD(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestStore(t)

	c := addClient(t, s, "Anna", domain.TrainingModule, 5)
	assert.NotEmpty(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())

	got, err := s.GetClient(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.Name)

	got.Notes = "knee injury"
	require.NoError(t, s.UpdateClient(ctx, got))

	got, err = s.GetClient(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "knee injury", got.Notes)
	assert.Equal(t, c.ID, got.ID)

	assert.Equal(t, 2, repo.Saves())
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.GetClient("missing")
	assert.True(t, domain.IsNotFound(err))

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "client", nf.Entity)

	err = s.UpdateClient(ctx, domain.Client{ID: "missing", Name: "x", TrainingType: domain.TrainingSingle})
	assert.True(t, domain.IsNotFound(err))

	_, err = s.GetSession("missing")
	assert.True(t, domain.IsNotFound(err))

	err = s.UpdateSession(ctx, domain.Session{ID: "missing"})
	assert.True(t, domain.IsNotFound(err))
}

func TestStore_AddSessionRequiresClient(t *testing.T) {
	s, repo := newTestStore(t)

	_, err := s.AddSession(context.Background(), domain.Session{ClientID: "ghost", Start: at(10, 0), DurationMin: 60, LeadMin: 30})
	assert.True(t, domain.IsNotFound(err))
	assert.Empty(t, s.Sessions())
	assert.Equal(t, 0, repo.Saves())
}

func TestStore_AddSessionRejectsInvalidInput(t *testing.T) {
	s, _ := newTestStore(t)
	c := addClient(t, s, "Anna", domain.TrainingSingle, 0)

	_, err := s.AddSession(context.Background(), domain.Session{ClientID: c.ID, Start: at(10, 0), DurationMin: 45, LeadMin: 30})
	assert.True(t, domain.IsInvalidInput(err))

	_, err = s.AddSession(context.Background(), domain.Session{ClientID: c.ID, Start: at(10, 0), DurationMin: 60, LeadMin: 0})
	assert.True(t, domain.IsInvalidInput(err))

	assert.Empty(t, s.Sessions())
}

func TestStore_UpdateSessionKeepsFlagsMonotonic(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	c := addClient(t, s, "Anna", domain.TrainingSingle, 0)
	sess := addSession(t, s, c.ID, at(10, 0), 60, 30)

	sess.NotificationSent = true
	require.NoError(t, s.UpdateSession(ctx, sess))

	sess.NotificationSent = false
	err := s.UpdateSession(ctx, sess)
	assert.True(t, domain.IsInvalidInput(err))

	got, err := s.GetSession(sess.ID)
	require.NoError(t, err)
	assert.True(t, got.NotificationSent)
}

func TestStore_SessionsForClient(t *testing.T) {
	s, _ := newTestStore(t)
	anna := addClient(t, s, "Anna", domain.TrainingSingle, 0)
	boris := addClient(t, s, "Boris", domain.TrainingSingle, 0)

	addSession(t, s, anna.ID, at(10, 0), 60, 30)
	addSession(t, s, boris.ID, at(12, 0), 60, 30)
	addSession(t, s, anna.ID, at(14, 0), 90, 30)

	assert.Len(t, s.SessionsForClient(anna.ID), 2)
	assert.Len(t, s.SessionsForClient(boris.ID), 1)
	assert.Empty(t, s.SessionsForClient("nobody"))
}

func TestStore_FindConflicts(t *testing.T) {
	s, _ := newTestStore(t)
	c := addClient(t, s, "Anna", domain.TrainingSingle, 0)
	first := addSession(t, s, c.ID, at(10, 0), 90, 30)
	addSession(t, s, c.ID, at(14, 0), 60, 30)

	found := s.FindConflicts(domain.NewInterval(at(11, 0), 60))
	require.Len(t, found, 1)
	assert.Equal(t, first.ID, found[0].ID)

	assert.Empty(t, s.FindConflicts(domain.NewInterval(at(11, 30), 60)))
	assert.Len(t, s.FindConflicts(domain.NewInterval(at(9, 0), 600)), 2)
}

func TestStore_UpdateRollsBackOnSaveFailure(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{MemoryRepository: storage.NewMemoryRepository(), allow: 1}
	s, err := Open(ctx, repo)
	require.NoError(t, err)

	c := addClient(t, s, "Anna", domain.TrainingModule, 3)

	c.ModuleCount = 2
	err = s.UpdateClient(ctx, c)
	require.ErrorIs(t, err, errDiskFull)

	got, err := s.GetClient(c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.ModuleCount, "failed save must not change the store")

	_, err = s.AddSession(ctx, domain.Session{ClientID: c.ID, Start: at(10, 0), DurationMin: 60, LeadMin: 30})
	require.ErrorIs(t, err, errDiskFull)
	assert.Empty(t, s.Sessions())
}

func TestStore_UpdateCallbackErrorDiscardsStagedChanges(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestStore(t)
	boom := errors.New("boom")

	err := s.Update(ctx, func(tx *Tx) error {
		if _, err := tx.AddClient(domain.Client{Name: "Anna", TrainingType: domain.TrainingSingle}); err != nil {
			return err
		}
		require.Len(t, tx.Clients(), 1, "tx sees its own writes")
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, s.Clients())
	assert.Equal(t, 0, repo.Saves())
}

func TestStore_ReopenLoadsCollections(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestStore(t)
	anna := addClient(t, s, "Anna", domain.TrainingModule, 4)
	boris := addClient(t, s, "Boris", domain.TrainingSingle, 0)
	sess := addSession(t, s, anna.ID, at(10, 0), 120, 60)

	reopened, err := Open(ctx, repo)
	require.NoError(t, err)

	clients := reopened.Clients()
	require.Len(t, clients, 2)
	assert.Equal(t, anna.ID, clients[0].ID)
	assert.Equal(t, boris.ID, clients[1].ID)

	got, err := reopened.GetSession(sess.ID)
	require.NoError(t, err)
	assert.True(t, got.End().Equal(at(12, 0)))
}

func TestStore_DuplicateClientID(t *testing.T) {
	s, _ := newTestStore(t)
	c := addClient(t, s, "Anna", domain.TrainingSingle, 0)

	_, err := s.AddClient(context.Background(), domain.Client{ID: c.ID, Name: "Other", TrainingType: domain.TrainingSingle})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestStore_UpdateSessionClientChecks(t *testing.T) {
	ctx := context.Background()
	anna := domain.Client{ID: "anna", Name: "Anna", TrainingType: domain.TrainingSingle}
	orphan := domain.Session{ID: "orphan", ClientID: "gone", Start: at(10, 0), DurationMin: 60, LeadMin: 30}
	s := openWithOrphans(t, newTestRepo(), []domain.Client{anna}, []domain.Session{orphan})

	orphan.NotificationSent = true
	require.NoError(t, s.UpdateSession(ctx, orphan), "flag update keeps the missing client")

	moved := orphan
	moved.ClientID = "nobody"
	assert.True(t, domain.IsNotFound(s.UpdateSession(ctx, moved)))

	moved.ClientID = anna.ID
	require.NoError(t, s.UpdateSession(ctx, moved))
	assert.Len(t, s.SessionsForClient(anna.ID), 1)
}
