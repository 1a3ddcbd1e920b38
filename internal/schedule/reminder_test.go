package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hperssn/coachbook/internal/domain"
	"github.com/hperssn/coachbook/internal/notify"
)

type fakeNotifier struct {
	err       error
	delivered []notify.Reminder
}

func (f *fakeNotifier) Deliver(ctx context.Context, r notify.Reminder) error {
	f.delivered = append(f.delivered, r)
	return f.err
}

func TestStateAt(t *testing.T) {
	sess := domain.Session{Start: at(12, 0), DurationMin: 60, LeadMin: 60}

	tests := []struct {
		name string
		now  time.Time
		sent bool
		want ReminderState
	}{
		{name: "before window", now: at(10, 59), want: Pending},
		{name: "at notification time", now: at(11, 0), want: Due},
		{name: "inside window", now: at(11, 59), want: Due},
		{name: "at start", now: at(12, 0), want: Expired},
		{name: "sent", now: at(11, 30), sent: true, want: Fired},
		{name: "sent and past", now: at(15, 0), sent: true, want: Fired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sess
			s.NotificationSent = tt.sent
			assert.Equal(t, tt.want, StateAt(s, tt.now))
		})
	}
}

func TestReminders_CatchUpAfterGap(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	c := addClient(t, s, "Anna", domain.TrainingSingle, 0)
	now := at(13, 0)
	// Notification time two hours ago, start one hour ahead.
	sess := addSession(t, s, c.ID, now.Add(time.Hour), 60, 180)

	n := &fakeNotifier{}
	report, err := NewReminders(s, n).Tick(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []string{sess.ID}, report.Fired)

	require.Len(t, n.delivered, 1)
	r := n.delivered[0]
	assert.Equal(t, sess.ID, r.SourceID)
	assert.Equal(t, "Training with Anna in 180 minutes", r.Body)
	assert.Equal(t, DefaultReminderIcon, r.IconRef)

	got, _ := s.GetSession(sess.ID)
	assert.True(t, got.NotificationSent)
	assert.Equal(t, Fired, StateAt(got, now))
}

func TestReminders_FiresOnce(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	c := addClient(t, s, "Anna", domain.TrainingSingle, 0)
	addSession(t, s, c.ID, at(12, 0), 60, 30)

	n := &fakeNotifier{}
	r := NewReminders(s, n)

	for _, now := range []time.Time{at(11, 30), at(11, 31), at(11, 45), at(11, 59)} {
		_, err := r.Tick(ctx, now)
		require.NoError(t, err)
	}
	assert.Len(t, n.delivered, 1)
}

func TestReminders_NoReminderForStartedSession(t *testing.T) {
	s, _ := newTestStore(t)
	c := addClient(t, s, "Anna", domain.TrainingSingle, 0)
	sess := addSession(t, s, c.ID, at(10, 0), 60, 30)

	n := &fakeNotifier{}
	report, err := NewReminders(s, n).Tick(context.Background(), at(10, 0))
	require.NoError(t, err)
	assert.Empty(t, report.Fired)
	assert.Empty(t, n.delivered)

	got, _ := s.GetSession(sess.ID)
	assert.False(t, got.NotificationSent)
	assert.Equal(t, Expired, StateAt(got, at(10, 0)))
}

func TestReminders_PendingDoesNotFire(t *testing.T) {
	s, _ := newTestStore(t)
	c := addClient(t, s, "Anna", domain.TrainingSingle, 0)
	addSession(t, s, c.ID, at(12, 0), 60, 30)

	n := &fakeNotifier{}
	_, err := NewReminders(s, n).Tick(context.Background(), at(11, 0))
	require.NoError(t, err)
	assert.Empty(t, n.delivered)
}

func TestReminders_NearMissTolerance(t *testing.T) {
	s, _ := newTestStore(t)
	c := addClient(t, s, "Anna", domain.TrainingSingle, 0)
	addSession(t, s, c.ID, at(12, 0), 60, 30)

	n := &fakeNotifier{}
	r := NewReminders(s, n, WithTolerance(time.Minute))

	// 30 seconds before the notification time.
	_, err := r.Tick(context.Background(), at(11, 30).Add(-30*time.Second))
	require.NoError(t, err)
	assert.Len(t, n.delivered, 1)
}

func TestReminders_DeliveryFailurePolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("mark on attempt", func(t *testing.T) {
		s, _ := newTestStore(t)
		c := addClient(t, s, "Anna", domain.TrainingSingle, 0)
		sess := addSession(t, s, c.ID, at(12, 0), 60, 30)

		n := &fakeNotifier{err: errors.New("offline")}
		report, err := NewReminders(s, n).Tick(ctx, at(11, 40))
		require.NoError(t, err)
		assert.Equal(t, []string{sess.ID}, report.Fired)

		got, _ := s.GetSession(sess.ID)
		assert.True(t, got.NotificationSent)
	})

	t.Run("require confirmation", func(t *testing.T) {
		s, _ := newTestStore(t)
		c := addClient(t, s, "Anna", domain.TrainingSingle, 0)
		sess := addSession(t, s, c.ID, at(12, 0), 60, 30)

		n := &fakeNotifier{err: errors.New("offline")}
		r := NewReminders(s, n, WithRequireConfirmation(true))

		report, err := r.Tick(ctx, at(11, 40))
		require.NoError(t, err)
		assert.Equal(t, []string{sess.ID}, report.Failed)

		got, _ := s.GetSession(sess.ID)
		assert.False(t, got.NotificationSent)

		n.err = nil
		report, err = r.Tick(ctx, at(11, 41))
		require.NoError(t, err)
		assert.Equal(t, []string{sess.ID}, report.Fired)
		assert.Len(t, n.delivered, 2)
	})
}

func TestReminders_MissingClientFiresOnce(t *testing.T) {
	ctx := context.Background()
	anna := domain.Client{ID: "anna", Name: "Anna", TrainingType: domain.TrainingSingle}
	orphan := domain.Session{ID: "orphan", ClientID: "gone", Start: at(15, 0), DurationMin: 60, LeadMin: 30}
	annas := domain.Session{ID: "annas", ClientID: anna.ID, Start: at(15, 30), DurationMin: 60, LeadMin: 60}

	s := openWithOrphans(t, newTestRepo(), []domain.Client{anna}, []domain.Session{orphan, annas})
	n := &fakeNotifier{}
	r := NewReminders(s, n)

	for _, now := range []time.Time{at(14, 40), at(14, 45), at(14, 50)} {
		_, err := r.Tick(ctx, now)
		require.NoError(t, err)
	}

	require.Len(t, n.delivered, 2)
	assert.Equal(t, "orphan", n.delivered[0].SourceID)
	assert.Contains(t, n.delivered[0].Body, "your client")
	assert.Equal(t, "annas", n.delivered[1].SourceID)

	got, _ := s.GetSession("orphan")
	assert.True(t, got.NotificationSent)
}

func TestReminders_RecordFailureDoesNotStopTick(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{MemoryRepository: newTestRepo(), allow: 1}
	anna := domain.Client{ID: "anna", Name: "Anna", TrainingType: domain.TrainingSingle}
	first := domain.Session{ID: "first", ClientID: anna.ID, Start: at(15, 0), DurationMin: 60, LeadMin: 30}
	second := domain.Session{ID: "second", ClientID: anna.ID, Start: at(16, 0), DurationMin: 60, LeadMin: 90}

	s := openWithOrphans(t, repo, []domain.Client{anna}, []domain.Session{first, second})
	n := &fakeNotifier{}

	report, err := NewReminders(s, n).Tick(ctx, at(14, 45))
	require.ErrorIs(t, err, errDiskFull)
	assert.Len(t, n.delivered, 2, "every due reminder is attempted")
	assert.Empty(t, report.Fired)
}
