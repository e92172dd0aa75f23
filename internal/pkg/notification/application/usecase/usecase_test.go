package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
	domain "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/domain"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/adapter"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
)

// recordingFabric captures broadcasts; optionally fails every call.
type recordingFabric struct {
	fail bool

	mu   sync.Mutex
	sent []struct {
		Group string
		Env   fabric.Envelope
	}
}

func (f *recordingFabric) Join(context.Context, string, fabric.Subscriber) error  { return nil }
func (f *recordingFabric) Leave(context.Context, string, fabric.Subscriber) error { return nil }
func (f *recordingFabric) Close() error                                           { return nil }

func (f *recordingFabric) Broadcast(_ context.Context, group string, env fabric.Envelope) error {
	if f.fail {
		return fabric.ErrUnavailable
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, struct {
		Group string
		Env   fabric.Envelope
	}{group, env})
	return nil
}

func (f *recordingFabric) broadcasts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// failingForUser wraps a repository and fails Save for one recipient.
type failingForUser struct {
	port.NotificationRepository
	userID int64
}

func (r failingForUser) Save(ctx context.Context, n *domain.Notification) error {
	if n.UserID == r.userID {
		return errors.New("simulated storage failure")
	}
	return r.NotificationRepository.Save(ctx, n)
}

func TestSendNotificationPersistsAndPublishes(t *testing.T) {
	repo := adapter.NewMemNotificationRepository()
	fab := &recordingFabric{}
	uc := NewSendNotificationUseCase(repo, fab, zerolog.Nop())

	n, err := uc.Execute(context.Background(), SendNotificationInput{
		UserID: 7,
		Title:  "New session scheduled",
		Body:   "Fiqh class moved to 5pm",
	})
	require.NoError(t, err)

	assert.NotZero(t, n.ID)
	assert.Equal(t, domain.StatusSent, n.Status)
	assert.Equal(t, domain.TypeInfo, n.Type, "type defaults to info")
	assert.Equal(t, domain.ChannelInApp, n.Channel, "channel defaults to in_app")
	assert.NotNil(t, n.SentAt)
	assert.False(t, n.IsRead())

	require.Equal(t, 1, fab.broadcasts())
	assert.Equal(t, domain.UserGroup(7), fab.sent[0].Group)
	assert.Equal(t, domain.EventCreated, fab.sent[0].Env.Event)
}

func TestSendNotificationSurvivesFeedFailure(t *testing.T) {
	repo := adapter.NewMemNotificationRepository()
	uc := NewSendNotificationUseCase(repo, &recordingFabric{fail: true}, zerolog.Nop())

	n, err := uc.Execute(context.Background(), SendNotificationInput{
		UserID: 7,
		Title:  "stored anyway",
	})
	require.NoError(t, err, "a dead feed must not lose the notification")

	stored, err := repo.FindForUser(context.Background(), n.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, "stored anyway", stored.Title)
}

func TestBroadcastIsolatesRecipientFailures(t *testing.T) {
	repo := adapter.NewMemNotificationRepository()
	fab := &recordingFabric{}
	uc := NewBroadcastNotificationUseCase(failingForUser{repo, 2}, fab, zerolog.Nop())

	out, err := uc.Execute(context.Background(), BroadcastNotificationInput{
		UserIDs: []int64{1, 2, 3},
		Title:   "Platform maintenance tonight",
	})
	require.NoError(t, err)

	assert.Len(t, out.Notifications, 2, "the failing recipient must not block the others")
	assert.Equal(t, 1, out.FailedCount)

	for _, userID := range []int64{1, 3} {
		list, err := repo.ListForUser(context.Background(), userID, port.ListFilter{})
		require.NoError(t, err)
		assert.Len(t, list, 1, "user %d", userID)
	}
}

func TestMarkReadIsIdempotentAndPublishes(t *testing.T) {
	repo := adapter.NewMemNotificationRepository()
	fab := &recordingFabric{}
	send := NewSendNotificationUseCase(repo, fab, zerolog.Nop())
	markRead := NewMarkNotificationReadUseCase(repo, fab, zerolog.Nop())

	n, err := send.Execute(context.Background(), SendNotificationInput{UserID: 7, Title: "t"})
	require.NoError(t, err)

	first, err := markRead.Execute(context.Background(), n.ID, 7)
	require.NoError(t, err)
	require.True(t, first.IsRead())

	second, err := markRead.Execute(context.Background(), n.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, first.ReadAt, second.ReadAt, "second mark keeps the original timestamp")

	// One created event plus two update events.
	require.Equal(t, 3, fab.broadcasts())
	assert.Equal(t, domain.EventUpdated, fab.sent[1].Env.Event)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	repo := adapter.NewMemNotificationRepository()
	fab := &recordingFabric{}
	send := NewSendNotificationUseCase(repo, fab, zerolog.Nop())
	markRead := NewMarkNotificationReadUseCase(repo, fab, zerolog.Nop())

	n, err := send.Execute(context.Background(), SendNotificationInput{UserID: 7, Title: "t"})
	require.NoError(t, err)

	_, err = markRead.Execute(context.Background(), n.ID, 8)
	assert.ErrorIs(t, err, port.ErrNotificationNotFound, "another user's row behaves as missing")
}

func TestMarkUnreadClearsReadState(t *testing.T) {
	repo := adapter.NewMemNotificationRepository()
	fab := &recordingFabric{}
	send := NewSendNotificationUseCase(repo, fab, zerolog.Nop())
	markRead := NewMarkNotificationReadUseCase(repo, fab, zerolog.Nop())
	markUnread := NewMarkNotificationUnreadUseCase(repo, fab, zerolog.Nop())

	n, err := send.Execute(context.Background(), SendNotificationInput{UserID: 7, Title: "t"})
	require.NoError(t, err)

	_, err = markRead.Execute(context.Background(), n.ID, 7)
	require.NoError(t, err)

	back, err := markUnread.Execute(context.Background(), n.ID, 7)
	require.NoError(t, err)
	assert.False(t, back.IsRead())

	count, err := NewUnreadCountUseCase(repo).Execute(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMarkAllReadAndUnreadCount(t *testing.T) {
	repo := adapter.NewMemNotificationRepository()
	fab := &recordingFabric{}
	send := NewSendNotificationUseCase(repo, fab, zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := send.Execute(context.Background(), SendNotificationInput{UserID: 7, Title: "t"})
		require.NoError(t, err)
	}
	_, err := send.Execute(context.Background(), SendNotificationInput{UserID: 8, Title: "other user"})
	require.NoError(t, err)

	count, err := NewMarkAllReadUseCase(repo).Execute(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	unread, err := NewUnreadCountUseCase(repo).Execute(context.Background(), 7)
	require.NoError(t, err)
	assert.Zero(t, unread)

	unread, err = NewUnreadCountUseCase(repo).Execute(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, 1, unread, "other users' rows are untouched")
}

func TestListNotificationsFilters(t *testing.T) {
	repo := adapter.NewMemNotificationRepository()
	fab := &recordingFabric{}
	send := NewSendNotificationUseCase(repo, fab, zerolog.Nop())
	markRead := NewMarkNotificationReadUseCase(repo, fab, zerolog.Nop())

	first, err := send.Execute(context.Background(), SendNotificationInput{UserID: 7, Title: "a", Type: domain.TypeCourse})
	require.NoError(t, err)
	_, err = send.Execute(context.Background(), SendNotificationInput{UserID: 7, Title: "b", Type: domain.TypeSession})
	require.NoError(t, err)

	_, err = markRead.Execute(context.Background(), first.ID, 7)
	require.NoError(t, err)

	list := NewListNotificationsUseCase(repo)

	all, err := list.Execute(context.Background(), ListNotificationsInput{UserID: 7})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].Title, "newest first")

	read, err := list.Execute(context.Background(), ListNotificationsInput{UserID: 7, IsRead: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, read, 1)
	assert.Equal(t, "a", read[0].Title)

	byType, err := list.Execute(context.Background(), ListNotificationsInput{UserID: 7, Type: domain.TypeSession})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "b", byType[0].Title)
}

func TestDeleteAllNotifications(t *testing.T) {
	repo := adapter.NewMemNotificationRepository()
	fab := &recordingFabric{}
	send := NewSendNotificationUseCase(repo, fab, zerolog.Nop())

	for i := 0; i < 2; i++ {
		_, err := send.Execute(context.Background(), SendNotificationInput{UserID: 7, Title: "t"})
		require.NoError(t, err)
	}

	count, err := NewDeleteAllNotificationsUseCase(repo).Execute(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	remaining, err := repo.ListForUser(context.Background(), 7, port.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func boolPtr(v bool) *bool { return &v }
