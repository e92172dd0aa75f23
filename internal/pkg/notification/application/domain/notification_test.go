package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		age  time.Duration
		want string
	}{
		{30 * time.Second, "Just now"},
		{5 * time.Minute, "5 minutes ago"},
		{1 * time.Minute, "1 minute ago"},
		{3 * time.Hour, "3 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{3 * 24 * time.Hour, "3 days ago"},
		{10 * 24 * time.Hour, "1 week ago"},
		{15 * 24 * time.Hour, "2 weeks ago"},
		{70 * 24 * time.Hour, "2 months ago"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TimeAgo(now.Add(-tc.age), now), tc.age.String())
	}
}

func TestUserGroupIsValidFabricKey(t *testing.T) {
	assert.Equal(t, "notifications_7", UserGroup(7))
	assert.NoError(t, fabric.ValidateGroupKey(UserGroup(123456)))
}

func TestFeedEventRoundTrip(t *testing.T) {
	env, err := fabric.NewEnvelope(EventCreated, CreatedEvent{
		Notification: ListPayload{ID: 4, Title: "t", IsRead: false},
	})
	require.NoError(t, err)

	ev, err := DecodeEvent(env)
	require.NoError(t, err)
	created, ok := ev.(CreatedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(4), created.Notification.ID)

	env, err = fabric.NewEnvelope(EventUpdated, UpdatedEvent{
		NotificationID: 4,
		Updates:        map[string]any{"is_read": true},
	})
	require.NoError(t, err)

	ev, err = DecodeEvent(env)
	require.NoError(t, err)
	updated, ok := ev.(UpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(4), updated.NotificationID)

	_, err = DecodeEvent(fabric.Envelope{Event: "presence", Data: []byte(`{}`)})
	assert.Error(t, err)
}
