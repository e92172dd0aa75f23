package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
)

func TestDecodeEventRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		event string
		in    Event
	}{
		{"message", EventMessage, MessageEvent{Message: Payload{ID: 5, Message: "hi"}, SenderID: 1}},
		{"joined", EventUserJoined, UserJoinedEvent{UserID: 2, UserName: "Bob"}},
		{"left", EventUserLeft, UserLeftEvent{UserID: 2, UserName: "Bob"}},
		{"typing", EventTyping, TypingEvent{UserID: 2, UserName: "Bob", IsTyping: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env, err := fabric.NewEnvelope(tc.event, tc.in)
			require.NoError(t, err)

			got, err := DecodeEvent(env)
			require.NoError(t, err)
			assert.Equal(t, tc.in, got)
		})
	}
}

func TestDecodeEventRejectsUnknownEvent(t *testing.T) {
	env, err := fabric.NewEnvelope("presence_sync", map[string]any{})
	require.NoError(t, err)

	_, err = DecodeEvent(env)
	assert.Error(t, err)
}

func TestRoomGroup(t *testing.T) {
	assert.Equal(t, "chat.session.42", RoomGroup("42"))
	assert.NoError(t, fabric.ValidateGroupKey(RoomGroup("abc-DEF_9")))
}
