package controller

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
)

func signalingTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/ws/sessions/:sessionId/signaling/", NewSignalingSocketController(fabric.NewLocalFabric(), zerolog.Nop()).Handle())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialRoom(t *testing.T, srv *httptest.Server, roomID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/sessions/" + roomID + "/signaling/"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	// The room join happens server-side after the handshake completes; give
	// the handler a beat so frames sent right away reach this socket.
	time.Sleep(50 * time.Millisecond)
	return ws
}

func sendRaw(t *testing.T, ws *websocket.Conn, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, data))
}

func readRaw(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func assertNoFrame(t *testing.T, ws *websocket.Conn) {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := ws.ReadMessage()
	assert.Error(t, err, "expected no frame")
}

func TestSignalingReadyBroadcastsToRoomIncludingSender(t *testing.T) {
	srv := signalingTestServer(t)

	a := dialRoom(t, srv, "101")
	b := dialRoom(t, srv, "101")

	sendRaw(t, a, map[string]any{"type": "ready", "from": "peer-a"})

	// The relay does not self-filter: both sockets get the frame.
	for _, ws := range []*websocket.Conn{a, b} {
		frame := readRaw(t, ws)
		assert.Equal(t, "ready", frame["type"])
		assert.Equal(t, "peer-a", frame["from"])
	}
}

func TestSignalingReadyWithTargetStillBroadcasts(t *testing.T) {
	srv := signalingTestServer(t)

	a := dialRoom(t, srv, "101")
	b := dialRoom(t, srv, "101")
	c := dialRoom(t, srv, "101")

	sendRaw(t, b, map[string]any{"type": "ready", "from": "peer-b"})
	for _, ws := range []*websocket.Conn{a, b, c} {
		readRaw(t, ws)
	}

	// A stray to field on a ready frame does not turn it into a unicast.
	sendRaw(t, a, map[string]any{"type": "ready", "from": "peer-a", "to": "peer-b"})

	for _, ws := range []*websocket.Conn{a, b, c} {
		frame := readRaw(t, ws)
		assert.Equal(t, "ready", frame["type"])
		assert.Equal(t, "peer-a", frame["from"])
	}
}

func TestSignalingDirectedOfferReachesOnlyTarget(t *testing.T) {
	srv := signalingTestServer(t)

	a := dialRoom(t, srv, "101")
	b := dialRoom(t, srv, "101")
	c := dialRoom(t, srv, "101")

	sendRaw(t, a, map[string]any{"type": "ready", "from": "peer-a"})
	sendRaw(t, b, map[string]any{"type": "ready", "from": "peer-b"})
	sendRaw(t, c, map[string]any{"type": "ready", "from": "peer-c"})

	// Drain the three room-wide ready frames from every socket.
	for _, ws := range []*websocket.Conn{a, b, c} {
		for i := 0; i < 3; i++ {
			readRaw(t, ws)
		}
	}

	sendRaw(t, a, map[string]any{
		"type": "offer",
		"from": "peer-a",
		"to":   "peer-b",
		"sdp":  "v=0 fake",
	})

	frame := readRaw(t, b)
	assert.Equal(t, "offer", frame["type"])
	assert.Equal(t, "peer-a", frame["from"])
	assert.Equal(t, "v=0 fake", frame["sdp"], "payload is relayed untouched")

	assertNoFrame(t, a)
	assertNoFrame(t, c)
}

func TestSignalingOfferWithoutTargetBroadcasts(t *testing.T) {
	srv := signalingTestServer(t)

	a := dialRoom(t, srv, "101")
	b := dialRoom(t, srv, "101")

	sendRaw(t, a, map[string]any{"type": "ice-candidate", "from": "peer-a", "candidate": "c1"})

	for _, ws := range []*websocket.Conn{a, b} {
		frame := readRaw(t, ws)
		assert.Equal(t, "ice-candidate", frame["type"])
		assert.Equal(t, "c1", frame["candidate"])
	}
}

func TestSignalingRoomsAreIsolated(t *testing.T) {
	srv := signalingTestServer(t)

	a := dialRoom(t, srv, "101")
	other := dialRoom(t, srv, "202")

	sendRaw(t, a, map[string]any{"type": "ready", "from": "peer-a"})

	readRaw(t, a)
	assertNoFrame(t, other)
}

func TestSignalingMalformedAndUnknownFramesAreDropped(t *testing.T) {
	srv := signalingTestServer(t)

	a := dialRoom(t, srv, "101")
	b := dialRoom(t, srv, "101")

	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte("{broken")))
	sendRaw(t, a, map[string]any{"type": "mute-all"})
	sendRaw(t, a, map[string]any{"type": "ready", "from": "peer-a"})

	// Per-connection ordering is preserved, so the first frame b sees proves
	// the garbage and the unknown type produced nothing.
	frame := readRaw(t, b)
	assert.Equal(t, "ready", frame["type"])
}

func TestSignalingInvalidSessionIDRejected(t *testing.T) {
	srv := signalingTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/sessions/bad%20room/signaling/"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.StatusCode)
}
