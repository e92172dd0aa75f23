package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/auth"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/usecase"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/adapter"
)

const testSecret = "test-secret"

type stubDirectory map[int64]auth.Identity

func (d stubDirectory) FindByID(_ context.Context, id int64) (auth.Identity, error) {
	if ident, ok := d[id]; ok {
		return ident, nil
	}
	return auth.Identity{}, errors.New("no such user")
}

type feedFixture struct {
	srv  *httptest.Server
	fab  *fabric.LocalFabric
	repo *adapter.MemNotificationRepository
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := stubDirectory{
		7: {ID: 7, FullName: "Aisha Khan", Email: "aisha@example.com", Role: "teacher"},
	}
	fab := fabric.NewLocalFabric()
	authn := auth.NewAuthenticator(testSecret, dir, zerolog.Nop())

	r := gin.New()
	r.GET("/ws/notifications/", NewNotificationSocketController(fab, authn, zerolog.Nop()).Handle())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &feedFixture{srv: srv, fab: fab, repo: adapter.NewMemNotificationRepository()}
}

func (f *feedFixture) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws/notifications/"
	if token != "" {
		url += "?token=" + token
	}
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func tokenFor(t *testing.T, userID int64) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"token_type": "access",
		"user_id":    float64(userID),
		"exp":        time.Now().Add(time.Hour).Unix(),
	})
	raw, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return raw
}

func readFrame(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func TestFeedRejectsAnonymous(t *testing.T) {
	f := newFeedFixture(t)

	ws := f.dial(t, "")
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := ws.ReadMessage()

	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, 4001, closeErr.Code)
}

func TestFeedConnectAndPing(t *testing.T) {
	f := newFeedFixture(t)

	ws := f.dial(t, tokenFor(t, 7))
	frame := readFrame(t, ws)
	assert.Equal(t, "connection_established", frame["type"])
	assert.Equal(t, "Connected to notifications", frame["message"])

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	frame = readFrame(t, ws)
	assert.Equal(t, "pong", frame["type"])

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{broken")))
	frame = readFrame(t, ws)
	assert.Equal(t, "error", frame["type"])
	assert.Equal(t, "Invalid JSON", frame["message"])
}

func TestFeedDeliversNewNotifications(t *testing.T) {
	f := newFeedFixture(t)

	ws := f.dial(t, tokenFor(t, 7))
	readFrame(t, ws) // connection_established

	send := usecase.NewSendNotificationUseCase(f.repo, f.fab, zerolog.Nop())
	n, err := send.Execute(context.Background(), usecase.SendNotificationInput{
		UserID: 7,
		Title:  "Assignment graded",
		Body:   "Your tajweed recording was reviewed",
	})
	require.NoError(t, err)

	frame := readFrame(t, ws)
	assert.Equal(t, "new_notification", frame["type"])
	payload := frame["notification"].(map[string]any)
	assert.Equal(t, float64(n.ID), payload["id"])
	assert.Equal(t, "Assignment graded", payload["title"])
	assert.Equal(t, false, payload["is_read"])
}

func TestFeedDeliversReadStateUpdates(t *testing.T) {
	f := newFeedFixture(t)

	send := usecase.NewSendNotificationUseCase(f.repo, f.fab, zerolog.Nop())
	n, err := send.Execute(context.Background(), usecase.SendNotificationInput{UserID: 7, Title: "t"})
	require.NoError(t, err)

	ws := f.dial(t, tokenFor(t, 7))
	readFrame(t, ws) // connection_established

	markRead := usecase.NewMarkNotificationReadUseCase(f.repo, f.fab, zerolog.Nop())
	_, err = markRead.Execute(context.Background(), n.ID, 7)
	require.NoError(t, err)

	frame := readFrame(t, ws)
	assert.Equal(t, "notification_updated", frame["type"])
	assert.Equal(t, float64(n.ID), frame["notification_id"])
	updates := frame["updates"].(map[string]any)
	assert.Equal(t, true, updates["is_read"])
}

func TestFeedIsScopedToUser(t *testing.T) {
	f := newFeedFixture(t)

	ws := f.dial(t, tokenFor(t, 7))
	readFrame(t, ws)

	send := usecase.NewSendNotificationUseCase(f.repo, f.fab, zerolog.Nop())
	_, err := send.Execute(context.Background(), usecase.SendNotificationInput{UserID: 99, Title: "not yours"})
	require.NoError(t, err)
	_, err = send.Execute(context.Background(), usecase.SendNotificationInput{UserID: 7, Title: "yours"})
	require.NoError(t, err)

	// The first frame the socket sees is the one addressed to user 7.
	frame := readFrame(t, ws)
	payload := frame["notification"].(map[string]any)
	assert.Equal(t, "yours", payload["title"])
}
