package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/auth"
	domain "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/domain"
)

const (
	closeUnauthorized = 4001
	closeJoinFailed   = 4002
)

// NotificationSocketController streams a user's notification feed. The
// socket is receive-mostly: the only client commands are ping frames.
type NotificationSocketController struct {
	fab             fabric.Fabric
	authn           *auth.Authenticator
	log             zerolog.Logger
	inflightTimeout time.Duration
}

func NewNotificationSocketController(fab fabric.Fabric, authn *auth.Authenticator, log zerolog.Logger) *NotificationSocketController {
	return &NotificationSocketController{
		fab:             fab,
		authn:           authn,
		log:             log,
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// upgradeResponseHeader echoes the client's first subprotocol entry so
// browsers that transport the token via Sec-WebSocket-Protocol accept the
// handshake.
func upgradeResponseHeader(r *http.Request) http.Header {
	proto := r.Header.Get("Sec-WebSocket-Protocol")
	if proto == "" {
		return nil
	}
	first := strings.TrimSpace(strings.Split(proto, ",")[0])
	return http.Header{"Sec-WebSocket-Protocol": []string{first}}
}

// Handle returns a gin handler for GET /ws/notifications/.
func (h *NotificationSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.TokenFromRequest(c.Request)
		ident := h.authn.Resolve(c.Request.Context(), token)

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, upgradeResponseHeader(c.Request))
		if err != nil {
			h.log.Warn().Err(err).Msg("notification upgrade failed")
			return
		}

		conn := fabric.NewConnection(formatUserID(ident.ID), token, ws)
		conn.Start()

		if ident.IsAnonymous() {
			conn.Close(closeUnauthorized, "authentication required")
			return
		}

		group := domain.UserGroup(ident.ID)
		ctx, cancel := context.WithTimeout(context.Background(), h.inflightTimeout)
		err = h.fab.Join(ctx, group, conn)
		cancel()
		if err != nil {
			h.log.Error().Err(err).Int64("user_id", ident.ID).Msg("notification feed join failed")
			conn.Close(closeJoinFailed, "join failed")
			return
		}

		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), h.inflightTimeout)
			_ = h.fab.Leave(ctx, group, conn)
			cancel()
			conn.Close(websocket.CloseNormalClosure, "")
		}()

		sess := &feedSession{ctl: h, conn: conn, user: ident}
		sess.sendJSON(map[string]any{
			"type":    "connection_established",
			"message": "Connected to notifications",
		})
		sess.run()
	}
}

type feedSession struct {
	ctl  *NotificationSocketController
	conn *fabric.Connection
	user auth.Identity
}

func (s *feedSession) run() {
	frames := s.conn.ReadFrames()
	for {
		select {
		case data, ok := <-frames:
			if !ok {
				return
			}
			s.handleFrame(data)
		case env := <-s.conn.Events():
			s.handleEvent(env)
		case <-s.conn.Done():
			return
		}
	}
}

// handleFrame answers ping frames and rejects non-JSON input; every other
// well-formed frame is ignored.
func (s *feedSession) handleFrame(data []byte) {
	var frame struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		s.sendJSON(map[string]any{"type": "error", "message": "Invalid JSON"})
		return
	}
	if frame.Type == "ping" {
		s.sendJSON(map[string]any{"type": "pong"})
	}
}

func (s *feedSession) handleEvent(env fabric.Envelope) {
	ev, err := domain.DecodeEvent(env)
	if err != nil {
		s.ctl.log.Warn().Err(err).Msg("undecodable feed event")
		return
	}

	switch e := ev.(type) {
	case domain.CreatedEvent:
		s.sendJSON(map[string]any{
			"type":         "new_notification",
			"notification": e.Notification,
		})
	case domain.UpdatedEvent:
		s.sendJSON(map[string]any{
			"type":            "notification_updated",
			"notification_id": e.NotificationID,
			"updates":         e.Updates,
		})
	}
}

func (s *feedSession) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.ctl.log.Error().Err(err).Msg("encode feed frame")
		return
	}
	_ = s.conn.Send(data)
}

func formatUserID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
