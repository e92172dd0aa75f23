package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
	signal "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/signaling/application/domain"
)

// SignalingSocketController relays WebRTC signaling frames between the
// participants of a session room. It is a pure relay: no identity gate, no
// persistence, and frame bodies are forwarded byte-for-byte.
type SignalingSocketController struct {
	fab             fabric.Fabric
	log             zerolog.Logger
	inflightTimeout time.Duration
}

func NewSignalingSocketController(fab fabric.Fabric, log zerolog.Logger) *SignalingSocketController {
	return &SignalingSocketController{
		fab:             fab,
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

// Handle returns a gin handler for GET /ws/sessions/:sessionId/signaling/.
func (h *SignalingSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("sessionId")
		room := signal.RoomGroup(roomID)
		if err := fabric.ValidateGroupKey(room); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Warn().Err(err).Str("room", roomID).Msg("signaling upgrade failed")
			return
		}

		conn := fabric.NewConnection("", "", ws)
		conn.Start()

		ctx, cancel := context.WithTimeout(context.Background(), h.inflightTimeout)
		err = h.fab.Join(ctx, room, conn)
		cancel()
		if err != nil {
			h.log.Error().Err(err).Str("room", roomID).Msg("signaling room join failed")
			conn.Close(websocket.CloseInternalServerErr, "join failed")
			return
		}

		sess := &signalingSession{ctl: h, conn: conn, roomID: roomID, room: room}
		defer sess.teardown()
		sess.run()
	}
}

// signalingSession is the per-connection relay state. peerGroup is set once
// the client announces itself with a ready frame.
type signalingSession struct {
	ctl       *SignalingSocketController
	conn      *fabric.Connection
	roomID    string
	room      string
	peerGroup string
}

func (s *signalingSession) run() {
	frames := s.conn.ReadFrames()
	for {
		select {
		case data, ok := <-frames:
			if !ok {
				return
			}
			s.handleFrame(data)
		case env := <-s.conn.Events():
			if env.Event == signal.EventSignal {
				_ = s.conn.Send(env.Data)
			}
		case <-s.conn.Done():
			return
		}
	}
}

// handleFrame routes one client frame. Malformed or unknown input is
// dropped without an error reply so a misbehaving peer cannot spam the
// room with protocol chatter.
func (s *signalingSession) handleFrame(data []byte) {
	var f signal.Frame
	if err := json.Unmarshal(data, &f); err != nil || !f.Known() {
		return
	}

	if f.Type == signal.TypeReady && f.From != "" && s.peerGroup == "" {
		peer := signal.PeerGroup(s.roomID, f.From)
		if fabric.ValidateGroupKey(peer) == nil {
			ctx, cancel := context.WithTimeout(context.Background(), s.ctl.inflightTimeout)
			if err := s.ctl.fab.Join(ctx, peer, s.conn); err != nil {
				s.ctl.log.Warn().Err(err).Str("peer", peer).Msg("peer mailbox join failed")
			} else {
				s.peerGroup = peer
			}
			cancel()
		}
	}

	// ready always announces to the whole room; a to field on it is ignored.
	target := s.room
	if f.To != "" && f.Type != signal.TypeReady {
		peer := signal.PeerGroup(s.roomID, f.To)
		if fabric.ValidateGroupKey(peer) != nil {
			return
		}
		target = peer
	}

	s.relay(target, data)
}

// relay broadcasts the raw frame to the target group. The room broadcast
// includes the sender; clients filter their own frames by the from field.
func (s *signalingSession) relay(group string, raw []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), s.ctl.inflightTimeout)
	defer cancel()
	err := s.ctl.fab.Broadcast(ctx, group, fabric.Envelope{Event: signal.EventSignal, Data: raw})
	if err != nil {
		s.ctl.log.Warn().Err(err).Str("group", group).Msg("signaling relay failed")
	}
}

func (s *signalingSession) teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), s.ctl.inflightTimeout)
	defer cancel()
	if s.peerGroup != "" {
		_ = s.ctl.fab.Leave(ctx, s.peerGroup, s.conn)
	}
	_ = s.ctl.fab.Leave(ctx, s.room, s.conn)
	s.conn.Close(websocket.CloseNormalClosure, "")
}
