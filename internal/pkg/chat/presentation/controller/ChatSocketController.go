package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/auth"
	chat "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/application/domain"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/application/usecase"
	repository "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/port"
)

// Close codes for identity-gated channels. Authentication rejection is the
// only case allowed to close the socket outright.
const (
	closeUnauthorized = 4001
	closeJoinFailed   = 4002
)

// ChatSocketController handles the websocket endpoint for a live session's
// chat room.
type ChatSocketController struct {
	fab             fabric.Fabric
	authn           *auth.Authenticator
	postUC          *usecase.PostMessageUseCase
	historyUC       *usecase.GetHistoryUseCase
	markReadUC      *usecase.MarkReadUseCase
	unreadUC        *usecase.UnreadCountUseCase
	log             zerolog.Logger
	inflightTimeout time.Duration
}

func NewChatSocketController(repo repository.MessageRepository, fab fabric.Fabric, authn *auth.Authenticator, log zerolog.Logger) *ChatSocketController {
	return &ChatSocketController{
		fab:             fab,
		authn:           authn,
		postUC:          usecase.NewPostMessageUseCase(repo),
		historyUC:       usecase.NewGetHistoryUseCase(repo),
		markReadUC:      usecase.NewMarkReadUseCase(repo),
		unreadUC:        usecase.NewUnreadCountUseCase(repo),
		log:             log,
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Cross-origin browsers are expected; tokens gate access instead.
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

// Inbound client commands form a closed set; decodeCommand maps the raw
// frame to exactly one of them, binding each to its expected payload shape.
type command interface{ isCommand() }

type sendMessageCommand struct{ Body string }
type typingCommand struct{ IsTyping bool }
type historyCommand struct{ Limit int }
type markReadCommand struct{ Ceiling *int64 }
type unknownCommand struct{ Type string }

func (sendMessageCommand) isCommand() {}
func (typingCommand) isCommand()      {}
func (historyCommand) isCommand()     {}
func (markReadCommand) isCommand()    {}
func (unknownCommand) isCommand()     {}

func decodeCommand(data []byte) (command, error) {
	var frame struct {
		Type      string `json:"type"`
		Message   string `json:"message"`
		IsTyping  bool   `json:"is_typing"`
		Limit     int    `json:"limit"`
		MessageID *int64 `json:"message_id"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, err
	}
	switch frame.Type {
	case "chat_message":
		return sendMessageCommand{Body: frame.Message}, nil
	case "typing":
		return typingCommand{IsTyping: frame.IsTyping}, nil
	case "get_history":
		return historyCommand{Limit: frame.Limit}, nil
	case "mark_read":
		return markReadCommand{Ceiling: frame.MessageID}, nil
	default:
		return unknownCommand{Type: frame.Type}, nil
	}
}

// Handle upgrades the request and services the connection until the client
// disconnects. Anonymous identities are rejected with a distinct close
// code before joining anything.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		token := auth.TokenFromRequest(c.Request)
		ident := ctl.authn.Resolve(c.Request.Context(), token)

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, upgradeResponseHeader(c.Request))
		if err != nil {
			// Upgrade already wrote the response; just return.
			return
		}

		conn := fabric.NewConnection(formatUserID(ident.ID), token, ws)
		conn.Start()

		if ident.IsAnonymous() {
			conn.Close(closeUnauthorized, "authentication required")
			return
		}

		room := chat.RoomGroup(sessionID)
		if err := fabric.ValidateGroupKey(room); err != nil {
			conn.Close(closeJoinFailed, "invalid session id")
			return
		}

		sess := &chatSession{
			ctl:       ctl,
			conn:      conn,
			ident:     ident,
			sessionID: sessionID,
			room:      room,
		}

		joinCtx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
		err = ctl.fab.Join(joinCtx, room, conn)
		cancel()
		if err != nil {
			if errors.Is(err, fabric.ErrUnavailable) {
				sess.sendError("Chat service unavailable. The message bus is not running.")
			} else {
				sess.sendError("Failed to join chat room.")
			}
			ctl.log.Error().Err(err).Str("room", room).Msg("chat: join failed")
			conn.Close(closeJoinFailed, "join failed")
			return
		}

		defer func() {
			// Presence farewell and group leave are best-effort cleanup.
			sess.broadcast(context.Background(), chat.EventUserLeft, chat.UserLeftEvent{
				UserID:   ident.ID,
				UserName: ident.DisplayName(),
			})
			leaveCtx, cancel := context.WithTimeout(context.Background(), ctl.inflightTimeout)
			_ = ctl.fab.Leave(leaveCtx, room, conn)
			cancel()
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		sess.sendJSON(gin.H{
			"type":       "connection_established",
			"message":    "Connected to chat",
			"session_id": sessionID,
		})

		// Own socket suppresses the echo, so the whole room is addressed.
		sess.broadcast(c.Request.Context(), chat.EventUserJoined, chat.UserJoinedEvent{
			UserID:   ident.ID,
			UserName: ident.DisplayName(),
		})

		sess.run(c.Request.Context())
	}
}

// chatSession is the per-connection state: the handler goroutine owns it
// exclusively and processes client frames and fabric deliveries one at a
// time.
type chatSession struct {
	ctl       *ChatSocketController
	conn      *fabric.Connection
	ident     auth.Identity
	sessionID string
	room      string
}

func (s *chatSession) run(ctx context.Context) {
	frames := s.conn.ReadFrames()
	for {
		select {
		case data, ok := <-frames:
			if !ok {
				return
			}
			s.handleFrame(ctx, data)
		case env := <-s.conn.Events():
			s.handleEvent(ctx, env)
		case <-s.conn.Done():
			return
		}
	}
}

func (s *chatSession) handleFrame(ctx context.Context, data []byte) {
	cmd, err := decodeCommand(data)
	if err != nil {
		s.sendError("Invalid message format")
		return
	}
	switch cmd := cmd.(type) {
	case sendMessageCommand:
		s.handleSendMessage(ctx, cmd)
	case typingCommand:
		s.handleTyping(ctx, cmd)
	case historyCommand:
		s.handleHistory(ctx, cmd)
	case markReadCommand:
		s.handleMarkRead(ctx, cmd)
	case unknownCommand:
		// Unknown frame types are silently ignored.
	}
}

func (s *chatSession) handleSendMessage(ctx context.Context, cmd sendMessageCommand) {
	opCtx, cancel := context.WithTimeout(ctx, s.ctl.inflightTimeout)
	defer cancel()

	msg, err := s.ctl.postUC.Execute(opCtx, usecase.PostMessageInput{
		SessionID: s.sessionID,
		Sender: chat.Sender{
			ID:    s.ident.ID,
			Name:  s.ident.DisplayName(),
			Email: s.ident.Email,
			Role:  s.ident.Role,
		},
		Body: cmd.Body,
	})
	if errors.Is(err, chat.ErrEmptyMessage) {
		s.sendError("Message cannot be empty")
		return
	}
	if err != nil {
		s.ctl.log.Error().Err(err).Str("session", s.sessionID).Msg("chat: persist failed")
		s.sendError("Failed to process message")
		return
	}

	// The message is durably stored before anyone can observe it.
	env, err := fabric.NewEnvelope(chat.EventMessage, chat.MessageEvent{
		Message:  msg.ToPayload(),
		SenderID: s.ident.ID,
	})
	if err != nil {
		s.sendError("Failed to process message")
		return
	}
	if err := s.ctl.fab.Broadcast(opCtx, s.room, env); err != nil {
		if errors.Is(err, fabric.ErrUnavailable) {
			s.sendError("Failed to send message. The message bus is not running. Please reconnect.")
		} else {
			s.sendError("Failed to send message. Please try again.")
		}
		s.ctl.log.Error().Err(err).Str("room", s.room).Msg("chat: broadcast failed")
	}
}

func (s *chatSession) handleTyping(ctx context.Context, cmd typingCommand) {
	// Typing indicators are not critical; failures are swallowed.
	s.broadcast(ctx, chat.EventTyping, chat.TypingEvent{
		UserID:   s.ident.ID,
		UserName: s.ident.DisplayName(),
		IsTyping: cmd.IsTyping,
	})
}

func (s *chatSession) handleHistory(ctx context.Context, cmd historyCommand) {
	opCtx, cancel := context.WithTimeout(ctx, s.ctl.inflightTimeout)
	defer cancel()

	out, err := s.ctl.historyUC.Execute(opCtx, usecase.GetHistoryInput{
		SessionID: s.sessionID,
		UserID:    s.ident.ID,
		Limit:     cmd.Limit,
	})
	if err != nil {
		s.ctl.log.Error().Err(err).Str("session", s.sessionID).Msg("chat: history failed")
		s.sendError("Failed to process message")
		return
	}

	payloads := make([]chat.Payload, 0, len(out.Messages))
	for _, m := range out.Messages {
		payloads = append(payloads, m.ToPayload())
	}
	s.sendJSON(gin.H{
		"type":         "chat_history",
		"messages":     payloads,
		"unread_count": out.UnreadCount,
	})
}

func (s *chatSession) handleMarkRead(ctx context.Context, cmd markReadCommand) {
	opCtx, cancel := context.WithTimeout(ctx, s.ctl.inflightTimeout)
	defer cancel()

	out, err := s.ctl.markReadUC.Execute(opCtx, usecase.MarkReadInput{
		SessionID: s.sessionID,
		UserID:    s.ident.ID,
		Ceiling:   cmd.Ceiling,
	})
	if err != nil {
		s.ctl.log.Error().Err(err).Str("session", s.sessionID).Msg("chat: mark read failed")
		s.sendError("Failed to process message")
		return
	}
	s.sendJSON(gin.H{
		"type":         "messages_marked_read",
		"marked_count": out.MarkedCount,
		"unread_count": out.UnreadCount,
	})
}

func (s *chatSession) handleEvent(ctx context.Context, env fabric.Envelope) {
	ev, err := chat.DecodeEvent(env)
	if err != nil {
		s.ctl.log.Debug().Err(err).Str("room", s.room).Msg("chat: dropping unknown event")
		return
	}
	switch ev := ev.(type) {
	case chat.MessageEvent:
		frame := gin.H{"type": "chat_message", "message": ev.Message}
		if ev.SenderID != s.ident.ID {
			// Recipient-side unread count, computed at delivery time.
			opCtx, cancel := context.WithTimeout(ctx, s.ctl.inflightTimeout)
			count, err := s.ctl.unreadUC.Execute(opCtx, s.sessionID, s.ident.ID)
			cancel()
			if err != nil {
				s.ctl.log.Warn().Err(err).Str("session", s.sessionID).Msg("chat: unread count failed")
			} else {
				frame["unread_count"] = count
			}
		}
		s.sendJSON(frame)
	case chat.UserJoinedEvent:
		if ev.UserID != s.ident.ID {
			s.sendJSON(gin.H{"type": "user_joined", "user_id": ev.UserID, "user_name": ev.UserName})
		}
	case chat.UserLeftEvent:
		if ev.UserID != s.ident.ID {
			s.sendJSON(gin.H{"type": "user_left", "user_id": ev.UserID, "user_name": ev.UserName})
		}
	case chat.TypingEvent:
		if ev.UserID != s.ident.ID {
			s.sendJSON(gin.H{
				"type":      "user_typing",
				"user_id":   ev.UserID,
				"user_name": ev.UserName,
				"is_typing": ev.IsTyping,
			})
		}
	}
}

// broadcast publishes a room event, logging and swallowing failures.
func (s *chatSession) broadcast(ctx context.Context, event string, payload any) {
	env, err := fabric.NewEnvelope(event, payload)
	if err != nil {
		s.ctl.log.Warn().Err(err).Str("event", event).Msg("chat: encode broadcast failed")
		return
	}
	opCtx, cancel := context.WithTimeout(ctx, s.ctl.inflightTimeout)
	defer cancel()
	if err := s.ctl.fab.Broadcast(opCtx, s.room, env); err != nil {
		s.ctl.log.Warn().Err(err).Str("event", event).Str("room", s.room).Msg("chat: broadcast failed")
	}
}

func (s *chatSession) sendJSON(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = s.conn.Send(payload)
}

func (s *chatSession) sendError(message string) {
	s.sendJSON(gin.H{"type": "error", "message": message})
}

func formatUserID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
