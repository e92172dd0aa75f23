package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/auth"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/presentation/controller"
	repository "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/port"
)

// RegisterRoutes registers the chat websocket and REST endpoints.
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(ws *gin.RouterGroup, api *gin.RouterGroup, repo repository.MessageRepository, fab fabric.Fabric, authn *auth.Authenticator, log zerolog.Logger) {
	socketCtl := controller.NewChatSocketController(repo, fab, authn, log)
	messagesCtl := controller.NewSessionMessagesController(repo)
	markReadCtl := controller.NewMarkSessionReadController(repo)
	unreadCtl := controller.NewUnreadCountController(repo)
	deleteCtl := controller.NewDeleteMessageController(repo)

	// GET /ws/sessions/:sessionId/chat/ -> websocket endpoint for a session's chat room
	ws.GET("/sessions/:sessionId/chat/", socketCtl.Handle())

	authed := api.Group("", auth.RequireUser(authn))

	// GET /api/v1/sessions/:sessionId/chat/messages -> recent history plus unread count
	authed.GET("/sessions/:sessionId/chat/messages", messagesCtl.Handle())

	// POST /api/v1/sessions/:sessionId/chat/mark-read -> mark messages read, optional ceiling
	authed.POST("/sessions/:sessionId/chat/mark-read", markReadCtl.Handle())

	// GET /api/v1/sessions/:sessionId/chat/unread-count -> caller's unread count
	authed.GET("/sessions/:sessionId/chat/unread-count", unreadCtl.Handle())

	// POST /api/v1/chat/messages/:messageId/delete -> sender-only soft delete
	authed.POST("/chat/messages/:messageId/delete", deleteCtl.Handle())
}
