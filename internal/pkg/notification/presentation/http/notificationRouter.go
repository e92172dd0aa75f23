package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
	qport "github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/queue/port"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/auth"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/presentation/controller"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
)

// RegisterRoutes registers the notification feed websocket and the
// notification-center REST endpoints.
func RegisterRoutes(ws *gin.RouterGroup, api *gin.RouterGroup, repo port.NotificationRepository, fab fabric.Fabric, client qport.Client, authn *auth.Authenticator, log zerolog.Logger) {
	socketCtl := controller.NewNotificationSocketController(fab, authn, log)
	listCtl := controller.NewListNotificationsController(repo)
	createCtl := controller.NewCreateNotificationController(repo, fab, log)
	broadcastCtl := controller.NewBroadcastNotificationController(client)
	stateCtl := controller.NewNotificationStateController(repo, fab, log)
	detailCtl := controller.NewNotificationDetailController(repo)

	// GET /ws/notifications/ -> websocket feed for the authenticated user
	ws.GET("/notifications/", socketCtl.Handle())

	authed := api.Group("/notifications", auth.RequireUser(authn))

	authed.GET("", listCtl.Handle())
	authed.POST("", createCtl.Handle())
	authed.POST("/broadcast", broadcastCtl.Handle())
	authed.GET("/unread-count", stateCtl.UnreadCount())
	authed.POST("/mark-all-read", stateCtl.MarkAllRead())
	authed.DELETE("/delete-all", detailCtl.DeleteAll())
	authed.GET("/:id", detailCtl.Get())
	authed.DELETE("/:id", detailCtl.Delete())
	authed.POST("/:id/read", stateCtl.MarkRead())
	authed.POST("/:id/unread", stateCtl.MarkUnread())
}
