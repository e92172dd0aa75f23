package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/signaling/presentation/controller"
)

// RegisterRoutes registers the signaling websocket endpoint.
func RegisterRoutes(ws *gin.RouterGroup, fab fabric.Fabric, log zerolog.Logger) {
	socketCtl := controller.NewSignalingSocketController(fab, log)

	// GET /ws/sessions/:sessionId/signaling/ -> WebRTC signaling relay for a session
	ws.GET("/sessions/:sessionId/signaling/", socketCtl.Handle())
}
