package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
	qport "github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/queue/port"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/auth"
	chathttp "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/presentation/http"
	chatport "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/port"
	notifhttp "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/presentation/http"
	notifport "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
	signalinghttp "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/signaling/presentation/http"
)

// Deps carries the shared infrastructure handed down to every feature
// router.
type Deps struct {
	Messages      chatport.MessageRepository
	Notifications notifport.NotificationRepository
	Fabric        fabric.Fabric
	Queue         qport.Client
	Authn         *auth.Authenticator
	Log           zerolog.Logger
}

// RegisterRoutes mounts the websocket endpoints under /ws and the REST API
// under /api/v1.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	ws := r.Group("/ws")
	api := r.Group("/api/v1")

	signalinghttp.RegisterRoutes(ws, deps.Fabric, deps.Log)
	chathttp.RegisterRoutes(ws, api, deps.Messages, deps.Fabric, deps.Authn, deps.Log)
	notifhttp.RegisterRoutes(ws, api, deps.Notifications, deps.Fabric, deps.Queue, deps.Authn, deps.Log)
}
