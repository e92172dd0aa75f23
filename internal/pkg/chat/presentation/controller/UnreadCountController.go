package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/auth"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/application/usecase"
	repository "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/port"
)

// UnreadCountController reports the caller's unread count for a session.
type UnreadCountController struct {
	unreadUC *usecase.UnreadCountUseCase
}

func NewUnreadCountController(repo repository.MessageRepository) *UnreadCountController {
	return &UnreadCountController{unreadUC: usecase.NewUnreadCountUseCase(repo)}
}

// Handle returns a gin handler for GET /sessions/:sessionId/chat/unread-count.
func (h *UnreadCountController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
			return
		}

		user := auth.CurrentUser(c)
		count, err := h.unreadUC.Execute(c.Request.Context(), sessionID, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute unread count"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"unread_count": count})
	}
}
