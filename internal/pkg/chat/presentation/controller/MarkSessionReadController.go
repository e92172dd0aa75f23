package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/auth"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/application/usecase"
	repository "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/port"
)

// MarkSessionReadController marks session messages as read for the caller.
type MarkSessionReadController struct {
	markReadUC *usecase.MarkReadUseCase
}

func NewMarkSessionReadController(repo repository.MessageRepository) *MarkSessionReadController {
	return &MarkSessionReadController{markReadUC: usecase.NewMarkReadUseCase(repo)}
}

// markReadRequest is the DTO for the HTTP request body. MessageID, when set,
// caps the marking at that message id.
type markReadRequest struct {
	MessageID *int64 `json:"message_id"`
}

// Handle returns a gin handler for POST /sessions/:sessionId/chat/mark-read.
func (h *MarkSessionReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
			return
		}

		var req markReadRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		user := auth.CurrentUser(c)
		out, err := h.markReadUC.Execute(c.Request.Context(), usecase.MarkReadInput{
			SessionID: sessionID,
			UserID:    user.ID,
			Ceiling:   req.MessageID,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark messages as read"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"marked_count": out.MarkedCount,
			"unread_count": out.UnreadCount,
		})
	}
}
