package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/auth"
	chat "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/application/domain"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/application/usecase"
	repository "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/port"
)

// SessionMessagesController serves the message history for a session
// (one controller per endpoint).
type SessionMessagesController struct {
	historyUC *usecase.GetHistoryUseCase
}

func NewSessionMessagesController(repo repository.MessageRepository) *SessionMessagesController {
	return &SessionMessagesController{historyUC: usecase.NewGetHistoryUseCase(repo)}
}

// Handle returns a gin handler for GET /sessions/:sessionId/chat/messages.
func (h *SessionMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
			return
		}

		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}

		user := auth.CurrentUser(c)
		out, err := h.historyUC.Execute(c.Request.Context(), usecase.GetHistoryInput{
			SessionID: sessionID,
			UserID:    user.ID,
			Limit:     limit,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
			return
		}

		results := make([]chat.Payload, 0, len(out.Messages))
		for _, m := range out.Messages {
			results = append(results, m.ToPayload())
		}
		c.JSON(http.StatusOK, gin.H{
			"count":        len(results),
			"results":      results,
			"unread_count": out.UnreadCount,
		})
	}
}
