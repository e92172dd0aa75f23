package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/auth"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/application/usecase"
	repository "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/port"
)

// DeleteMessageController soft-deletes a message on behalf of its sender.
type DeleteMessageController struct {
	deleteUC *usecase.DeleteMessageUseCase
}

func NewDeleteMessageController(repo repository.MessageRepository) *DeleteMessageController {
	return &DeleteMessageController{deleteUC: usecase.NewDeleteMessageUseCase(repo)}
}

// Handle returns a gin handler for POST /chat/messages/:messageId/delete.
func (h *DeleteMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		messageID, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
		if err != nil || messageID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "messageId must be a positive integer"})
			return
		}

		user := auth.CurrentUser(c)
		err = h.deleteUC.Execute(c.Request.Context(), messageID, user.ID)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
		case errors.Is(err, repository.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		case errors.Is(err, repository.ErrNotSender):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the sender can delete a message"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message"})
		}
	}
}
