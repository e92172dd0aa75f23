package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/auth"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/usecase"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
)

// NotificationDetailController fetches and removes single notifications,
// plus the clear-all endpoint. All operations are scoped to the caller's
// own rows.
type NotificationDetailController struct {
	repo        port.NotificationRepository
	deleteAllUC *usecase.DeleteAllNotificationsUseCase
}

func NewNotificationDetailController(repo port.NotificationRepository) *NotificationDetailController {
	return &NotificationDetailController{
		repo:        repo,
		deleteAllUC: usecase.NewDeleteAllNotificationsUseCase(repo),
	}
}

// Get returns a gin handler for GET /notifications/:id.
func (h *NotificationDetailController) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := notificationID(c)
		if !ok {
			return
		}
		user := auth.CurrentUser(c)
		n, err := h.repo.FindForUser(c.Request.Context(), id, user.ID)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, n.ToPayload())
		case errors.Is(err, port.ErrNotificationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notification"})
		}
	}
}

// Delete returns a gin handler for DELETE /notifications/:id.
func (h *NotificationDetailController) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := notificationID(c)
		if !ok {
			return
		}
		user := auth.CurrentUser(c)
		err := h.repo.Delete(c.Request.Context(), id, user.ID)
		switch {
		case err == nil:
			c.Status(http.StatusNoContent)
		case errors.Is(err, port.ErrNotificationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete notification"})
		}
	}
}

// DeleteAll returns a gin handler for DELETE /notifications/delete-all.
func (h *NotificationDetailController) DeleteAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		count, err := h.deleteAllUC.Execute(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%d notifications deleted", count)})
	}
}
