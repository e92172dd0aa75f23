package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/auth"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/usecase"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
)

// NotificationStateController groups the read-state mutations of the
// notification center: per-row read/unread, mark-all, and the unread
// counter.
type NotificationStateController struct {
	markReadUC   *usecase.MarkNotificationReadUseCase
	markUnreadUC *usecase.MarkNotificationUnreadUseCase
	markAllUC    *usecase.MarkAllReadUseCase
	unreadUC     *usecase.UnreadCountUseCase
}

func NewNotificationStateController(repo port.NotificationRepository, fab fabric.Fabric, log zerolog.Logger) *NotificationStateController {
	return &NotificationStateController{
		markReadUC:   usecase.NewMarkNotificationReadUseCase(repo, fab, log),
		markUnreadUC: usecase.NewMarkNotificationUnreadUseCase(repo, fab, log),
		markAllUC:    usecase.NewMarkAllReadUseCase(repo),
		unreadUC:     usecase.NewUnreadCountUseCase(repo),
	}
}

// MarkRead returns a gin handler for POST /notifications/:id/read.
func (h *NotificationStateController) MarkRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := notificationID(c)
		if !ok {
			return
		}
		user := auth.CurrentUser(c)
		n, err := h.markReadUC.Execute(c.Request.Context(), id, user.ID)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, n.ToPayload())
		case errors.Is(err, port.ErrNotificationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notification as read"})
		}
	}
}

// MarkUnread returns a gin handler for POST /notifications/:id/unread.
func (h *NotificationStateController) MarkUnread() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := notificationID(c)
		if !ok {
			return
		}
		user := auth.CurrentUser(c)
		n, err := h.markUnreadUC.Execute(c.Request.Context(), id, user.ID)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, n.ToPayload())
		case errors.Is(err, port.ErrNotificationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notification as unread"})
		}
	}
}

// MarkAllRead returns a gin handler for POST /notifications/mark-all-read.
func (h *NotificationStateController) MarkAllRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		count, err := h.markAllUC.Execute(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notifications as read"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%d notifications marked as read", count)})
	}
}

// UnreadCount returns a gin handler for GET /notifications/unread-count.
func (h *NotificationStateController) UnreadCount() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		count, err := h.unreadUC.Execute(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute unread count"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"unread_count": count})
	}
}

func notificationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}
