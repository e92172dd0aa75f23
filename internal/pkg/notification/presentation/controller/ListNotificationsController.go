package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/auth"
	domain "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/domain"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/usecase"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
)

// ListNotificationsController serves the caller's notification feed
// (one controller per endpoint).
type ListNotificationsController struct {
	listUC *usecase.ListNotificationsUseCase
}

func NewListNotificationsController(repo port.NotificationRepository) *ListNotificationsController {
	return &ListNotificationsController{listUC: usecase.NewListNotificationsUseCase(repo)}
}

// Handle returns a gin handler for GET /notifications.
// Query params: is_read=true|false, type=<category>, limit=<n>.
func (h *ListNotificationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		in := usecase.ListNotificationsInput{
			UserID: user.ID,
			Type:   c.Query("type"),
		}
		switch strings.ToLower(c.Query("is_read")) {
		case "true":
			v := true
			in.IsRead = &v
		case "false":
			v := false
			in.IsRead = &v
		}
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			in.Limit = n
		}

		notifications, err := h.listUC.Execute(c.Request.Context(), in)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
			return
		}

		results := make([]domain.ListPayload, 0, len(notifications))
		for _, n := range notifications {
			results = append(results, n.ToListPayload())
		}
		c.JSON(http.StatusOK, gin.H{
			"count":   len(results),
			"results": results,
		})
	}
}
