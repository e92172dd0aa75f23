package controller

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/auth"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/usecase"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
)

// CreateNotificationController stores a notification and pushes it to the
// recipient's live feed.
type CreateNotificationController struct {
	sendUC *usecase.SendNotificationUseCase
}

func NewCreateNotificationController(repo port.NotificationRepository, fab fabric.Fabric, log zerolog.Logger) *CreateNotificationController {
	return &CreateNotificationController{sendUC: usecase.NewSendNotificationUseCase(repo, fab, log)}
}

// createNotificationRequest is the DTO for the HTTP request body. User
// defaults to the caller when omitted.
type createNotificationRequest struct {
	User      int64           `json:"user"`
	Channel   string          `json:"channel"`
	Type      string          `json:"type"`
	Title     string          `json:"title" binding:"required"`
	Body      string          `json:"body"`
	Metadata  json.RawMessage `json:"metadata"`
	ActionURL string          `json:"action_url"`
}

// Handle returns a gin handler for POST /notifications.
func (h *CreateNotificationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createNotificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID := req.User
		if userID == 0 {
			userID = auth.CurrentUser(c).ID
		}

		n, err := h.sendUC.Execute(c.Request.Context(), usecase.SendNotificationInput{
			UserID:    userID,
			Title:     req.Title,
			Body:      req.Body,
			Type:      req.Type,
			Channel:   req.Channel,
			ActionURL: req.ActionURL,
			Metadata:  req.Metadata,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create notification"})
			return
		}
		c.JSON(http.StatusCreated, n.ToPayload())
	}
}
