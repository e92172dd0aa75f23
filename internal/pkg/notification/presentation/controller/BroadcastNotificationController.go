package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	qport "github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/queue/port"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/task"
)

// BroadcastNotificationController fans a notification out to many
// recipients through the background queue, so a large class roster does
// not block the request.
type BroadcastNotificationController struct {
	Q qport.Client
}

func NewBroadcastNotificationController(client qport.Client) *BroadcastNotificationController {
	return &BroadcastNotificationController{Q: client}
}

// broadcastNotificationRequest is the DTO for the HTTP request body.
type broadcastNotificationRequest struct {
	UserIDs   []int64         `json:"user_ids" binding:"required"`
	Title     string          `json:"title" binding:"required"`
	Body      string          `json:"body"`
	Type      string          `json:"type"`
	Channel   string          `json:"channel"`
	Metadata  json.RawMessage `json:"metadata"`
	ActionURL string          `json:"action_url"`
}

// Handle returns a gin handler that enqueues a background fan-out task.
func (h *BroadcastNotificationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req broadcastNotificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(req.UserIDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_ids must not be empty"})
			return
		}

		payload := task.DeliverNotificationTaskPayload{
			UserIDs:   req.UserIDs,
			Title:     req.Title,
			Body:      req.Body,
			Type:      req.Type,
			Channel:   req.Channel,
			ActionURL: req.ActionURL,
			Metadata:  req.Metadata,
		}
		b, err := json.Marshal(payload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode task payload"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		opts := qport.EnqueueOption{Queue: "notifications", MaxRetry: 10}
		id, err := h.Q.Enqueue(ctx, qport.Task{Type: task.DeliverNotificationTaskType, Payload: b}, opts)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to enqueue broadcast"})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"status":     "queued",
			"task_id":    id,
			"recipients": len(req.UserIDs),
		})
	}
}
