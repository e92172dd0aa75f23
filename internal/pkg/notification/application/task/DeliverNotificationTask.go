package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
	qport "github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/queue/port"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/usecase"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
)

// DeliverNotificationTaskType is the queue task name for fanning a
// notification out to a set of recipients.
const DeliverNotificationTaskType = "notification:deliver"

// DeliverNotificationTaskPayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid tight coupling with JSON tags.
type DeliverNotificationTaskPayload struct {
	UserIDs   []int64         `json:"userIds"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	Type      string          `json:"type"`
	Channel   string          `json:"channel"`
	ActionURL string          `json:"actionUrl"`
	Metadata  json.RawMessage `json:"metadata"`
}

// RegisterDeliverNotificationTask binds the fan-out handler to the worker
// server. Each recipient gets a stored row plus a realtime push; the
// handler is idempotent only per enqueue, so callers use UniqueTTL to
// dedupe retries of the same broadcast.
func RegisterDeliverNotificationTask(srv qport.Server, repo port.NotificationRepository, fab fabric.Fabric, log zerolog.Logger) {
	uc := usecase.NewBroadcastNotificationUseCase(repo, fab, log)

	srv.Register(DeliverNotificationTaskType, func(ctx context.Context, t qport.Task) error {
		var p DeliverNotificationTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying will not fix it
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		out, err := uc.Execute(ctx, usecase.BroadcastNotificationInput{
			UserIDs:   p.UserIDs,
			Title:     p.Title,
			Body:      p.Body,
			Type:      p.Type,
			Channel:   p.Channel,
			ActionURL: p.ActionURL,
			Metadata:  p.Metadata,
		})
		if err != nil {
			return err
		}
		log.Info().
			Int("delivered", len(out.Notifications)).
			Int("failed", out.FailedCount).
			Msg("notification fan-out done")
		return nil
	})
}
