package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
	domain "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/domain"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
)

// BroadcastNotificationInput fans the same notification out to many
// recipients, each getting their own stored row and feed push.
type BroadcastNotificationInput struct {
	UserIDs   []int64
	Title     string
	Body      string
	Type      string
	Channel   string
	ActionURL string
	Metadata  json.RawMessage
}

// BroadcastNotificationOutput reports the created rows and how many
// recipients failed.
type BroadcastNotificationOutput struct {
	Notifications []domain.Notification
	FailedCount   int
}

// BroadcastNotificationUseCase creates one notification per recipient.
// Recipients are isolated: a failure for one user is logged and skipped,
// the rest still receive theirs.
type BroadcastNotificationUseCase struct {
	send *SendNotificationUseCase
	log  zerolog.Logger
}

func NewBroadcastNotificationUseCase(repo port.NotificationRepository, fab fabric.Fabric, log zerolog.Logger) *BroadcastNotificationUseCase {
	return &BroadcastNotificationUseCase{
		send: NewSendNotificationUseCase(repo, fab, log),
		log:  log,
	}
}

func (uc *BroadcastNotificationUseCase) Execute(ctx context.Context, in BroadcastNotificationInput) (*BroadcastNotificationOutput, error) {
	if len(in.UserIDs) == 0 || in.Title == "" {
		return nil, fmt.Errorf("userIds and title are required")
	}

	out := &BroadcastNotificationOutput{}
	for _, userID := range in.UserIDs {
		n, err := uc.send.Execute(ctx, SendNotificationInput{
			UserID:    userID,
			Title:     in.Title,
			Body:      in.Body,
			Type:      in.Type,
			Channel:   in.Channel,
			ActionURL: in.ActionURL,
			Metadata:  in.Metadata,
		})
		if err != nil {
			uc.log.Error().Err(err).Int64("user_id", userID).Msg("broadcast recipient failed")
			out.FailedCount++
			continue
		}
		out.Notifications = append(out.Notifications, *n)
	}
	return out, nil
}
