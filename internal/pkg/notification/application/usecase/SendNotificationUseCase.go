package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
	domain "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/domain"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
)

// SendNotificationInput describes one notification for one recipient.
// Type and Channel fall back to info/in_app when empty.
type SendNotificationInput struct {
	UserID    int64
	Title     string
	Body      string
	Type      string
	Channel   string
	ActionURL string
	Metadata  json.RawMessage
}

// SendNotificationUseCase persists a notification and pushes it onto the
// recipient's realtime feed. Persistence is authoritative: a feed push
// failure is logged and swallowed, the notification is still created.
type SendNotificationUseCase struct {
	Repo port.NotificationRepository
	Fab  fabric.Fabric
	Log  zerolog.Logger
}

func NewSendNotificationUseCase(repo port.NotificationRepository, fab fabric.Fabric, log zerolog.Logger) *SendNotificationUseCase {
	return &SendNotificationUseCase{Repo: repo, Fab: fab, Log: log}
}

func (uc *SendNotificationUseCase) Execute(ctx context.Context, in SendNotificationInput) (*domain.Notification, error) {
	if in.UserID == 0 || in.Title == "" {
		return nil, fmt.Errorf("userId and title are required")
	}

	now := time.Now().UTC()
	n := &domain.Notification{
		UserID:    in.UserID,
		Channel:   orDefault(in.Channel, domain.ChannelInApp),
		Type:      orDefault(in.Type, domain.TypeInfo),
		Title:     in.Title,
		Body:      in.Body,
		Metadata:  in.Metadata,
		ActionURL: in.ActionURL,
		Status:    domain.StatusSent,
		SentAt:    &now,
	}
	if err := uc.Repo.Save(ctx, n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	publishToUser(ctx, uc.Fab, uc.Log, n.UserID, domain.EventCreated, domain.CreatedEvent{
		Notification: n.ToListPayload(),
	})
	return n, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// publishToUser broadcasts a feed event to the user's notification group.
// Delivery is best-effort: the stored row is the source of truth and the
// client reconciles on next fetch.
func publishToUser(ctx context.Context, fab fabric.Fabric, log zerolog.Logger, userID int64, event string, payload any) {
	env, err := fabric.NewEnvelope(event, payload)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("encode feed event")
		return
	}
	if err := fab.Broadcast(ctx, domain.UserGroup(userID), env); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Str("event", event).Msg("feed push failed")
	}
}
