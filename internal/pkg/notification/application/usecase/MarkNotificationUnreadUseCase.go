package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
	domain "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/domain"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
)

// MarkNotificationUnreadUseCase clears the read stamp and pushes the state
// change onto the owner's feed.
type MarkNotificationUnreadUseCase struct {
	Repo port.NotificationRepository
	Fab  fabric.Fabric
	Log  zerolog.Logger
}

func NewMarkNotificationUnreadUseCase(repo port.NotificationRepository, fab fabric.Fabric, log zerolog.Logger) *MarkNotificationUnreadUseCase {
	return &MarkNotificationUnreadUseCase{Repo: repo, Fab: fab, Log: log}
}

func (uc *MarkNotificationUnreadUseCase) Execute(ctx context.Context, id, userID int64) (domain.Notification, error) {
	n, err := uc.Repo.MarkUnread(ctx, id, userID)
	if errors.Is(err, port.ErrNotificationNotFound) {
		return domain.Notification{}, err
	}
	if err != nil {
		return domain.Notification{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	publishToUser(ctx, uc.Fab, uc.Log, userID, domain.EventUpdated, domain.UpdatedEvent{
		NotificationID: n.ID,
		Updates:        map[string]any{"is_read": false, "read_at": nil},
	})
	return n, nil
}
