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

// MarkNotificationReadUseCase stamps a notification as read and pushes the
// state change onto the owner's feed. Marking twice is a no-op.
type MarkNotificationReadUseCase struct {
	Repo port.NotificationRepository
	Fab  fabric.Fabric
	Log  zerolog.Logger
}

func NewMarkNotificationReadUseCase(repo port.NotificationRepository, fab fabric.Fabric, log zerolog.Logger) *MarkNotificationReadUseCase {
	return &MarkNotificationReadUseCase{Repo: repo, Fab: fab, Log: log}
}

func (uc *MarkNotificationReadUseCase) Execute(ctx context.Context, id, userID int64) (domain.Notification, error) {
	n, err := uc.Repo.MarkRead(ctx, id, userID)
	if errors.Is(err, port.ErrNotificationNotFound) {
		return domain.Notification{}, err
	}
	if err != nil {
		return domain.Notification{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	publishToUser(ctx, uc.Fab, uc.Log, userID, domain.EventUpdated, domain.UpdatedEvent{
		NotificationID: n.ID,
		Updates:        map[string]any{"is_read": true, "read_at": n.ReadAt},
	})
	return n, nil
}
