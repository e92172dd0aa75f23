package usecase

import (
	"context"
	"fmt"

	domain "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/domain"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
)

// ListNotificationsInput narrows the feed to read/unread rows, a type, and
// a page size.
type ListNotificationsInput struct {
	UserID int64
	IsRead *bool
	Type   string
	Limit  int
}

// ListNotificationsUseCase returns a user's notifications, newest first.
type ListNotificationsUseCase struct {
	Repo port.NotificationRepository
}

func NewListNotificationsUseCase(repo port.NotificationRepository) *ListNotificationsUseCase {
	return &ListNotificationsUseCase{Repo: repo}
}

func (uc *ListNotificationsUseCase) Execute(ctx context.Context, in ListNotificationsInput) ([]domain.Notification, error) {
	if in.UserID == 0 {
		return nil, fmt.Errorf("userId is required")
	}
	out, err := uc.Repo.ListForUser(ctx, in.UserID, port.ListFilter{
		IsRead: in.IsRead,
		Type:   in.Type,
		Limit:  in.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return out, nil
}
