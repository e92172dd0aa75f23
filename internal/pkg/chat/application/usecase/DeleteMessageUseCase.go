package usecase

import (
	"context"
	"errors"
	"fmt"

	repository "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/port"
)

// DeleteMessageUseCase soft-deletes a message on behalf of its sender.
// Deleted messages stay stored but disappear from history and unread
// counts.
type DeleteMessageUseCase struct {
	Repo repository.MessageRepository
}

func NewDeleteMessageUseCase(repo repository.MessageRepository) *DeleteMessageUseCase {
	return &DeleteMessageUseCase{Repo: repo}
}

func (uc *DeleteMessageUseCase) Execute(ctx context.Context, messageID, requesterID int64) error {
	if messageID == 0 || requesterID == 0 {
		return fmt.Errorf("messageId and requesterId are required")
	}
	err := uc.Repo.SoftDelete(ctx, messageID, requesterID)
	if err == nil ||
		errors.Is(err, repository.ErrMessageNotFound) ||
		errors.Is(err, repository.ErrNotSender) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
