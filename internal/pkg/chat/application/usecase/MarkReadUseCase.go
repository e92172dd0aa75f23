package usecase

import (
	"context"
	"fmt"

	repository "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/port"
)

// MarkReadInput identifies the session, the marking user, and an optional
// message-id ceiling: when set, only messages with id <= Ceiling are marked.
type MarkReadInput struct {
	SessionID string
	UserID    int64
	Ceiling   *int64
}

// MarkReadOutput reports how many messages were newly marked and the
// requester's unread count after the mutation.
type MarkReadOutput struct {
	MarkedCount int
	UnreadCount int
}

// MarkReadUseCase adds the user to the read-by set of every unread message
// in the session. The underlying set-add is idempotent: a second identical
// call marks zero messages and leaves the unread count unchanged.
type MarkReadUseCase struct {
	Repo repository.MessageRepository
}

func NewMarkReadUseCase(repo repository.MessageRepository) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) (*MarkReadOutput, error) {
	if in.SessionID == "" || in.UserID == 0 {
		return nil, fmt.Errorf("sessionId and userId are required")
	}

	marked, err := uc.Repo.MarkRead(ctx, in.SessionID, in.UserID, in.Ceiling)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	unread, err := uc.Repo.UnreadCount(ctx, in.SessionID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &MarkReadOutput{MarkedCount: marked, UnreadCount: unread}, nil
}
