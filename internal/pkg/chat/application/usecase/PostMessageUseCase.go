package usecase

import (
	"context"
	"fmt"

	chat "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/application/domain"
	repository "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/port"
)

// PostMessageInput carries the data needed to post a new text message.
type PostMessageInput struct {
	SessionID string
	Sender    chat.Sender
	Body      string
}

// PostMessageUseCase validates and persists a chat message. The sender is
// added to the read-by set inside the same persistence transaction, so the
// auto-read invariant holds before anyone can observe the message.
type PostMessageUseCase struct {
	Repo repository.MessageRepository
}

func NewPostMessageUseCase(repo repository.MessageRepository) *PostMessageUseCase {
	return &PostMessageUseCase{Repo: repo}
}

// Execute persists a new message for a session and returns it with its id.
func (uc *PostMessageUseCase) Execute(ctx context.Context, in PostMessageInput) (*chat.Message, error) {
	if in.SessionID == "" || in.Sender.ID == 0 {
		return nil, fmt.Errorf("sessionId and sender are required")
	}

	msg, err := chat.NewMessage(in.SessionID, in.Sender, in.Body)
	if err != nil {
		return nil, err
	}

	saved, err := uc.Repo.SaveMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &saved, nil
}
