package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/application/domain"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/adapter"
	repository "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/port"
)

var (
	alice = chat.Sender{ID: 1, Name: "Alice", Email: "alice@example.com", Role: "teacher"}
	bob   = chat.Sender{ID: 2, Name: "Bob", Email: "bob@example.com", Role: "student"}
)

func post(t *testing.T, repo repository.MessageRepository, session string, sender chat.Sender, body string) *chat.Message {
	t.Helper()
	msg, err := NewPostMessageUseCase(repo).Execute(context.Background(), PostMessageInput{
		SessionID: session,
		Sender:    sender,
		Body:      body,
	})
	require.NoError(t, err)
	return msg
}

func TestPostMessageMarksSenderAsReader(t *testing.T) {
	repo := adapter.NewMemMessageRepository()

	msg := post(t, repo, "42", alice, "salaam")

	assert.True(t, repo.ReadBy(msg.ID, alice.ID), "sender must be in the read-by set at creation")

	unread, err := NewUnreadCountUseCase(repo).Execute(context.Background(), "42", alice.ID)
	require.NoError(t, err)
	assert.Zero(t, unread, "a sender's own message is never unread for them")

	unread, err = NewUnreadCountUseCase(repo).Execute(context.Background(), "42", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)
}

func TestPostMessageRejectsEmptyBody(t *testing.T) {
	repo := adapter.NewMemMessageRepository()
	uc := NewPostMessageUseCase(repo)

	for _, body := range []string{"", "   ", "\n\t"} {
		_, err := uc.Execute(context.Background(), PostMessageInput{
			SessionID: "42",
			Sender:    alice,
			Body:      body,
		})
		assert.ErrorIs(t, err, chat.ErrEmptyMessage, "body %q", body)
	}
}

func TestPostMessageTrimsBody(t *testing.T) {
	repo := adapter.NewMemMessageRepository()

	msg := post(t, repo, "42", alice, "  salaam  ")

	assert.Equal(t, "salaam", msg.Body)
}

func TestGetHistoryChronologicalWithLimit(t *testing.T) {
	repo := adapter.NewMemMessageRepository()
	post(t, repo, "42", alice, "one")
	post(t, repo, "42", bob, "two")
	post(t, repo, "42", alice, "three")
	post(t, repo, "other", alice, "elsewhere")

	out, err := NewGetHistoryUseCase(repo).Execute(context.Background(), GetHistoryInput{
		SessionID: "42",
		UserID:    bob.ID,
		Limit:     2,
	})
	require.NoError(t, err)

	require.Len(t, out.Messages, 2)
	assert.Equal(t, "two", out.Messages[0].Body, "newest window, oldest first")
	assert.Equal(t, "three", out.Messages[1].Body)
	assert.Equal(t, 2, out.UnreadCount, "alice's two messages are unread for bob")
}

func TestMarkReadIsIdempotent(t *testing.T) {
	repo := adapter.NewMemMessageRepository()
	post(t, repo, "42", alice, "one")
	post(t, repo, "42", alice, "two")

	uc := NewMarkReadUseCase(repo)

	out, err := uc.Execute(context.Background(), MarkReadInput{SessionID: "42", UserID: bob.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, out.MarkedCount)
	assert.Zero(t, out.UnreadCount)

	out, err = uc.Execute(context.Background(), MarkReadInput{SessionID: "42", UserID: bob.ID})
	require.NoError(t, err)
	assert.Zero(t, out.MarkedCount, "second identical call marks nothing")
	assert.Zero(t, out.UnreadCount)
}

func TestMarkReadHonorsCeiling(t *testing.T) {
	repo := adapter.NewMemMessageRepository()
	first := post(t, repo, "42", alice, "one")
	post(t, repo, "42", alice, "two")

	out, err := NewMarkReadUseCase(repo).Execute(context.Background(), MarkReadInput{
		SessionID: "42",
		UserID:    bob.ID,
		Ceiling:   &first.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, out.MarkedCount)
	assert.Equal(t, 1, out.UnreadCount, "messages above the ceiling stay unread")
}

func TestDeleteMessageSenderOnly(t *testing.T) {
	repo := adapter.NewMemMessageRepository()
	msg := post(t, repo, "42", alice, "oops")

	uc := NewDeleteMessageUseCase(repo)

	err := uc.Execute(context.Background(), msg.ID, bob.ID)
	assert.ErrorIs(t, err, repository.ErrNotSender)

	err = uc.Execute(context.Background(), msg.ID, alice.ID)
	require.NoError(t, err)

	err = uc.Execute(context.Background(), 999, alice.ID)
	assert.ErrorIs(t, err, repository.ErrMessageNotFound)
}

func TestDeletedMessagesLeaveHistoryAndCounts(t *testing.T) {
	repo := adapter.NewMemMessageRepository()
	msg := post(t, repo, "42", alice, "going away")
	post(t, repo, "42", alice, "staying")

	require.NoError(t, NewDeleteMessageUseCase(repo).Execute(context.Background(), msg.ID, alice.ID))

	out, err := NewGetHistoryUseCase(repo).Execute(context.Background(), GetHistoryInput{
		SessionID: "42",
		UserID:    bob.ID,
	})
	require.NoError(t, err)

	require.Len(t, out.Messages, 1)
	assert.Equal(t, "staying", out.Messages[0].Body)
	assert.Equal(t, 1, out.UnreadCount, "deleted messages do not count as unread")
}
