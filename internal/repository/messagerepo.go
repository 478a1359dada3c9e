package repository

import (
	"context"

	"github.com/and161185/messenger/internal/model"
)

// MessageRepository owns the ordered message log of each conversation.
type MessageRepository interface {
	// AppendMessage adds m to the end of the log and returns the stored message.
	// An identical resend is not duplicated; a different message under a used id
	// fails with errs.ErrDuplicateID.
	AppendMessage(ctx context.Context, conversationID string, m model.Message) (model.Message, error)
	// ListMessages returns the log in append order.
	ListMessages(ctx context.Context, conversationID string) ([]model.Message, error)
}
