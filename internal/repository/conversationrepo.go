package repository

import (
	"context"

	"github.com/and161185/messenger/internal/model"
)

// ConversationRepository owns each user's list of conversation summaries.
type ConversationRepository interface {
	// AppendSummary adds summary to owner's list. An entry with the same id and peer is kept
	// as is; the same id with another peer fails with errs.ErrDuplicateID.
	AppendSummary(ctx context.Context, owner model.IdentityKey, summary model.ConversationSummary) error
	// UpdateLatestMessage replaces the latest-message snapshot of one entry unless the stored
	// snapshot is newer, or fails with errs.ErrConversationNotFound.
	UpdateLatestMessage(ctx context.Context, owner model.IdentityKey, conversationID string, latest model.LatestMessage) error
	// ListSummaries returns owner's list in insertion order.
	ListSummaries(ctx context.Context, owner model.IdentityKey) ([]model.ConversationSummary, error)
}
