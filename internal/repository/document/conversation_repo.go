package document

import (
	"context"
	"fmt"

	"github.com/and161185/messenger/internal/errs"
	"github.com/and161185/messenger/internal/model"
)

// ConversationRepo implements repository.ConversationRepository.
type ConversationRepo struct{ b *Backend }

// NewConversationRepo constructs ConversationRepo.
func NewConversationRepo(b *Backend) *ConversationRepo { return &ConversationRepo{b: b} }

// AppendSummary adds s to owner's list unless an entry with the same id exists.
// An existing entry must name the same peer, otherwise errs.ErrDuplicateID is returned.
func (r *ConversationRepo) AppendSummary(ctx context.Context, owner model.IdentityKey, s model.ConversationSummary) error {
	rec := fromSummary(s)
	return mutateList(ctx, r.b, conversationsKey(owner), func(list []summaryRecord) ([]summaryRecord, bool, error) {
		for _, e := range list {
			if e.ID != rec.ID {
				continue
			}
			if e.OtherUserEmail != rec.OtherUserEmail || e.Name != rec.Name {
				return nil, false, fmt.Errorf("%w: %s in list of %s names peer %s", errs.ErrDuplicateID, rec.ID, owner, e.OtherUserEmail)
			}
			return list, false, nil
		}
		return append(list, rec), true, nil
	})
}

// UpdateLatestMessage replaces the latest-message snapshot of conversationID in owner's list.
// A stored snapshot dated after latest is left in place.
func (r *ConversationRepo) UpdateLatestMessage(ctx context.Context, owner model.IdentityKey, conversationID string, latest model.LatestMessage) error {
	rec := fromLatest(latest)
	return mutateList(ctx, r.b, conversationsKey(owner), func(list []summaryRecord) ([]summaryRecord, bool, error) {
		for i := range list {
			if list[i].ID == conversationID {
				if list[i].LatestMessage.Date.After(rec.Date) {
					return list, false, nil
				}
				list[i].LatestMessage = rec
				return list, true, nil
			}
		}
		return nil, false, fmt.Errorf("%w: %s in list of %s", errs.ErrConversationNotFound, conversationID, owner)
	})
}

// ListSummaries returns owner's summaries in insertion order; a missing list is empty.
func (r *ConversationRepo) ListSummaries(ctx context.Context, owner model.IdentityKey) ([]model.ConversationSummary, error) {
	list, err := readList[summaryRecord](ctx, r.b, conversationsKey(owner))
	if err != nil {
		return nil, err
	}
	out := make([]model.ConversationSummary, 0, len(list))
	for _, e := range list {
		out = append(out, toSummary(e))
	}
	return out, nil
}
