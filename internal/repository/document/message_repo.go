package document

import (
	"context"
	"fmt"

	"github.com/and161185/messenger/internal/errs"
	"github.com/and161185/messenger/internal/model"
)

// MessageRepo implements repository.MessageRepository.
type MessageRepo struct{ b *Backend }

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(b *Backend) *MessageRepo { return &MessageRepo{b: b} }

// AppendMessage adds m to the end of the conversation log and returns the message as stored.
// Resending an id with the same sender, kind and content is a no-op that returns the stored
// copy; the same id with anything else fails with errs.ErrDuplicateID.
func (r *MessageRepo) AppendMessage(ctx context.Context, conversationID string, m model.Message) (model.Message, error) {
	rec := fromMessage(m)
	want := toMessage(conversationID, rec)
	var stored model.Message
	err := mutateList(ctx, r.b, messagesKey(conversationID), func(list []messageRecord) ([]messageRecord, bool, error) {
		for _, e := range list {
			if e.ID != rec.ID {
				continue
			}
			prev := toMessage(conversationID, e)
			if !prev.SameAs(want) {
				return nil, false, fmt.Errorf("%w: message %s in %s", errs.ErrDuplicateID, rec.ID, conversationID)
			}
			stored = prev
			return list, false, nil
		}
		stored = want
		return append(list, rec), true, nil
	})
	if err != nil {
		return model.Message{}, err
	}
	return stored, nil
}

// ListMessages returns the log in append order; a missing log is empty.
func (r *MessageRepo) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	list, err := readList[messageRecord](ctx, r.b, messagesKey(conversationID))
	if err != nil {
		return nil, err
	}
	out := make([]model.Message, 0, len(list))
	for _, e := range list {
		out = append(out, toMessage(conversationID, e))
	}
	return out, nil
}
