package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/and161185/messenger/internal/errs"
	"github.com/and161185/messenger/internal/identity"
	"github.com/and161185/messenger/internal/metrics"
	"github.com/and161185/messenger/internal/model"
	"github.com/and161185/messenger/internal/repository"
)

// ConversationIDPrefix is prepended to the first message id to form a conversation id.
const ConversationIDPrefix = "conversation_"

// MessagingService orchestrates writes that span the per-user conversation lists and the message logs.
type MessagingService interface {
	// CreateConversation registers a new conversation in both participants' lists
	// and stores first as its first message. Returns the conversation id.
	CreateConversation(ctx context.Context, current model.CurrentUser, otherEmail, peerDisplayName string, first model.Message) (string, error)
	// SendMessage appends msg to the log and refreshes the latest-message preview of both participants.
	SendMessage(ctx context.Context, conversationID string, current model.CurrentUser, otherEmail, peerDisplayName string, msg model.Message) error
	// Conversations lists the caller's conversation summaries.
	Conversations(ctx context.Context, current model.CurrentUser) ([]model.ConversationSummary, error)
	// Messages lists a conversation the caller takes part in.
	Messages(ctx context.Context, current model.CurrentUser, conversationID string) ([]model.Message, error)
}

type MessagingServiceImpl struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	log           *zap.Logger
	metrics       *metrics.Messaging
	now           func() time.Time
}

// NewMessagingService constructs MessagingService. m may be nil.
func NewMessagingService(conversations repository.ConversationRepository, messages repository.MessageRepository, log *zap.Logger, m *metrics.Messaging) *MessagingServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessagingServiceImpl{conversations: conversations, messages: messages, log: log, metrics: m, now: time.Now}
}

// prepare fills server-side message fields and validates the rest.
func (s *MessagingServiceImpl) prepare(current model.CurrentUser, msg model.Message) (model.Message, error) {
	if current.IdentityKey == "" {
		return msg, fmt.Errorf("%w: empty current user", errs.ErrInvalidArgument)
	}
	if msg.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return msg, err
		}
		msg.ID = id.String()
	}
	if err := validate.Var(msg.ID, "excludesall=.#$[]/"); err != nil {
		return msg, fmt.Errorf("%w: message id %q", errs.ErrInvalidArgument, msg.ID)
	}
	if !msg.Kind.Valid() {
		return msg, fmt.Errorf("%w: message kind %q", errs.ErrInvalidArgument, msg.Kind)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	msg.Timestamp = msg.Timestamp.UTC()
	msg.SenderIdentityKey = current.IdentityKey
	msg.Content = model.TextContent(msg.Kind, msg.Content)
	return msg, nil
}

func peerKey(otherEmail string) (model.IdentityKey, error) {
	if otherEmail == "" {
		return "", fmt.Errorf("%w: empty peer", errs.ErrInvalidArgument)
	}
	return identity.Normalize(otherEmail), nil
}

// CreateConversation writes, in order: the caller's summary, the peer's mirrored summary and the
// first message. Every step is idempotent on the conversation and message ids, so a failed call
// can be retried with the same message to converge. An id already bound to another pair of
// participants or another first message is refused before anything is written.
func (s *MessagingServiceImpl) CreateConversation(ctx context.Context, current model.CurrentUser, otherEmail, peerDisplayName string, first model.Message) (id string, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("create_conversation", start, err) }()

	other, err := peerKey(otherEmail)
	if err != nil {
		return "", err
	}
	first, err = s.prepare(current, first)
	if err != nil {
		return "", err
	}
	id = ConversationIDPrefix + first.ID
	first.ConversationID = id

	if first, err = s.checkUnclaimed(ctx, current.IdentityKey, other, first); err != nil {
		return "", fmt.Errorf("create conversation %s: %w", id, err)
	}
	latest := first.Latest()

	mine := model.ConversationSummary{ConversationID: id, PeerIdentityKey: other, PeerDisplayName: peerDisplayName, Latest: latest}
	theirs := model.ConversationSummary{ConversationID: id, PeerIdentityKey: current.IdentityKey, PeerDisplayName: current.DisplayName, Latest: latest}

	if err := s.conversations.AppendSummary(ctx, current.IdentityKey, mine); err != nil {
		return "", fmt.Errorf("create conversation %s: own summary: %w", id, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.conversations.AppendSummary(ctx, other, theirs); err != nil {
		return "", fmt.Errorf("create conversation %s: peer summary: %w", id, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := s.messages.AppendMessage(ctx, id, first); err != nil {
		return "", fmt.Errorf("create conversation %s: first message: %w", id, err)
	}

	s.log.Debug("conversation created",
		zap.String("conversation_id", id),
		zap.String("owner", current.IdentityKey.String()),
		zap.String("peer", other.String()))
	return id, nil
}

// checkUnclaimed reads the log and the peer's list of first.ConversationID and fails with
// errs.ErrDuplicateID if either belongs to a different conversation. On a retry the returned
// message carries the timestamp it was first stored with.
func (s *MessagingServiceImpl) checkUnclaimed(ctx context.Context, owner, other model.IdentityKey, first model.Message) (model.Message, error) {
	id := first.ConversationID
	existing, err := s.messages.ListMessages(ctx, id)
	if err != nil {
		return first, err
	}
	if len(existing) > 0 {
		if existing[0].ID != first.ID || !existing[0].SameAs(first) {
			return first, fmt.Errorf("%w: first message of %s", errs.ErrDuplicateID, id)
		}
		first.Timestamp = existing[0].Timestamp
	}

	theirs, err := s.conversations.ListSummaries(ctx, other)
	if err != nil {
		return first, err
	}
	if c, ok := findSummary(theirs, id); ok && c.PeerIdentityKey != owner {
		return first, fmt.Errorf("%w: %s already lists %s with %s", errs.ErrDuplicateID, other, id, c.PeerIdentityKey)
	}
	return first, nil
}

func findSummary(list []model.ConversationSummary, id string) (model.ConversationSummary, bool) {
	return lo.Find(list, func(c model.ConversationSummary) bool { return c.ConversationID == id })
}

// SendMessage appends msg, then updates the caller's preview, then the peer's.
// Both participants must already list conversationID with each other; otherwise
// errs.ErrConversationNotFound is returned before anything is written. Summaries are never recreated.
func (s *MessagingServiceImpl) SendMessage(ctx context.Context, conversationID string, current model.CurrentUser, otherEmail, peerDisplayName string, msg model.Message) (err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("send_message", start, err) }()

	if conversationID == "" {
		return fmt.Errorf("%w: empty conversation id", errs.ErrInvalidArgument)
	}
	other, err := peerKey(otherEmail)
	if err != nil {
		return err
	}
	msg, err = s.prepare(current, msg)
	if err != nil {
		return err
	}
	msg.ConversationID = conversationID

	mine, err := s.conversations.ListSummaries(ctx, current.IdentityKey)
	if err != nil {
		return fmt.Errorf("send %s: %w", conversationID, err)
	}
	own, ok := findSummary(mine, conversationID)
	if !ok {
		return fmt.Errorf("send: %w: %s not in list of %s", errs.ErrConversationNotFound, conversationID, current.IdentityKey)
	}
	if own.PeerIdentityKey != other {
		return fmt.Errorf("send: %w: %s is not with %s", errs.ErrConversationNotFound, conversationID, other)
	}
	theirs, err := s.conversations.ListSummaries(ctx, other)
	if err != nil {
		return fmt.Errorf("send %s: %w", conversationID, err)
	}
	if peer, ok := findSummary(theirs, conversationID); !ok || peer.PeerIdentityKey != current.IdentityKey {
		return fmt.Errorf("send: %w: %s does not list %s with %s", errs.ErrConversationNotFound, other, conversationID, current.IdentityKey)
	}

	stored, err := s.messages.AppendMessage(ctx, conversationID, msg)
	if err != nil {
		return fmt.Errorf("send %s: append message: %w", conversationID, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	latest := stored.Latest()
	if err := s.conversations.UpdateLatestMessage(ctx, current.IdentityKey, conversationID, latest); err != nil {
		return fmt.Errorf("send %s: own preview: %w", conversationID, err)
	}
	if err := s.conversations.UpdateLatestMessage(ctx, other, conversationID, latest); err != nil {
		s.metrics.Divergence("send_message")
		s.log.Warn("conversation previews diverged",
			zap.String("conversation_id", conversationID),
			zap.String("updated", current.IdentityKey.String()),
			zap.String("stale", other.String()),
			zap.String("peer_name", peerDisplayName),
			zap.Error(err))
		return fmt.Errorf("send %s: peer preview: %w", conversationID, errors.Join(errs.ErrPartialWrite, err))
	}
	return nil
}

// Conversations lists the caller's summaries in insertion order.
func (s *MessagingServiceImpl) Conversations(ctx context.Context, current model.CurrentUser) (list []model.ConversationSummary, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("list_conversations", start, err) }()
	if current.IdentityKey == "" {
		return nil, fmt.Errorf("%w: empty current user", errs.ErrInvalidArgument)
	}
	return s.conversations.ListSummaries(ctx, current.IdentityKey)
}

// Messages returns the log of conversationID after checking it is in the caller's list
// and that the first message came from the caller or the listed peer.
func (s *MessagingServiceImpl) Messages(ctx context.Context, current model.CurrentUser, conversationID string) (list []model.Message, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("list_messages", start, err) }()

	if current.IdentityKey == "" {
		return nil, fmt.Errorf("%w: empty current user", errs.ErrInvalidArgument)
	}
	summaries, err := s.conversations.ListSummaries(ctx, current.IdentityKey)
	if err != nil {
		return nil, err
	}
	own, ok := findSummary(summaries, conversationID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrConversationNotFound, conversationID)
	}
	list, err = s.messages.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		if opener := list[0].SenderIdentityKey; opener != current.IdentityKey && opener != own.PeerIdentityKey {
			return nil, fmt.Errorf("%w: %s is not between %s and %s", errs.ErrConversationNotFound, conversationID, current.IdentityKey, own.PeerIdentityKey)
		}
	}
	return list, nil
}
