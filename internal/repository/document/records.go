package document

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/and161185/messenger/internal/errs"
	"github.com/and161185/messenger/internal/model"
)

var validate = validator.New()

// userRecord is stored at <identityKey>.
type userRecord struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
}

// directoryRecord is one element of the "users" list.
type directoryRecord struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

type latestRecord struct {
	Date    time.Time `json:"date"`
	Message string    `json:"message"`
	IsRead  bool      `json:"is_read"`
}

// summaryRecord is one element of <identityKey>/conversations.
type summaryRecord struct {
	ID             string       `json:"id" validate:"required"`
	OtherUserEmail string       `json:"other_user_email" validate:"required"`
	Name           string       `json:"name"`
	LatestMessage  latestRecord `json:"latest_message"`
}

// messageRecord is one element of <conversationId>/messages.
type messageRecord struct {
	ID          string    `json:"id" validate:"required"`
	Type        string    `json:"type" validate:"required,oneof=text attributed_text photo video location emoji audio contact link_preview custom"`
	Content     string    `json:"content"`
	Date        time.Time `json:"date"`
	SenderEmail string    `json:"sender_email" validate:"required"`
	IsRead      bool      `json:"is_read"`
}

func malformed(key string, err error) error {
	return fmt.Errorf("%w: %s: %w", errs.ErrMalformedRecord, key, err)
}

// decodeOne decodes and validates a single record.
func decodeOne[T any](key string, raw []byte) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, malformed(key, err)
	}
	if err := validate.Struct(out); err != nil {
		return out, malformed(key, err)
	}
	return out, nil
}

// decodeList decodes a JSON array and validates every element.
// A missing document (nil raw) decodes to an empty list.
func decodeList[T any](key string, raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, malformed(key, err)
	}
	for i := range out {
		if err := validate.Struct(out[i]); err != nil {
			return nil, malformed(key, fmt.Errorf("element %d: %w", i, err))
		}
	}
	return out, nil
}

func toUser(key model.IdentityKey, r userRecord) model.User {
	return model.User{FirstName: r.FirstName, LastName: r.LastName, Email: r.Email, IdentityKey: key}
}

func fromUser(u model.User) userRecord {
	return userRecord{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

func toDirectoryEntry(r directoryRecord) model.DirectoryEntry {
	return model.DirectoryEntry{DisplayName: r.Name, IdentityKey: model.IdentityKey(r.Email)}
}

func toSummary(r summaryRecord) model.ConversationSummary {
	return model.ConversationSummary{
		ConversationID:  r.ID,
		PeerIdentityKey: model.IdentityKey(r.OtherUserEmail),
		PeerDisplayName: r.Name,
		Latest:          toLatest(r.LatestMessage),
	}
}

func fromSummary(s model.ConversationSummary) summaryRecord {
	return summaryRecord{
		ID:             s.ConversationID,
		OtherUserEmail: string(s.PeerIdentityKey),
		Name:           s.PeerDisplayName,
		LatestMessage:  fromLatest(s.Latest),
	}
}

func toLatest(r latestRecord) model.LatestMessage {
	return model.LatestMessage{Timestamp: r.Date, Text: r.Message, IsRead: r.IsRead}
}

func fromLatest(l model.LatestMessage) latestRecord {
	return latestRecord{Date: l.Timestamp.UTC(), Message: l.Text, IsRead: l.IsRead}
}

func toMessage(conversationID string, r messageRecord) model.Message {
	return model.Message{
		ID:                r.ID,
		ConversationID:    conversationID,
		SenderIdentityKey: model.IdentityKey(r.SenderEmail),
		Kind:              model.MessageKind(r.Type),
		Content:           r.Content,
		Timestamp:         r.Date,
		IsRead:            r.IsRead,
	}
}

func fromMessage(m model.Message) messageRecord {
	return messageRecord{
		ID:          m.ID,
		Type:        string(m.Kind),
		Content:     model.TextContent(m.Kind, m.Content),
		Date:        m.Timestamp.UTC(),
		SenderEmail: string(m.SenderIdentityKey),
		IsRead:      m.IsRead,
	}
}
