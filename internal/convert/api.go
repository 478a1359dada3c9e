// Package convert maps domain models to and from the messenger.v1 wire types.
package convert

import (
	"github.com/samber/lo"

	"github.com/and161185/messenger/internal/api"
	"github.com/and161185/messenger/internal/model"
)

// --- Directory ---

// ToAPIUsers converts directory entries for SearchUsers.
func ToAPIUsers(in []model.DirectoryEntry) []api.User {
	return lo.Map(in, func(e model.DirectoryEntry, _ int) api.User {
		return api.User{Name: e.DisplayName, IdentityKey: e.IdentityKey.String()}
	})
}

// FromAPIUsers converts SearchUsers results back into directory entries.
func FromAPIUsers(in []api.User) []model.DirectoryEntry {
	return lo.Map(in, func(u api.User, _ int) model.DirectoryEntry {
		return model.DirectoryEntry{DisplayName: u.Name, IdentityKey: model.IdentityKey(u.IdentityKey)}
	})
}

// --- Conversations ---

// ToAPIConversation converts one summary.
func ToAPIConversation(s model.ConversationSummary) api.Conversation {
	return api.Conversation{
		ID:              s.ConversationID,
		PeerIdentityKey: s.PeerIdentityKey.String(),
		PeerName:        s.PeerDisplayName,
		Latest: api.LatestMessage{
			Date:   s.Latest.Timestamp,
			Text:   s.Latest.Text,
			IsRead: s.Latest.IsRead,
		},
	}
}

// ToAPIConversations converts a summary list preserving order.
func ToAPIConversations(in []model.ConversationSummary) []api.Conversation {
	return lo.Map(in, func(s model.ConversationSummary, _ int) api.Conversation { return ToAPIConversation(s) })
}

// --- Messages ---

// ToAPIMessage converts a stored message.
func ToAPIMessage(m model.Message) api.Message {
	return api.Message{
		ID:      m.ID,
		Kind:    string(m.Kind),
		Content: m.Content,
		Date:    m.Timestamp,
		Sender:  m.SenderIdentityKey.String(),
		IsRead:  m.IsRead,
	}
}

// ToAPIMessages converts a log preserving order.
func ToAPIMessages(in []model.Message) []api.Message {
	return lo.Map(in, func(m model.Message, _ int) api.Message { return ToAPIMessage(m) })
}

// FromAPIMessage converts an outgoing message. Sender and read state are set by the server.
func FromAPIMessage(in api.Message) model.Message {
	return model.Message{
		ID:        in.ID,
		Kind:      model.MessageKind(in.Kind),
		Content:   in.Content,
		Timestamp: in.Date,
	}
}
