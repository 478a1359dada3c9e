// Package api declares the messenger.v1 gRPC service: wire types, the JSON codec,
// the service descriptor and a typed client.
package api

import "time"

type SignInRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type SignInResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	IdentityKey string    `json:"identity_key"`
	DisplayName string    `json:"display_name"`
}

type SearchUsersRequest struct {
	Query string `json:"query"`
}

type User struct {
	Name        string `json:"name"`
	IdentityKey string `json:"identity_key"`
}

type SearchUsersResponse struct {
	Users []User `json:"users"`
}

type LatestMessage struct {
	Date   time.Time `json:"date"`
	Text   string    `json:"text"`
	IsRead bool      `json:"is_read"`
}

type Conversation struct {
	ID              string        `json:"id"`
	PeerIdentityKey string        `json:"peer_identity_key"`
	PeerName        string        `json:"peer_name"`
	Latest          LatestMessage `json:"latest_message"`
}

type ListConversationsRequest struct{}

type ListConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
}

// Message is a chat message. ID and Date are filled by the server when empty.
type Message struct {
	ID      string    `json:"id,omitempty"`
	Kind    string    `json:"kind" validate:"required"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
	Sender  string    `json:"sender,omitempty"`
	IsRead  bool      `json:"is_read"`
}

type CreateConversationRequest struct {
	PeerEmail string  `json:"peer_email" validate:"required"`
	PeerName  string  `json:"peer_name"`
	First     Message `json:"first_message"`
}

type CreateConversationResponse struct {
	ConversationID string `json:"conversation_id"`
}

type SendMessageRequest struct {
	ConversationID string  `json:"conversation_id" validate:"required"`
	PeerEmail      string  `json:"peer_email" validate:"required"`
	PeerName       string  `json:"peer_name"`
	Message        Message `json:"message"`
}

type SendMessageResponse struct {
	MessageID string `json:"message_id"`
}

type ListMessagesRequest struct {
	ConversationID string `json:"conversation_id" validate:"required"`
}

type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
}

type UploadProfilePictureRequest struct {
	Data []byte `json:"data" validate:"required"`
}

type UploadProfilePictureResponse struct {
	URL string `json:"url"`
}

// ProfilePictureURLRequest asks for a user's picture; an empty email means the caller.
type ProfilePictureURLRequest struct {
	Email string `json:"email,omitempty"`
}

type ProfilePictureURLResponse struct {
	URL string `json:"url"`
}
