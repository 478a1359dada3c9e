// Package model defines domain entities used by services and repositories.
package model

import "time"

// IdentityKey is the storage-safe form of a user's email.
type IdentityKey string

// String returns the key as a plain string.
func (k IdentityKey) String() string { return string(k) }

// User is a registered account. Immutable after registration.
type User struct {
	FirstName   string
	LastName    string
	Email       string // raw email as supplied by the identity provider
	IdentityKey IdentityKey
}

// DisplayName joins first and last name the way the directory indexes it.
func (u User) DisplayName() string { return u.FirstName + " " + u.LastName }

// DirectoryEntry is one row of the searchable user list. Not a source of truth for identity.
type DirectoryEntry struct {
	DisplayName string
	IdentityKey IdentityKey
}

// CurrentUser is the acting user taken from the session.
type CurrentUser struct {
	IdentityKey IdentityKey
	DisplayName string
}

// LatestMessage is the denormalized tail of a conversation cached in each summary.
type LatestMessage struct {
	Timestamp time.Time
	Text      string
	IsRead    bool
}

// ConversationSummary is a per-owner preview of a conversation.
// Peer fields refer to the other participant from the owner's point of view.
type ConversationSummary struct {
	ConversationID  string
	PeerIdentityKey IdentityKey
	PeerDisplayName string
	Latest          LatestMessage
}

// Message is a single append-only entry of a conversation log.
type Message struct {
	ID                string
	ConversationID    string
	SenderIdentityKey IdentityKey
	Kind              MessageKind
	Content           string
	Timestamp         time.Time
	IsRead            bool // reserved, not flipped by any flow
}

// Latest builds the summary snapshot for m.
func (m Message) Latest() LatestMessage {
	return LatestMessage{Timestamp: m.Timestamp, Text: m.Content, IsRead: m.IsRead}
}

// SameAs reports whether o carries the same sender, kind and content as m.
// Timestamps are not compared: a resent message keeps the time it was first stored with.
func (m Message) SameAs(o Message) bool {
	return m.SenderIdentityKey == o.SenderIdentityKey && m.Kind == o.Kind && m.Content == o.Content
}

// Tokens is an issued session.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}
