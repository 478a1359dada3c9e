// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across store/repo/service layers.
var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict indicates optimistic concurrency failure (base version mismatch).
	ErrVersionConflict = errors.New("version conflict")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStoreRead indicates a failed point read against the document store.
	ErrStoreRead = errors.New("store read failed")

	// ErrStoreWrite indicates a failed write against the document store.
	ErrStoreWrite = errors.New("store write failed")

	// ErrConversationNotFound indicates the owner's list has no entry for the conversation id.
	// For sends this means the two participant copies have diverged.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrUserNotFound indicates no user record exists for the identity key.
	ErrUserNotFound = errors.New("user not found")

	// ErrMalformedRecord indicates a stored value failed to decode into the expected shape.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrPartialWrite indicates a multi-step operation stopped after some writes landed.
	ErrPartialWrite = errors.New("partial write")

	// ErrDuplicateID indicates an id already names a different conversation entry or message.
	ErrDuplicateID = errors.New("id already used")

	// ErrInvalidArgument indicates caller input failed validation.
	ErrInvalidArgument = errors.New("invalid argument")
)
