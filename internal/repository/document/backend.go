// Package document implements the repository interfaces on a docstore.Store.
//
// Every collection (user directory, a user's conversation list, a conversation's message
// log) lives as one JSON array under one key. Edits are read-modify-write cycles committed
// with PutIfVersion and retried on version conflicts; writers in the same process are
// additionally queued per key.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/messenger/internal/docstore"
	"github.com/and161185/messenger/internal/errs"
	"github.com/and161185/messenger/internal/model"
)

// DefaultAttempts bounds compare-and-swap retries per edit.
const DefaultAttempts = 8

// directoryKey holds the flat list of registered users.
const directoryKey = "users"

func userKey(k model.IdentityKey) string              { return string(k) }
func conversationsKey(owner model.IdentityKey) string { return docstore.Join(string(owner), "conversations") }
func messagesKey(conversationID string) string        { return docstore.Join(conversationID, "messages") }

// Backend bundles the document store with the per-key write queue shared by all repositories.
type Backend struct {
	store    docstore.Store
	locks    *docstore.KeyLock
	attempts int
	log      *zap.Logger
}

// NewBackend constructs a Backend. attempts <= 0 selects DefaultAttempts.
func NewBackend(store docstore.Store, attempts int, log *zap.Logger) *Backend {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Backend{store: store, locks: docstore.NewKeyLock(), attempts: attempts, log: log}
}

func readFailed(key string, err error) error {
	return fmt.Errorf("%w: %s: %w", errs.ErrStoreRead, key, err)
}

func writeFailed(key string, err error) error {
	return fmt.Errorf("%w: %s: %w", errs.ErrStoreWrite, key, err)
}

// read returns the raw value at key, or nil if absent.
func (b *Backend) read(ctx context.Context, key string) ([]byte, int64, error) {
	doc, err := b.store.Get(ctx, key)
	switch {
	case err == nil:
		return doc.Value, doc.Ver, nil
	case errors.Is(err, errs.ErrNotFound):
		return nil, 0, nil
	default:
		return nil, 0, readFailed(key, err)
	}
}

// mutateList runs a read-modify-write of the JSON list stored at key.
// edit returns the new list and whether anything changed; an error from edit aborts without writing.
func mutateList[T any](ctx context.Context, b *Backend, key string, edit func([]T) ([]T, bool, error)) error {
	unlock := b.locks.Lock(key)
	defer unlock()

	for attempt := 1; attempt <= b.attempts; attempt++ {
		raw, ver, err := b.read(ctx, key)
		if err != nil {
			return err
		}
		cur, err := decodeList[T](key, raw)
		if err != nil {
			return err
		}
		next, changed, err := edit(cur)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		if next == nil {
			next = []T{}
		}
		val, err := json.Marshal(next)
		if err != nil {
			return writeFailed(key, err)
		}
		_, err = b.store.PutIfVersion(ctx, key, val, ver)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errs.ErrVersionConflict) {
			return writeFailed(key, err)
		}
		b.log.Debug("document version conflict, retrying",
			zap.String("key", key), zap.Int64("base_ver", ver), zap.Int("attempt", attempt))
	}
	return writeFailed(key, fmt.Errorf("%w after %d attempts", errs.ErrVersionConflict, b.attempts))
}

// readList loads and decodes the list at key; a missing document is an empty list.
func readList[T any](ctx context.Context, b *Backend, key string) ([]T, error) {
	raw, _, err := b.read(ctx, key)
	if err != nil {
		return nil, err
	}
	return decodeList[T](key, raw)
}
