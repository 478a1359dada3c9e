// Package docstore defines the hierarchical key -> JSON document store the repositories run on.
//
// The store offers point reads, unconditional single-key overwrites and an existence check.
// It has no multi-key transactions and no list primitives; callers that need to edit a
// collection stored under one key do so with PutIfVersion (compare-and-swap on a per-key
// version counter).
package docstore

import (
	"context"
	"fmt"
	"strings"
)

// Document is a stored value with its version. Ver is 0 for a document that does not exist.
type Document struct {
	Key   string
	Value []byte
	Ver   int64
}

// Store is implemented by every backend (memory, postgres, badger).
type Store interface {
	// Get returns the document at key or errs.ErrNotFound.
	Get(ctx context.Context, key string) (Document, error)
	// Exists reports whether a document is stored at key.
	Exists(ctx context.Context, key string) (bool, error)
	// Put overwrites the document at key regardless of its version and returns the new version.
	Put(ctx context.Context, key string, value []byte) (int64, error)
	// PutIfVersion writes value only if the current version equals baseVer
	// (0 means "must not exist") and returns the new version, or errs.ErrVersionConflict.
	PutIfVersion(ctx context.Context, key string, value []byte, baseVer int64) (int64, error)
	// Close releases backend resources.
	Close() error
}

// forbidden characters in any key segment.
const forbidden = ".#$[]"

// ValidKey checks key is a non-empty "/"-separated path with no empty segments
// and none of the characters . # $ [ ].
func ValidKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" {
			return fmt.Errorf("key %q: empty segment", key)
		}
		if strings.ContainsAny(seg, forbidden) {
			return fmt.Errorf("key %q: contains one of %q", key, forbidden)
		}
	}
	return nil
}

// Join builds a hierarchical key from segments.
func Join(segments ...string) string { return strings.Join(segments, "/") }
