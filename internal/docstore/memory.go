package docstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/and161185/messenger/internal/errs"
)

// Memory is an in-process Store used for tests and the dev backend.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory { return &Memory{docs: map[string]Document{}} }

// Get returns a copy of the stored document.
func (m *Memory) Get(ctx context.Context, key string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[key]
	if !ok {
		return Document{}, errs.ErrNotFound
	}
	d.Value = append([]byte(nil), d.Value...)
	return d, nil
}

// Exists reports whether key is stored.
func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.docs[key]
	return ok, nil
}

// Put overwrites key unconditionally.
func (m *Memory) Put(ctx context.Context, key string, value []byte) (int64, error) {
	if err := ValidKey(key); err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrInvalidArgument, err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ver := m.docs[key].Ver + 1
	m.docs[key] = Document{Key: key, Value: append([]byte(nil), value...), Ver: ver}
	return ver, nil
}

// PutIfVersion writes key only when its version equals baseVer.
func (m *Memory) PutIfVersion(ctx context.Context, key string, value []byte, baseVer int64) (int64, error) {
	if err := ValidKey(key); err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrInvalidArgument, err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur := m.docs[key].Ver; cur != baseVer {
		return 0, errs.ErrVersionConflict
	}
	ver := baseVer + 1
	m.docs[key] = Document{Key: key, Value: append([]byte(nil), value...), Ver: ver}
	return ver, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
