package document

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/and161185/messenger/internal/docstore"
	"github.com/and161185/messenger/internal/errs"
)

// faultyStore wraps a Memory store and injects failures.
type faultyStore struct {
	*docstore.Memory
	getErr       error
	putErr       error
	conflicts    int // PutIfVersion calls to fail with a version conflict before passing through
	casCalls     int
	failCASOnKey string
}

func (f *faultyStore) Get(ctx context.Context, key string) (docstore.Document, error) {
	if f.getErr != nil {
		return docstore.Document{}, f.getErr
	}
	return f.Memory.Get(ctx, key)
}

func (f *faultyStore) Put(ctx context.Context, key string, value []byte) (int64, error) {
	if f.putErr != nil {
		return 0, f.putErr
	}
	return f.Memory.Put(ctx, key, value)
}

func (f *faultyStore) PutIfVersion(ctx context.Context, key string, value []byte, baseVer int64) (int64, error) {
	f.casCalls++
	if f.failCASOnKey != "" && key == f.failCASOnKey {
		return 0, errors.New("disk full")
	}
	if f.conflicts > 0 {
		f.conflicts--
		return 0, errs.ErrVersionConflict
	}
	return f.Memory.PutIfVersion(ctx, key, value, baseVer)
}

func newBackend(t *testing.T) (*Backend, *docstore.Memory) {
	t.Helper()
	mem := docstore.NewMemory()
	return NewBackend(mem, 0, zaptest.NewLogger(t)), mem
}

func newFaultyBackend(t *testing.T, attempts int) (*Backend, *faultyStore) {
	t.Helper()
	fs := &faultyStore{Memory: docstore.NewMemory()}
	return NewBackend(fs, attempts, zaptest.NewLogger(t)), fs
}
