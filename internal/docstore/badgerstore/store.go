// Package badgerstore implements docstore.Store on an embedded BadgerDB.
//
// Each value is stored as an 8-byte big-endian version followed by the raw JSON document,
// so compare-and-swap can be checked inside a single read-write transaction.
package badgerstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/and161185/messenger/internal/docstore"
	"github.com/and161185/messenger/internal/errs"
)

const verLen = 8

// Store is a docstore.Store backed by BadgerDB.
type Store struct {
	db *badger.DB
}

var _ docstore.Store = (*Store)(nil)

// Open opens (or creates) a Badger database at path.
func Open(path string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("open badger %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

// New wraps an already opened database.
func New(db *badger.DB) *Store { return &Store{db: db} }

// Get reads the document at key.
func (s *Store) Get(ctx context.Context, key string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Document{}, err
	}
	var d docstore.Document
	err := s.db.View(func(txn *badger.Txn) error {
		raw, err := get(txn, key)
		if err != nil {
			return err
		}
		d = decode(key, raw)
		return nil
	})
	if err != nil {
		return docstore.Document{}, err
	}
	return d, nil
}

// Exists reports whether key is stored.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Put overwrites key and bumps its version.
func (s *Store) Put(ctx context.Context, key string, value []byte) (int64, error) {
	return s.write(ctx, key, value, func(int64) error { return nil })
}

// PutIfVersion writes key only if its stored version equals baseVer.
func (s *Store) PutIfVersion(ctx context.Context, key string, value []byte, baseVer int64) (int64, error) {
	return s.write(ctx, key, value, func(cur int64) error {
		if cur != baseVer {
			return errs.ErrVersionConflict
		}
		return nil
	})
}

func (s *Store) write(ctx context.Context, key string, value []byte, check func(cur int64) error) (int64, error) {
	if err := docstore.ValidKey(key); err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrInvalidArgument, err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var newVer int64
	err := s.db.Update(func(txn *badger.Txn) error {
		var cur int64
		raw, err := get(txn, key)
		switch {
		case err == nil:
			cur = decode(key, raw).Ver
		case errors.Is(err, errs.ErrNotFound):
		default:
			return err
		}
		if err := check(cur); err != nil {
			return err
		}
		newVer = cur + 1
		return txn.Set([]byte(key), encode(newVer, value))
	})
	if errors.Is(err, badger.ErrConflict) {
		return 0, errs.ErrVersionConflict
	}
	if err != nil {
		return 0, err
	}
	return newVer, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func get(txn *badger.Txn, key string) ([]byte, error) {
	item, err := txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	if len(raw) < verLen {
		return nil, fmt.Errorf("%w: key %q: short value", errs.ErrMalformedRecord, key)
	}
	return raw, nil
}

func encode(ver int64, value []byte) []byte {
	out := make([]byte, verLen+len(value))
	binary.BigEndian.PutUint64(out, uint64(ver))
	copy(out[verLen:], value)
	return out
}

func decode(key string, raw []byte) docstore.Document {
	return docstore.Document{
		Key:   key,
		Ver:   int64(binary.BigEndian.Uint64(raw[:verLen])),
		Value: raw[verLen:],
	}
}
