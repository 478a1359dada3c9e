package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/messenger/internal/docstore"
	"github.com/and161185/messenger/internal/errs"
)

// Store implements docstore.Store using PostgreSQL.
type Store struct{ db *DB }

var _ docstore.Store = (*Store)(nil)

// NewStore constructs a document store over db.
func NewStore(db *DB) *Store { return &Store{db: db} }

// Get selects a document by key.
func (s *Store) Get(ctx context.Context, key string) (docstore.Document, error) {
	const q = `SELECT value, ver FROM documents WHERE key=$1`
	d := docstore.Document{Key: key}
	if err := s.db.Pool.QueryRow(ctx, q, key).Scan(&d.Value, &d.Ver); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return docstore.Document{}, errs.ErrNotFound
		}
		return docstore.Document{}, err
	}
	return d, nil
}

// Exists checks for a row with the given key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM documents WHERE key=$1)`
	var ok bool
	if err := s.db.Pool.QueryRow(ctx, q, key).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Put upserts the document and bumps its version.
func (s *Store) Put(ctx context.Context, key string, value []byte) (int64, error) {
	if err := docstore.ValidKey(key); err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrInvalidArgument, err)
	}
	const q = `
INSERT INTO documents (key, value, ver)
VALUES ($1, $2, 1)
ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, ver=documents.ver+1, updated_at=now()
RETURNING ver`
	var ver int64
	if err := s.db.Pool.QueryRow(ctx, q, key, value).Scan(&ver); err != nil {
		return 0, err
	}
	return ver, nil
}

// PutIfVersion writes the document under a row lock when its version matches baseVer.
func (s *Store) PutIfVersion(
	ctx context.Context, key string, value []byte, baseVer int64,
) (ver int64, err error) {
	if err := docstore.ValidKey(key); err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrInvalidArgument, err)
	}
	tx, err := s.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			if isUniqueViolation(e) {
				e = errs.ErrVersionConflict
			}
			err = e
		}
	}()

	const sel = `SELECT ver FROM documents WHERE key=$1 FOR UPDATE`
	const ins = `INSERT INTO documents (key, value, ver) VALUES ($1,$2,1)`
	const upd = `UPDATE documents SET value=$2, ver=$3, updated_at=now() WHERE key=$1`

	var curVer int64
	scanErr := tx.QueryRow(ctx, sel, key).Scan(&curVer)
	switch {
	case scanErr == nil:
		if curVer != baseVer {
			return 0, errs.ErrVersionConflict
		}
		newVer := curVer + 1
		if _, err = tx.Exec(ctx, upd, key, value, newVer); err != nil {
			return 0, err
		}
		return newVer, nil
	case errors.Is(scanErr, pgx.ErrNoRows):
		if baseVer != 0 {
			return 0, errs.ErrVersionConflict
		}
		if _, err = tx.Exec(ctx, ins, key, value); err != nil {
			if isUniqueViolation(err) {
				return 0, errs.ErrVersionConflict
			}
			return 0, err
		}
		return 1, nil
	default:
		return 0, scanErr
	}
}

// Close closes the pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}
