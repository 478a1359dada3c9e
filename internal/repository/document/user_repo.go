package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/and161185/messenger/internal/errs"
	"github.com/and161185/messenger/internal/model"
)

// UserRepo implements repository.UserRepository.
type UserRepo struct{ b *Backend }

// NewUserRepo constructs UserRepo.
func NewUserRepo(b *Backend) *UserRepo { return &UserRepo{b: b} }

// Exists reports whether a decodable user record is stored under key.
// A malformed record counts as absent.
func (r *UserRepo) Exists(ctx context.Context, key model.IdentityKey) (bool, error) {
	_, err := r.Get(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errs.ErrUserNotFound), errors.Is(err, errs.ErrMalformedRecord):
		return false, nil
	default:
		return false, err
	}
}

// Get loads the user record at key.
func (r *UserRepo) Get(ctx context.Context, key model.IdentityKey) (*model.User, error) {
	k := userKey(key)
	raw, _, err := r.b.read(ctx, k)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrUserNotFound, key)
	}
	rec, err := decodeOne[userRecord](k, raw)
	if err != nil {
		return nil, err
	}
	u := toUser(key, rec)
	return &u, nil
}

// Register overwrites the user record and appends a directory entry unless one with the
// same identity key is already listed. The record write is not undone if the append fails.
func (r *UserRepo) Register(ctx context.Context, u model.User) error {
	k := userKey(u.IdentityKey)
	val, err := json.Marshal(fromUser(u))
	if err != nil {
		return writeFailed(k, err)
	}
	if _, err := r.b.store.Put(ctx, k, val); err != nil {
		return writeFailed(k, err)
	}

	entry := directoryRecord{Name: u.DisplayName(), Email: string(u.IdentityKey)}
	return mutateList(ctx, r.b, directoryKey, func(list []directoryRecord) ([]directoryRecord, bool, error) {
		for _, e := range list {
			if e.Email == entry.Email {
				return list, false, nil
			}
		}
		return append(list, entry), true, nil
	})
}

// ListDirectory returns every directory entry in registration order.
func (r *UserRepo) ListDirectory(ctx context.Context) ([]model.DirectoryEntry, error) {
	list, err := readList[directoryRecord](ctx, r.b, directoryKey)
	if err != nil {
		return nil, err
	}
	out := make([]model.DirectoryEntry, 0, len(list))
	for _, e := range list {
		out = append(out, toDirectoryEntry(e))
	}
	return out, nil
}
