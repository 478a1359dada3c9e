// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/messenger/internal/model"
)

// UserRepository stores user records and the searchable user directory.
type UserRepository interface {
	// Exists reports whether a user record is stored under key. Absence is not an error.
	Exists(ctx context.Context, key model.IdentityKey) (bool, error)
	// Get loads a user record by key.
	Get(ctx context.Context, key model.IdentityKey) (*model.User, error)
	// Register writes the user record, then appends it to the directory list.
	Register(ctx context.Context, u model.User) error
	// ListDirectory returns the whole directory in insertion order.
	ListDirectory(ctx context.Context) ([]model.DirectoryEntry, error)
}
