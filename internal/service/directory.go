package service

import (
	"context"
	"fmt"

	"github.com/and161185/messenger/internal/directory"
	"github.com/and161185/messenger/internal/errs"
	"github.com/and161185/messenger/internal/identity"
	"github.com/and161185/messenger/internal/model"
	"github.com/and161185/messenger/internal/repository"
)

// DirectoryService exposes the user records and the searchable directory.
type DirectoryService interface {
	// Exists reports whether a user is registered under the normalized form of email.
	Exists(ctx context.Context, email string) (bool, error)
	// Register stores u and lists it in the directory.
	Register(ctx context.Context, u model.User) error
	// Get loads the user registered under email.
	Get(ctx context.Context, email string) (*model.User, error)
	// ListAll returns the whole directory.
	ListAll(ctx context.Context) ([]model.DirectoryEntry, error)
	// Search filters the directory by display-name prefix.
	Search(ctx context.Context, prefix string) ([]model.DirectoryEntry, error)
}

type DirectoryServiceImpl struct {
	users repository.UserRepository
}

// NewDirectoryService constructs DirectoryService.
func NewDirectoryService(users repository.UserRepository) *DirectoryServiceImpl {
	return &DirectoryServiceImpl{users: users}
}

// Exists reports whether email is registered. Absence is not an error.
func (s *DirectoryServiceImpl) Exists(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, fmt.Errorf("%w: empty email", errs.ErrInvalidArgument)
	}
	return s.users.Exists(ctx, identity.Normalize(email))
}

// Register derives the identity key from u.Email when unset and stores the user.
func (s *DirectoryServiceImpl) Register(ctx context.Context, u model.User) error {
	if u.IdentityKey == "" {
		u.IdentityKey = identity.Normalize(u.Email)
	}
	if u.IdentityKey == "" || u.FirstName == "" {
		return fmt.Errorf("%w: user needs email and first name", errs.ErrInvalidArgument)
	}
	return s.users.Register(ctx, u)
}

// Get loads the user registered under email.
func (s *DirectoryServiceImpl) Get(ctx context.Context, email string) (*model.User, error) {
	return s.users.Get(ctx, identity.Normalize(email))
}

// ListAll returns the directory in registration order.
func (s *DirectoryServiceImpl) ListAll(ctx context.Context) ([]model.DirectoryEntry, error) {
	return s.users.ListDirectory(ctx)
}

// Search returns the directory entries whose display name starts with prefix.
func (s *DirectoryServiceImpl) Search(ctx context.Context, prefix string) ([]model.DirectoryEntry, error) {
	all, err := s.users.ListDirectory(ctx)
	if err != nil {
		return nil, err
	}
	return directory.Filter(all, prefix), nil
}
