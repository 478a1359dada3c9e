// Package directory implements client-side user search over the flat user directory.
package directory

import (
	"context"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/and161185/messenger/internal/model"
)

// Filter keeps the entries whose display name starts with prefix, ignoring case.
// Directory order is preserved. An empty prefix matches everything.
func Filter(entries []model.DirectoryEntry, prefix string) []model.DirectoryEntry {
	p := strings.ToLower(prefix)
	return lo.Filter(entries, func(e model.DirectoryEntry, _ int) bool {
		return strings.HasPrefix(strings.ToLower(e.DisplayName), p)
	})
}

// Lister fetches the whole directory.
type Lister interface {
	ListAll(ctx context.Context) ([]model.DirectoryEntry, error)
}

// Searcher fetches the directory once and answers later searches from the cached copy.
// A failed fetch is not cached.
type Searcher struct {
	src Lister

	mu      sync.Mutex
	fetched bool
	entries []model.DirectoryEntry
}

// NewSearcher constructs a Searcher over src.
func NewSearcher(src Lister) *Searcher { return &Searcher{src: src} }

// Search returns entries matching prefix, fetching the directory on first use.
func (s *Searcher) Search(ctx context.Context, prefix string) ([]model.DirectoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fetched {
		all, err := s.src.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		s.entries = all
		s.fetched = true
	}
	return Filter(s.entries, prefix), nil
}

// Reset drops the cached directory so the next Search fetches again.
func (s *Searcher) Reset() {
	s.mu.Lock()
	s.fetched = false
	s.entries = nil
	s.mu.Unlock()
}
