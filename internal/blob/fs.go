// Package blob stores uploaded media and hands out stable download URLs.
package blob

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/and161185/messenger/internal/errs"
)

// Store is the media collaborator used for profile pictures.
type Store interface {
	// Put stores data under name and returns its download URL.
	Put(ctx context.Context, name string, data []byte) (string, error)
	// URL returns the download URL of an already stored blob or errs.ErrNotFound.
	URL(ctx context.Context, name string) (string, error)
}

const imagesDir = "images"

// MaxImageSize bounds a single upload.
const MaxImageSize = 8 << 20

// FSStore keeps images as files under <root>/images and serves them at <baseURL>/images/<name>.
type FSStore struct {
	dir     string
	baseURL string
}

// NewFSStore creates the images directory under root if needed.
func NewFSStore(root, baseURL string) (*FSStore, error) {
	dir := filepath.Join(root, imagesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob dir: %w", err)
	}
	return &FSStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: blob name %q", errs.ErrInvalidArgument, name)
	}
	return nil
}

// Put accepts image payloads only; the type is sniffed from content, not from name.
func (s *FSStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if len(data) == 0 || len(data) > MaxImageSize {
		return "", fmt.Errorf("%w: image size %d", errs.ErrInvalidArgument, len(data))
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: %s is not an image", errs.ErrInvalidArgument, mt.String())
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("%w: %w", errs.ErrStoreWrite, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("%w: %w", errs.ErrStoreWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", errs.ErrStoreWrite, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("%w: %w", errs.ErrStoreWrite, err)
	}
	return s.urlFor(name), nil
}

// URL reports the download URL of name.
func (s *FSStore) URL(ctx context.Context, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := os.Stat(filepath.Join(s.dir, name)); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", errs.ErrNotFound, name)
		}
		return "", fmt.Errorf("%w: %w", errs.ErrStoreRead, err)
	}
	return s.urlFor(name), nil
}

func (s *FSStore) urlFor(name string) string {
	return s.baseURL + "/" + imagesDir + "/" + url.PathEscape(name)
}

// Handler serves stored images under /images/.
func (s *FSStore) Handler() http.Handler {
	return http.StripPrefix("/"+imagesDir+"/", http.FileServer(http.Dir(s.dir)))
}
