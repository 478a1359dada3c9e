package blob

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/messenger/internal/errs"
)

// 1x1 transparent PNG
var png1x1 = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestFSStore_PutURLServe(t *testing.T) {
	r := require.New(t)
	s, err := NewFSStore(t.TempDir(), "http://localhost:8081/")
	r.NoError(err)
	ctx := context.Background()

	_, err = s.URL(ctx, "a-x-com_profile_picture.png")
	r.ErrorIs(err, errs.ErrNotFound)

	u, err := s.Put(ctx, "a-x-com_profile_picture.png", png1x1)
	r.NoError(err)
	r.Equal("http://localhost:8081/images/a-x-com_profile_picture.png", u)

	u2, err := s.URL(ctx, "a-x-com_profile_picture.png")
	r.NoError(err)
	r.Equal(u, u2)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/images/a-x-com_profile_picture.png", nil))
	r.Equal(200, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	r.Equal(png1x1, body)
}

func TestFSStore_Rejects(t *testing.T) {
	r := require.New(t)
	s, err := NewFSStore(t.TempDir(), "http://h")
	r.NoError(err)
	ctx := context.Background()

	_, err = s.Put(ctx, "note.png", []byte("plain text, not an image"))
	r.ErrorIs(err, errs.ErrInvalidArgument)
	_, err = s.Put(ctx, "../escape.png", png1x1)
	r.ErrorIs(err, errs.ErrInvalidArgument)
	_, err = s.Put(ctx, "", png1x1)
	r.ErrorIs(err, errs.ErrInvalidArgument)
	_, err = s.Put(ctx, "empty.png", nil)
	r.ErrorIs(err, errs.ErrInvalidArgument)
}
