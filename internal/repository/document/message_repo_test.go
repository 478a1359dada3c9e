package document

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/messenger/internal/errs"
	"github.com/and161185/messenger/internal/model"
)

func TestMessageRepo_AppendInOrder(t *testing.T) {
	b, _ := newBackend(t)
	r := NewMessageRepo(b)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	const conv = "conversation_m0"

	const n = 10
	for i := 0; i < n; i++ {
		m := model.Message{
			ID:                fmt.Sprintf("m%d", i),
			SenderIdentityKey: "a-x-com",
			Kind:              model.KindText,
			Content:           fmt.Sprintf("msg %d", i),
			Timestamp:         t0.Add(time.Duration(i) * time.Second),
		}
		_, err := r.AppendMessage(ctx, conv, m)
		require.NoError(t, err)
	}

	got, err := r.ListMessages(ctx, conv)
	require.NoError(t, err)
	require.Len(t, got, n)
	for i, m := range got {
		require.Equal(t, fmt.Sprintf("m%d", i), m.ID)
		require.Equal(t, conv, m.ConversationID)
		require.Equal(t, fmt.Sprintf("msg %d", i), m.Content)
		require.True(t, t0.Add(time.Duration(i)*time.Second).Equal(m.Timestamp))
	}
}

func TestMessageRepo_IdempotentAndNonTextKinds(t *testing.T) {
	b, _ := newBackend(t)
	r := NewMessageRepo(b)
	ctx := context.Background()
	const conv = "conversation_m1"

	photo := model.Message{ID: "p1", SenderIdentityKey: "a-x-com", Kind: model.KindPhoto, Content: "blob://x", Timestamp: time.Now()}
	_, err := r.AppendMessage(ctx, conv, photo)
	require.NoError(t, err)
	again := photo
	again.Timestamp = photo.Timestamp.Add(time.Hour)
	stored, err := r.AppendMessage(ctx, conv, again)
	require.NoError(t, err)
	require.True(t, photo.Timestamp.Equal(stored.Timestamp))

	got, err := r.ListMessages(ctx, conv)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, model.KindPhoto, got[0].Kind)
	require.Empty(t, got[0].Content)
	require.False(t, got[0].IsRead)
}

func TestMessageRepo_MissingAndMalformed(t *testing.T) {
	b, mem := newBackend(t)
	r := NewMessageRepo(b)
	ctx := context.Background()

	got, err := r.ListMessages(ctx, "conversation_none")
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = mem.Put(ctx, "conversation_bad/messages",
		[]byte(`[{"id":"1","type":"hologram","content":"","date":"2024-05-01T10:00:00Z","sender_email":"a-x-com"}]`))
	require.NoError(t, err)
	_, err = r.ListMessages(ctx, "conversation_bad")
	require.ErrorIs(t, err, errs.ErrMalformedRecord)
}

func TestMessageRepo_ReusedIDWithOtherPayload(t *testing.T) {
	b, mem := newBackend(t)
	r := NewMessageRepo(b)
	ctx := context.Background()
	const conv = "conversation_m1"
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	first := model.Message{ID: "m1", SenderIdentityKey: "a-x-com", Kind: model.KindText, Content: "hello", Timestamp: t0}
	_, err := r.AppendMessage(ctx, conv, first)
	require.NoError(t, err)
	before, err := mem.Get(ctx, messagesKey(conv))
	require.NoError(t, err)

	other := first
	other.Content = "different"
	_, err = r.AppendMessage(ctx, conv, other)
	require.ErrorIs(t, err, errs.ErrDuplicateID)

	other = first
	other.SenderIdentityKey = "m-x-com"
	_, err = r.AppendMessage(ctx, conv, other)
	require.ErrorIs(t, err, errs.ErrDuplicateID)

	after, err := mem.Get(ctx, messagesKey(conv))
	require.NoError(t, err)
	require.Equal(t, before, after)
}
