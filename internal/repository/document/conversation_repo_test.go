package document

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/messenger/internal/errs"
	"github.com/and161185/messenger/internal/model"
)

func summary(id string, peer model.IdentityKey, text string, at time.Time) model.ConversationSummary {
	return model.ConversationSummary{
		ConversationID:  id,
		PeerIdentityKey: peer,
		PeerDisplayName: "Peer",
		Latest:          model.LatestMessage{Timestamp: at, Text: text},
	}
}

func TestConversationRepo_AppendListUpdate(t *testing.T) {
	b, _ := newBackend(t)
	r := NewConversationRepo(b)
	ctx := context.Background()
	owner := model.IdentityKey("a-x-com")
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	list, err := r.ListSummaries(ctx, owner)
	require.NoError(t, err)
	require.Empty(t, list)

	require.NoError(t, r.AppendSummary(ctx, owner, summary("conversation_1", "b-x-com", "hi", t0)))
	require.NoError(t, r.AppendSummary(ctx, owner, summary("conversation_2", "c-x-com", "yo", t0)))
	// same id again is kept as is
	require.NoError(t, r.AppendSummary(ctx, owner, summary("conversation_1", "b-x-com", "changed", t0)))

	list, err = r.ListSummaries(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "conversation_1", list[0].ConversationID)
	require.Equal(t, "hi", list[0].Latest.Text)
	require.Equal(t, "conversation_2", list[1].ConversationID)

	t1 := t0.Add(time.Minute)
	require.NoError(t, r.UpdateLatestMessage(ctx, owner, "conversation_2", model.LatestMessage{Timestamp: t1, Text: "later"}))

	list, err = r.ListSummaries(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, "hi", list[0].Latest.Text)
	require.Equal(t, "later", list[1].Latest.Text)
	require.True(t, t1.Equal(list[1].Latest.Timestamp))
	require.Equal(t, model.IdentityKey("c-x-com"), list[1].PeerIdentityKey)
}

func TestConversationRepo_UpdateMissing(t *testing.T) {
	b, mem := newBackend(t)
	r := NewConversationRepo(b)
	ctx := context.Background()
	owner := model.IdentityKey("a-x-com")

	err := r.UpdateLatestMessage(ctx, owner, "conversation_x", model.LatestMessage{Text: "x"})
	require.ErrorIs(t, err, errs.ErrConversationNotFound)

	require.NoError(t, r.AppendSummary(ctx, owner, summary("conversation_1", "b-x-com", "hi", time.Now())))
	before, err := mem.Get(ctx, conversationsKey(owner))
	require.NoError(t, err)

	err = r.UpdateLatestMessage(ctx, owner, "conversation_x", model.LatestMessage{Text: "x"})
	require.ErrorIs(t, err, errs.ErrConversationNotFound)

	after, err := mem.Get(ctx, conversationsKey(owner))
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestConversationRepo_Malformed(t *testing.T) {
	b, mem := newBackend(t)
	r := NewConversationRepo(b)
	ctx := context.Background()

	_, err := mem.Put(ctx, "a-x-com/conversations", []byte(`[{"id":"conversation_1"}]`))
	require.NoError(t, err)
	_, err = r.ListSummaries(ctx, "a-x-com")
	require.ErrorIs(t, err, errs.ErrMalformedRecord)

	err = r.AppendSummary(ctx, "a-x-com", summary("conversation_2", "b-x-com", "hi", time.Now()))
	require.ErrorIs(t, err, errs.ErrMalformedRecord)
}

func TestMutateList_RetriesOnConflict(t *testing.T) {
	b, fs := newFaultyBackend(t, 3)
	r := NewConversationRepo(b)
	ctx := context.Background()

	fs.conflicts = 2
	require.NoError(t, r.AppendSummary(ctx, "a-x-com", summary("conversation_1", "b-x-com", "hi", time.Now())))
	require.Equal(t, 3, fs.casCalls)

	fs.conflicts = 3
	err := r.AppendSummary(ctx, "a-x-com", summary("conversation_2", "b-x-com", "hi", time.Now()))
	require.ErrorIs(t, err, errs.ErrStoreWrite)
	require.ErrorIs(t, err, errs.ErrVersionConflict)

	list, err := r.ListSummaries(ctx, "a-x-com")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestConversationRepo_ConcurrentAppends_NoLostUpdates(t *testing.T) {
	b, _ := newBackend(t)
	r := NewConversationRepo(b)
	ctx := context.Background()
	const n = 32

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := summary(fmt.Sprintf("conversation_%d", i), "b-x-com", "hi", time.Now())
			require.NoError(t, r.AppendSummary(ctx, "a-x-com", s))
		}(i)
	}
	wg.Wait()

	list, err := r.ListSummaries(ctx, "a-x-com")
	require.NoError(t, err)
	require.Len(t, list, n)
}

func TestConversationRepo_SharedStore_TwoBackends(t *testing.T) {
	// two processes share one store: no shared KeyLock, CAS alone keeps updates
	_, mem := newBackend(t)
	r1 := NewConversationRepo(NewBackend(mem, 64, nil))
	r2 := NewConversationRepo(NewBackend(mem, 64, nil))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			require.NoError(t, r1.AppendSummary(ctx, "a-x-com", summary(fmt.Sprintf("conversation_a%d", i), "b-x-com", "", time.Now())))
		}(i)
		go func(i int) {
			defer wg.Done()
			require.NoError(t, r2.AppendSummary(ctx, "a-x-com", summary(fmt.Sprintf("conversation_b%d", i), "b-x-com", "", time.Now())))
		}(i)
	}
	wg.Wait()

	list, err := r1.ListSummaries(ctx, "a-x-com")
	require.NoError(t, err)
	require.Len(t, list, 40)
}

func TestConversationRepo_SameIDOtherPeer(t *testing.T) {
	b, mem := newBackend(t)
	r := NewConversationRepo(b)
	ctx := context.Background()
	owner := model.IdentityKey("b-x-com")

	require.NoError(t, r.AppendSummary(ctx, owner, summary("conversation_m1", "a-x-com", "secret", time.Now())))
	before, err := mem.Get(ctx, conversationsKey(owner))
	require.NoError(t, err)

	err = r.AppendSummary(ctx, owner, summary("conversation_m1", "m-x-com", "hi", time.Now()))
	require.ErrorIs(t, err, errs.ErrDuplicateID)

	renamed := summary("conversation_m1", "a-x-com", "secret", time.Now())
	renamed.PeerDisplayName = "Someone Else"
	err = r.AppendSummary(ctx, owner, renamed)
	require.ErrorIs(t, err, errs.ErrDuplicateID)

	after, err := mem.Get(ctx, conversationsKey(owner))
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestConversationRepo_UpdateKeepsNewerPreview(t *testing.T) {
	b, _ := newBackend(t)
	r := NewConversationRepo(b)
	ctx := context.Background()
	owner := model.IdentityKey("a-x-com")
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, r.AppendSummary(ctx, owner, summary("conversation_1", "b-x-com", "first", t0)))
	require.NoError(t, r.UpdateLatestMessage(ctx, owner, "conversation_1", model.LatestMessage{Timestamp: t0.Add(2 * time.Second), Text: "newer"}))
	// a send that lost the race lands after the newer one
	require.NoError(t, r.UpdateLatestMessage(ctx, owner, "conversation_1", model.LatestMessage{Timestamp: t0.Add(time.Second), Text: "older"}))

	list, err := r.ListSummaries(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, "newer", list[0].Latest.Text)

	// equal timestamps overwrite
	require.NoError(t, r.UpdateLatestMessage(ctx, owner, "conversation_1", model.LatestMessage{Timestamp: t0.Add(2 * time.Second), Text: "tie"}))
	list, err = r.ListSummaries(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, "tie", list[0].Latest.Text)
}
