package service

import (
	"context"
	"fmt"

	"github.com/and161185/messenger/internal/errs"
	"github.com/and161185/messenger/internal/model"
	"github.com/and161185/messenger/internal/repository"
)

type fakeConversations struct {
	byOwner map[model.IdentityKey][]model.ConversationSummary

	appendErr map[model.IdentityKey]error
	updateErr map[model.IdentityKey]error
	calls     []string
}

var _ repository.ConversationRepository = (*fakeConversations)(nil)

func newFakeConversations() *fakeConversations {
	return &fakeConversations{
		byOwner:   map[model.IdentityKey][]model.ConversationSummary{},
		appendErr: map[model.IdentityKey]error{},
		updateErr: map[model.IdentityKey]error{},
	}
}

func (f *fakeConversations) AppendSummary(_ context.Context, owner model.IdentityKey, s model.ConversationSummary) error {
	f.calls = append(f.calls, "append:"+owner.String())
	if err := f.appendErr[owner]; err != nil {
		return err
	}
	for _, e := range f.byOwner[owner] {
		if e.ConversationID == s.ConversationID {
			if e.PeerIdentityKey != s.PeerIdentityKey {
				return errs.ErrDuplicateID
			}
			return nil
		}
	}
	f.byOwner[owner] = append(f.byOwner[owner], s)
	return nil
}

func (f *fakeConversations) UpdateLatestMessage(_ context.Context, owner model.IdentityKey, id string, latest model.LatestMessage) error {
	f.calls = append(f.calls, "update:"+owner.String())
	if err := f.updateErr[owner]; err != nil {
		return err
	}
	list := f.byOwner[owner]
	for i := range list {
		if list[i].ConversationID == id {
			if list[i].Latest.Timestamp.After(latest.Timestamp) {
				return nil
			}
			list[i].Latest = latest
			return nil
		}
	}
	return fmt.Errorf("%w: %s", errs.ErrConversationNotFound, id)
}

func (f *fakeConversations) ListSummaries(_ context.Context, owner model.IdentityKey) ([]model.ConversationSummary, error) {
	return append([]model.ConversationSummary(nil), f.byOwner[owner]...), nil
}

type fakeMessages struct {
	byConv    map[string][]model.Message
	appendErr error
}

var _ repository.MessageRepository = (*fakeMessages)(nil)

func (f *fakeMessages) AppendMessage(_ context.Context, id string, m model.Message) (model.Message, error) {
	if f.appendErr != nil {
		return model.Message{}, f.appendErr
	}
	if f.byConv == nil {
		f.byConv = map[string][]model.Message{}
	}
	for _, e := range f.byConv[id] {
		if e.ID == m.ID {
			if !e.SameAs(m) {
				return model.Message{}, errs.ErrDuplicateID
			}
			return e, nil
		}
	}
	f.byConv[id] = append(f.byConv[id], m)
	return m, nil
}

func (f *fakeMessages) ListMessages(_ context.Context, id string) ([]model.Message, error) {
	return f.byConv[id], nil
}

type fakeUsers struct {
	byKey    map[model.IdentityKey]model.User
	dir      []model.DirectoryEntry
	existErr error
	regErr   error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Exists(_ context.Context, k model.IdentityKey) (bool, error) {
	if f.existErr != nil {
		return false, f.existErr
	}
	_, ok := f.byKey[k]
	return ok, nil
}

func (f *fakeUsers) Get(_ context.Context, k model.IdentityKey) (*model.User, error) {
	u, ok := f.byKey[k]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeUsers) Register(_ context.Context, u model.User) error {
	if f.regErr != nil {
		return f.regErr
	}
	if f.byKey == nil {
		f.byKey = map[model.IdentityKey]model.User{}
	}
	f.byKey[u.IdentityKey] = u
	f.dir = append(f.dir, model.DirectoryEntry{DisplayName: u.DisplayName(), IdentityKey: u.IdentityKey})
	return nil
}

func (f *fakeUsers) ListDirectory(context.Context) ([]model.DirectoryEntry, error) {
	return f.dir, nil
}
