package grpcserver

import (
	"context"

	"github.com/and161185/messenger/internal/model"
)

type ctxKey string

const currentUserKey ctxKey = "messenger.currentUser"

// WithCurrentUser stores the authenticated user in context.
func WithCurrentUser(ctx context.Context, u model.CurrentUser) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// CurrentUserFromCtx fetches the authenticated user from context.
func CurrentUserFromCtx(ctx context.Context) (model.CurrentUser, bool) {
	u, ok := ctx.Value(currentUserKey).(model.CurrentUser)
	if !ok || u.IdentityKey == "" {
		return model.CurrentUser{}, false
	}
	return u, true
}
