package grpcserver

import (
	"context"
	"testing"

	"github.com/and161185/messenger/internal/model"
)

func TestWithCurrentUser_And_CurrentUserFromCtx(t *testing.T) {
	t.Parallel()

	if _, ok := CurrentUserFromCtx(context.Background()); ok {
		t.Fatalf("expected no user in empty ctx")
	}

	want := model.CurrentUser{IdentityKey: "a-x-com", DisplayName: "A B"}
	ctx := WithCurrentUser(context.Background(), want)

	got, ok := CurrentUserFromCtx(ctx)
	if !ok {
		t.Fatalf("expected user in ctx")
	}
	if got != want {
		t.Fatalf("mismatch: got %+v, want %+v", got, want)
	}

	bad := context.WithValue(context.Background(), currentUserKey, "a-x-com")
	if _, ok := CurrentUserFromCtx(bad); ok {
		t.Fatalf("expected miss on wrong typed value")
	}
	if _, ok := CurrentUserFromCtx(WithCurrentUser(context.Background(), model.CurrentUser{})); ok {
		t.Fatalf("expected miss on empty identity key")
	}
}
