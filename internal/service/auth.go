// Package service contains application services for sessions, the user directory and messaging.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/messenger/internal/errs"
	"github.com/and161185/messenger/internal/model"
)

// AuthService turns an identity asserted by the external provider into a session.
type AuthService interface {
	// SignIn registers the user on first sight and issues an access token.
	SignIn(ctx context.Context, in SignInInput) (model.Tokens, model.CurrentUser, error)
}

// SignInInput is the identity returned by the provider. Names are only used on first sign-in.
type SignInInput struct {
	Email     string `validate:"required,email"`
	FirstName string
	LastName  string
}

// Claims are carried by access tokens. Subject is the identity key.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

type AuthServiceImpl struct {
	users     DirectoryService
	signKey   []byte
	accessTTL time.Duration
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users DirectoryService, signKey []byte, accessTTL time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL}
}

// SignIn checks whether the user exists, registers them if not, and issues a token.
func (s *AuthServiceImpl) SignIn(ctx context.Context, in SignInInput) (model.Tokens, model.CurrentUser, error) {
	if err := validate.Struct(in); err != nil {
		return model.Tokens{}, model.CurrentUser{}, fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
	}

	exists, err := s.users.Exists(ctx, in.Email)
	if err != nil {
		return model.Tokens{}, model.CurrentUser{}, err
	}

	var u *model.User
	if exists {
		u, err = s.users.Get(ctx, in.Email)
		if err != nil {
			return model.Tokens{}, model.CurrentUser{}, err
		}
	} else {
		nu := model.User{FirstName: in.FirstName, LastName: in.LastName, Email: in.Email}
		if err := s.users.Register(ctx, nu); err != nil {
			return model.Tokens{}, model.CurrentUser{}, err
		}
		if u, err = s.users.Get(ctx, in.Email); err != nil {
			return model.Tokens{}, model.CurrentUser{}, err
		}
	}

	cur := model.CurrentUser{IdentityKey: u.IdentityKey, DisplayName: u.DisplayName()}
	tok, err := s.issueAccessToken(cur)
	if err != nil {
		return model.Tokens{}, model.CurrentUser{}, err
	}
	return tok, cur, nil
}

// issueAccessToken creates a signed HS256 JWT for the given user.
func (s *AuthServiceImpl) issueAccessToken(u model.CurrentUser) (model.Tokens, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return model.Tokens{}, err
	}
	now := time.Now()
	exp := now.Add(s.accessTTL)
	claims := Claims{
		Name: u.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   u.IdentityKey.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: signed, ExpiresAt: exp}, nil
}

// ParseAccessToken verifies an HS256 token signed with key and returns the user it names.
func ParseAccessToken(key []byte, token string) (model.CurrentUser, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	}, jwt.WithLeeway(30*time.Second), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return model.CurrentUser{}, fmt.Errorf("%w: invalid token", errs.ErrUnauthorized)
	}
	if claims.Subject == "" {
		return model.CurrentUser{}, fmt.Errorf("%w: empty subject", errs.ErrUnauthorized)
	}
	return model.CurrentUser{IdentityKey: model.IdentityKey(claims.Subject), DisplayName: claims.Name}, nil
}
