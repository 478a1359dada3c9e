// Package grpcserver exposes the messenger gRPC API handlers.
package grpcserver

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/and161185/messenger/internal/api"
	"github.com/and161185/messenger/internal/blob"
	"github.com/and161185/messenger/internal/convert"
	"github.com/and161185/messenger/internal/errs"
	"github.com/and161185/messenger/internal/identity"
	"github.com/and161185/messenger/internal/model"
	"github.com/and161185/messenger/internal/service"
)

var validate = validator.New()

// Server wires services into gRPC handlers.
type Server struct {
	auth      service.AuthService
	directory service.DirectoryService
	messaging service.MessagingService
	blobs     blob.Store
	signKey   []byte
}

var _ api.MessengerServer = (*Server)(nil)

// New constructs a gRPC server with injected services.
func New(auth service.AuthService, directory service.DirectoryService, messaging service.MessagingService, blobs blob.Store, signKey []byte) *Server {
	return &Server{auth: auth, directory: directory, messaging: messaging, blobs: blobs, signKey: signKey}
}

// toStatus maps domain errors onto gRPC codes.
func toStatus(op string, err error) error {
	switch {
	case errors.Is(err, errs.ErrPartialWrite):
		return status.Errorf(codes.Aborted, "%s: %v", op, err)
	case errors.Is(err, errs.ErrInvalidArgument):
		return status.Errorf(codes.InvalidArgument, "%s: %v", op, err)
	case errors.Is(err, errs.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "no auth")
	case errors.Is(err, errs.ErrDuplicateID):
		return status.Errorf(codes.AlreadyExists, "%s: %v", op, err)
	case errors.Is(err, errs.ErrConversationNotFound),
		errors.Is(err, errs.ErrUserNotFound),
		errors.Is(err, errs.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s: %v", op, err)
	case errors.Is(err, errs.ErrVersionConflict):
		return status.Errorf(codes.Aborted, "%s: concurrent update, retry", op)
	case errors.Is(err, errs.ErrMalformedRecord):
		return status.Errorf(codes.FailedPrecondition, "%s: %v", op, err)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, op)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, op)
	default:
		return status.Errorf(codes.Internal, "%s: %v", op, err)
	}
}

func invalid(err error) error {
	return status.Errorf(codes.InvalidArgument, "bad request: %v", err)
}

// --- Auth ---

// SignIn registers the user on first sight and returns an access token.
func (s *Server) SignIn(ctx context.Context, req *api.SignInRequest) (*api.SignInResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, invalid(err)
	}
	tok, cur, err := s.auth.SignIn(ctx, service.SignInInput{Email: req.Email, FirstName: req.FirstName, LastName: req.LastName})
	if err != nil {
		return nil, toStatus("sign in", err)
	}
	return &api.SignInResponse{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.ExpiresAt,
		IdentityKey: cur.IdentityKey.String(),
		DisplayName: cur.DisplayName,
	}, nil
}

// --- Directory ---

// SearchUsers filters the directory by display-name prefix.
func (s *Server) SearchUsers(ctx context.Context, req *api.SearchUsersRequest) (*api.SearchUsersResponse, error) {
	if _, err := s.currentUser(ctx); err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	entries, err := s.directory.Search(ctx, req.Query)
	if err != nil {
		return nil, toStatus("search users", err)
	}
	return &api.SearchUsersResponse{Users: convert.ToAPIUsers(entries)}, nil
}

// --- Conversations ---

// ListConversations returns the caller's conversation summaries.
func (s *Server) ListConversations(ctx context.Context, _ *api.ListConversationsRequest) (*api.ListConversationsResponse, error) {
	cur, err := s.currentUser(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	list, err := s.messaging.Conversations(ctx, cur)
	if err != nil {
		return nil, toStatus("list conversations", err)
	}
	return &api.ListConversationsResponse{Conversations: convert.ToAPIConversations(list)}, nil
}

// CreateConversation starts a conversation with its first message.
func (s *Server) CreateConversation(ctx context.Context, req *api.CreateConversationRequest) (*api.CreateConversationResponse, error) {
	cur, err := s.currentUser(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	if err := validate.Struct(req); err != nil {
		return nil, invalid(err)
	}
	id, err := s.messaging.CreateConversation(ctx, cur, req.PeerEmail, req.PeerName, convert.FromAPIMessage(req.First))
	if err != nil {
		return nil, toStatus("create conversation", err)
	}
	return &api.CreateConversationResponse{ConversationID: id}, nil
}

// SendMessage appends a message and refreshes both previews.
func (s *Server) SendMessage(ctx context.Context, req *api.SendMessageRequest) (*api.SendMessageResponse, error) {
	cur, err := s.currentUser(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	if err := validate.Struct(req); err != nil {
		return nil, invalid(err)
	}
	msg := convert.FromAPIMessage(req.Message)
	if msg.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, status.Errorf(codes.Internal, "message id: %v", err)
		}
		msg.ID = id.String()
	}
	if err := s.messaging.SendMessage(ctx, req.ConversationID, cur, req.PeerEmail, req.PeerName, msg); err != nil {
		return nil, toStatus("send message", err)
	}
	return &api.SendMessageResponse{MessageID: msg.ID}, nil
}

// ListMessages returns the log of a conversation the caller takes part in.
func (s *Server) ListMessages(ctx context.Context, req *api.ListMessagesRequest) (*api.ListMessagesResponse, error) {
	cur, err := s.currentUser(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	if err := validate.Struct(req); err != nil {
		return nil, invalid(err)
	}
	msgs, err := s.messaging.Messages(ctx, cur, req.ConversationID)
	if err != nil {
		return nil, toStatus("list messages", err)
	}
	return &api.ListMessagesResponse{Messages: convert.ToAPIMessages(msgs)}, nil
}

// --- Profile pictures ---

// UploadProfilePicture stores the caller's picture and returns its URL.
func (s *Server) UploadProfilePicture(ctx context.Context, req *api.UploadProfilePictureRequest) (*api.UploadProfilePictureResponse, error) {
	cur, err := s.currentUser(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	if err := validate.Struct(req); err != nil {
		return nil, invalid(err)
	}
	u, err := s.blobs.Put(ctx, identity.ProfilePictureFileName(cur.IdentityKey), req.Data)
	if err != nil {
		return nil, toStatus("upload picture", err)
	}
	return &api.UploadProfilePictureResponse{URL: u}, nil
}

// ProfilePictureURL returns the picture URL of email, or of the caller when email is empty.
func (s *Server) ProfilePictureURL(ctx context.Context, req *api.ProfilePictureURLRequest) (*api.ProfilePictureURLResponse, error) {
	cur, err := s.currentUser(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	key := cur.IdentityKey
	if req.Email != "" {
		key = identity.Normalize(req.Email)
	}
	u, err := s.blobs.URL(ctx, identity.ProfilePictureFileName(key))
	if err != nil {
		return nil, toStatus("picture url", err)
	}
	return &api.ProfilePictureURLResponse{URL: u}, nil
}

// currentUser returns the user set by AuthUnary, or verifies the bearer token itself.
func (s *Server) currentUser(ctx context.Context) (model.CurrentUser, error) {
	if u, ok := CurrentUserFromCtx(ctx); ok {
		return u, nil
	}
	tok, err := bearerTokenFromMD(ctx)
	if err != nil {
		return model.CurrentUser{}, err
	}
	return service.ParseAccessToken(s.signKey, tok)
}

func bearerTokenFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.New("no metadata")
	}
	for _, v := range md.Get("authorization") {
		v = strings.TrimSpace(v)
		if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
			t := strings.TrimSpace(v[7:])
			if t != "" {
				return t, nil
			}
		}
	}
	return "", errors.New("no bearer token")
}
