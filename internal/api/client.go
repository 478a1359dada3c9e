package api

import (
	"context"

	"google.golang.org/grpc"
)

// Client is a typed messenger.v1.Messenger client.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a connection.
func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*SignInResponse, error) {
	return invoke[SignInRequest, SignInResponse](ctx, c.cc, MethodSignIn, in, opts)
}

func (c *Client) SearchUsers(ctx context.Context, in *SearchUsersRequest, opts ...grpc.CallOption) (*SearchUsersResponse, error) {
	return invoke[SearchUsersRequest, SearchUsersResponse](ctx, c.cc, MethodSearchUsers, in, opts)
}

func (c *Client) ListConversations(ctx context.Context, in *ListConversationsRequest, opts ...grpc.CallOption) (*ListConversationsResponse, error) {
	return invoke[ListConversationsRequest, ListConversationsResponse](ctx, c.cc, MethodListConversations, in, opts)
}

func (c *Client) CreateConversation(ctx context.Context, in *CreateConversationRequest, opts ...grpc.CallOption) (*CreateConversationResponse, error) {
	return invoke[CreateConversationRequest, CreateConversationResponse](ctx, c.cc, MethodCreateConversation, in, opts)
}

func (c *Client) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error) {
	return invoke[SendMessageRequest, SendMessageResponse](ctx, c.cc, MethodSendMessage, in, opts)
}

func (c *Client) ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error) {
	return invoke[ListMessagesRequest, ListMessagesResponse](ctx, c.cc, MethodListMessages, in, opts)
}

func (c *Client) UploadProfilePicture(ctx context.Context, in *UploadProfilePictureRequest, opts ...grpc.CallOption) (*UploadProfilePictureResponse, error) {
	return invoke[UploadProfilePictureRequest, UploadProfilePictureResponse](ctx, c.cc, MethodUploadProfilePicture, in, opts)
}

func (c *Client) ProfilePictureURL(ctx context.Context, in *ProfilePictureURLRequest, opts ...grpc.CallOption) (*ProfilePictureURLResponse, error) {
	return invoke[ProfilePictureURLRequest, ProfilePictureURLResponse](ctx, c.cc, MethodProfilePictureURL, in, opts)
}
