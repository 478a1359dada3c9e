package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "messenger.v1.Messenger"

// Method names.
const (
	MethodSignIn               = "SignIn"
	MethodSearchUsers          = "SearchUsers"
	MethodListConversations    = "ListConversations"
	MethodCreateConversation   = "CreateConversation"
	MethodSendMessage          = "SendMessage"
	MethodListMessages         = "ListMessages"
	MethodUploadProfilePicture = "UploadProfilePicture"
	MethodProfilePictureURL    = "ProfilePictureURL"
)

// FullMethod returns "/messenger.v1.Messenger/<method>".
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

// MessengerServer is implemented by the gRPC handlers.
type MessengerServer interface {
	SignIn(context.Context, *SignInRequest) (*SignInResponse, error)
	SearchUsers(context.Context, *SearchUsersRequest) (*SearchUsersResponse, error)
	ListConversations(context.Context, *ListConversationsRequest) (*ListConversationsResponse, error)
	CreateConversation(context.Context, *CreateConversationRequest) (*CreateConversationResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error)
	UploadProfilePicture(context.Context, *UploadProfilePictureRequest) (*UploadProfilePictureResponse, error)
	ProfilePictureURL(context.Context, *ProfilePictureURLRequest) (*ProfilePictureURLResponse, error)
}

func unary[Req, Resp any](method string, call func(MessengerServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MessengerServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(MessengerServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes messenger.v1.Messenger for grpc.Server.RegisterService.
// The schema lives in proto/messenger/v1/messenger.proto; this hand-written descriptor and
// the JSON codec stand in for the protoc-gen-go-grpc output under gen/go/messenger/v1.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MessengerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodSignIn, MessengerServer.SignIn),
		unary(MethodSearchUsers, MessengerServer.SearchUsers),
		unary(MethodListConversations, MessengerServer.ListConversations),
		unary(MethodCreateConversation, MessengerServer.CreateConversation),
		unary(MethodSendMessage, MessengerServer.SendMessage),
		unary(MethodListMessages, MessengerServer.ListMessages),
		unary(MethodUploadProfilePicture, MessengerServer.UploadProfilePicture),
		unary(MethodProfilePictureURL, MessengerServer.ProfilePictureURL),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "messenger/v1/messenger.proto",
}

// RegisterMessengerServer registers srv on s.
func RegisterMessengerServer(s grpc.ServiceRegistrar, srv MessengerServer) {
	s.RegisterService(&ServiceDesc, srv)
}
