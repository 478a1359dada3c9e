package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc"

	"github.com/and161185/messenger/internal/api"
	"github.com/and161185/messenger/internal/convert"
	"github.com/and161185/messenger/internal/directory"
	"github.com/and161185/messenger/internal/model"
)

// client is the subset of *api.Client the commands use.
type client interface {
	SignIn(ctx context.Context, in *api.SignInRequest, opts ...grpc.CallOption) (*api.SignInResponse, error)
	SearchUsers(ctx context.Context, in *api.SearchUsersRequest, opts ...grpc.CallOption) (*api.SearchUsersResponse, error)
	ListConversations(ctx context.Context, in *api.ListConversationsRequest, opts ...grpc.CallOption) (*api.ListConversationsResponse, error)
	CreateConversation(ctx context.Context, in *api.CreateConversationRequest, opts ...grpc.CallOption) (*api.CreateConversationResponse, error)
	SendMessage(ctx context.Context, in *api.SendMessageRequest, opts ...grpc.CallOption) (*api.SendMessageResponse, error)
	ListMessages(ctx context.Context, in *api.ListMessagesRequest, opts ...grpc.CallOption) (*api.ListMessagesResponse, error)
	UploadProfilePicture(ctx context.Context, in *api.UploadProfilePictureRequest, opts ...grpc.CallOption) (*api.UploadProfilePictureResponse, error)
	ProfilePictureURL(ctx context.Context, in *api.ProfilePictureURLRequest, opts ...grpc.CallOption) (*api.ProfilePictureURLResponse, error)
}

var _ client = (*api.Client)(nil)

func cmdSignIn(ctx context.Context, cl client, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("signin", flag.ContinueOnError)
	email := fs.String("email", "", "verified email")
	first := fs.String("first", "", "first name (first sign-in)")
	last := fs.String("last", "", "last name (first sign-in)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("need -email")
	}
	resp, err := cl.SignIn(ctx, &api.SignInRequest{Email: *email, FirstName: *first, LastName: *last})
	if err != nil {
		return err
	}
	if err := saveToken(tokenFile{
		AccessToken: resp.AccessToken,
		ExpiresAt:   resp.ExpiresAt,
		IdentityKey: resp.IdentityKey,
		DisplayName: resp.DisplayName,
	}); err != nil {
		return err
	}
	fmt.Fprintf(w, "signed in as %s (%s)\n", resp.DisplayName, resp.IdentityKey)
	return nil
}

// directoryLister fetches the whole directory with an empty-prefix search.
type directoryLister struct{ cl client }

func (d directoryLister) ListAll(ctx context.Context) ([]model.DirectoryEntry, error) {
	resp, err := d.cl.SearchUsers(ctx, &api.SearchUsersRequest{})
	if err != nil {
		return nil, err
	}
	return convert.FromAPIUsers(resp.Users), nil
}

// cmdSearch fetches the directory once and filters it for every prefix given.
func cmdSearch(ctx context.Context, cl client, args []string, w io.Writer) error {
	if len(args) == 0 {
		return errors.New("need at least one prefix")
	}
	s := directory.NewSearcher(directoryLister{cl: cl})
	for _, prefix := range args {
		found, err := s.Search(ctx, prefix)
		if err != nil {
			return err
		}
		printJSON(w, convert.ToAPIUsers(found))
	}
	return nil
}

func cmdConversations(ctx context.Context, cl client, _ []string, w io.Writer) error {
	resp, err := cl.ListConversations(ctx, &api.ListConversationsRequest{})
	if err != nil {
		return err
	}
	for _, c := range resp.Conversations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.PeerName, c.Latest.Date.Local().Format(time.DateTime), c.Latest.Text)
	}
	return nil
}

func cmdStart(ctx context.Context, cl client, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	to := fs.String("to", "", "peer email or identity key")
	name := fs.String("name", "", "peer display name")
	text := fs.String("text", "", "first message")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *to == "" || *text == "" {
		return errors.New("need -to and -text")
	}
	resp, err := cl.CreateConversation(ctx, &api.CreateConversationRequest{
		PeerEmail: *to,
		PeerName:  *name,
		First:     api.Message{Kind: string(model.KindText), Content: *text, Date: time.Now()},
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(w, resp.ConversationID)
	return nil
}

func cmdSend(ctx context.Context, cl client, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	conv := fs.String("c", "", "conversation id")
	to := fs.String("to", "", "peer email or identity key")
	name := fs.String("name", "", "peer display name")
	text := fs.String("text", "", "message")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *conv == "" || *to == "" || *text == "" {
		return errors.New("need -c -to -text")
	}
	resp, err := cl.SendMessage(ctx, &api.SendMessageRequest{
		ConversationID: *conv,
		PeerEmail:      *to,
		PeerName:       *name,
		Message:        api.Message{Kind: string(model.KindText), Content: *text, Date: time.Now()},
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(w, resp.MessageID)
	return nil
}

func cmdMessages(ctx context.Context, cl client, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("messages", flag.ContinueOnError)
	conv := fs.String("c", "", "conversation id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *conv == "" {
		return errors.New("need -c")
	}
	resp, err := cl.ListMessages(ctx, &api.ListMessagesRequest{ConversationID: *conv})
	if err != nil {
		return err
	}
	for _, m := range resp.Messages {
		body := m.Content
		if m.Kind != string(model.KindText) {
			body = "[" + m.Kind + "]"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Date.Local().Format(time.DateTime), m.Sender, body)
	}
	return nil
}

func cmdUploadPicture(ctx context.Context, cl client, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("upload-picture", flag.ContinueOnError)
	file := fs.String("file", "", "image file ('-'=stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("need -file")
	}
	data, err := readAll(*file)
	if err != nil {
		return err
	}
	resp, err := cl.UploadProfilePicture(ctx, &api.UploadProfilePictureRequest{Data: data})
	if err != nil {
		return err
	}
	fmt.Fprintln(w, resp.URL)
	return nil
}

func cmdPictureURL(ctx context.Context, cl client, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("picture-url", flag.ContinueOnError)
	email := fs.String("email", "", "user email (default: you)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	resp, err := cl.ProfilePictureURL(ctx, &api.ProfilePictureURLRequest{Email: *email})
	if err != nil {
		return err
	}
	fmt.Fprintln(w, resp.URL)
	return nil
}
