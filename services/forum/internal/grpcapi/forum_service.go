package grpcapi

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/example/learnhub/services/forum/internal/forum"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "learnhub.forum.v1.ForumService"

type ListPostsRequest struct{}

type ListPostsResponse struct {
	Posts forum.Forest `json:"posts"`
}

type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type VotePostRequest struct {
	PostID string `json:"postId"`
	Vote   string `json:"vote"`
}

type AddCommentRequest struct {
	PostID string `json:"postId"`
	Text   string `json:"text"`
}

type VoteCommentRequest struct {
	PostID    string `json:"postId"`
	CommentID string `json:"commentId"`
	Vote      string `json:"vote"`
}

type AddReplyRequest struct {
	PostID   string `json:"postId"`
	ParentID string `json:"parentId"`
	Text     string `json:"text"`
}

// MutationResponse mirrors the HTTP write response. Found is false when the
// addressed post or comment does not exist.
type MutationResponse struct {
	Found   bool           `json:"found"`
	Post    *forum.Post    `json:"post,omitempty"`
	Comment *forum.Comment `json:"comment,omitempty"`
}

// ForumServer is the server API for ForumService.
type ForumServer interface {
	ListPosts(context.Context, *ListPostsRequest) (*ListPostsResponse, error)
	CreatePost(context.Context, *CreatePostRequest) (*MutationResponse, error)
	VotePost(context.Context, *VotePostRequest) (*MutationResponse, error)
	AddComment(context.Context, *AddCommentRequest) (*MutationResponse, error)
	VoteComment(context.Context, *VoteCommentRequest) (*MutationResponse, error)
	AddReply(context.Context, *AddReplyRequest) (*MutationResponse, error)
}

// ForumStore is the part of *forum.Store the service uses.
type ForumStore interface {
	Forest() forum.Forest
	CreatePost(ctx context.Context, title, content string) (forum.Post, error)
	VotePost(ctx context.Context, postID string, v forum.Vote) (forum.Forest, error)
	AddComment(ctx context.Context, postID, text string) (forum.Added, bool, error)
	VoteComment(ctx context.Context, postID, commentID string, v forum.Vote) (forum.Forest, error)
	AddReply(ctx context.Context, postID, parentID, text string) (forum.Added, bool, error)
}

// ForumService implements ForumServer on top of a ForumStore.
type ForumService struct {
	Store ForumStore
	Log   *zap.Logger
}

func (s *ForumService) ListPosts(_ context.Context, _ *ListPostsRequest) (*ListPostsResponse, error) {
	return &ListPostsResponse{Posts: s.Store.Forest()}, nil
}

func (s *ForumService) CreatePost(ctx context.Context, req *CreatePostRequest) (*MutationResponse, error) {
	p, err := s.Store.CreatePost(ctx, req.Title, req.Content)
	if err != nil {
		return nil, s.notPersisted("CreatePost", err)
	}
	return &MutationResponse{Found: true, Post: &p}, nil
}

func (s *ForumService) VotePost(ctx context.Context, req *VotePostRequest) (*MutationResponse, error) {
	v, ok := forum.ParseVote(req.Vote)
	if !ok {
		return nil, errInvalidArgument("INVALID_VOTE", "invalid vote", "vote", "must be upvote or downvote")
	}
	f, err := s.Store.VotePost(ctx, req.PostID, v)
	if err != nil {
		return nil, s.notPersisted("VotePost", err)
	}
	resp := &MutationResponse{}
	if p, ok := forum.FindPost(f, req.PostID); ok {
		resp.Found, resp.Post = true, &p
	}
	return resp, nil
}

func (s *ForumService) AddComment(ctx context.Context, req *AddCommentRequest) (*MutationResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errInvalidArgument("EMPTY_TEXT", "text required", "text", "must not be empty")
	}
	a, found, err := s.Store.AddComment(ctx, req.PostID, req.Text)
	if err != nil {
		return nil, s.notPersisted("AddComment", err)
	}
	return addedResponse(a, found), nil
}

func (s *ForumService) VoteComment(ctx context.Context, req *VoteCommentRequest) (*MutationResponse, error) {
	v, ok := forum.ParseVote(req.Vote)
	if !ok {
		return nil, errInvalidArgument("INVALID_VOTE", "invalid vote", "vote", "must be upvote or downvote")
	}
	f, err := s.Store.VoteComment(ctx, req.PostID, req.CommentID, v)
	if err != nil {
		return nil, s.notPersisted("VoteComment", err)
	}
	c, found := forum.FindComment(f, req.PostID, req.CommentID)
	if !found {
		return &MutationResponse{}, nil
	}
	p, _ := forum.FindPost(f, req.PostID)
	return &MutationResponse{Found: true, Post: &p, Comment: &c}, nil
}

func (s *ForumService) AddReply(ctx context.Context, req *AddReplyRequest) (*MutationResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errInvalidArgument("EMPTY_TEXT", "text required", "text", "must not be empty")
	}
	a, found, err := s.Store.AddReply(ctx, req.PostID, req.ParentID, req.Text)
	if err != nil {
		return nil, s.notPersisted("AddReply", err)
	}
	return addedResponse(a, found), nil
}

func addedResponse(a forum.Added, found bool) *MutationResponse {
	if !found {
		return &MutationResponse{}
	}
	return &MutationResponse{Found: true, Post: &a.Post, Comment: &a.Comment}
}

func (s *ForumService) notPersisted(method string, err error) error {
	if s.Log != nil {
		s.Log.Warn("forum grpc: mutation not persisted", zap.String("method", method), zap.Error(err))
	}
	return errNotPersisted(err)
}

// RegisterForumServiceServer registers srv on s.
func RegisterForumServiceServer(s grpc.ServiceRegistrar, srv ForumServer) {
	s.RegisterService(&ForumServiceDesc, srv)
}

// ForumServiceDesc describes ForumService for grpc.Server.
var ForumServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ForumServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListPosts", Handler: unaryHandler("ListPosts", ForumServer.ListPosts)},
		{MethodName: "CreatePost", Handler: unaryHandler("CreatePost", ForumServer.CreatePost)},
		{MethodName: "VotePost", Handler: unaryHandler("VotePost", ForumServer.VotePost)},
		{MethodName: "AddComment", Handler: unaryHandler("AddComment", ForumServer.AddComment)},
		{MethodName: "VoteComment", Handler: unaryHandler("VoteComment", ForumServer.VoteComment)},
		{MethodName: "AddReply", Handler: unaryHandler("AddReply", ForumServer.AddReply)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "learnhub/forum/v1/forum.json",
}

func unaryHandler[Req, Resp any](method string, call func(ForumServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ForumServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ForumServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
