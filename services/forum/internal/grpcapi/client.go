package grpcapi

import (
	"context"

	"google.golang.org/grpc"
)

// ForumClient calls ForumService over any grpc.ClientConnInterface using the
// JSON codec.
type ForumClient struct {
	cc grpc.ClientConnInterface
}

func NewForumClient(cc grpc.ClientConnInterface) *ForumClient {
	return &ForumClient{cc: cc}
}

func (c *ForumClient) ListPosts(ctx context.Context, in *ListPostsRequest, opts ...grpc.CallOption) (*ListPostsResponse, error) {
	return invoke[ListPostsResponse](ctx, c.cc, "ListPosts", in, opts)
}

func (c *ForumClient) CreatePost(ctx context.Context, in *CreatePostRequest, opts ...grpc.CallOption) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, "CreatePost", in, opts)
}

func (c *ForumClient) VotePost(ctx context.Context, in *VotePostRequest, opts ...grpc.CallOption) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, "VotePost", in, opts)
}

func (c *ForumClient) AddComment(ctx context.Context, in *AddCommentRequest, opts ...grpc.CallOption) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, "AddComment", in, opts)
}

func (c *ForumClient) VoteComment(ctx context.Context, in *VoteCommentRequest, opts ...grpc.CallOption) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, "VoteComment", in, opts)
}

func (c *ForumClient) AddReply(ctx context.Context, in *AddReplyRequest, opts ...grpc.CallOption) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, "AddReply", in, opts)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
