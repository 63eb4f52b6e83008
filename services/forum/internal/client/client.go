// Package client is an HTTP client for the forum API, used by forumctl.
package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"resty.dev/v3"

	"github.com/example/learnhub/internal/platform/api"
	"github.com/example/learnhub/services/forum/internal/forum"
)

const DefaultBaseURL = "http://localhost:8080"

type Client struct {
	client *resty.Client
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// MutationResult is the body of every write endpoint.
type MutationResult struct {
	Found   bool           `json:"found"`
	Post    *forum.Post    `json:"post"`
	Comment *forum.Comment `json:"comment,omitempty"`
}

// Error is returned for non-2xx responses.
type Error struct {
	Status int
	API    api.APIError
}

func (e *Error) Error() string {
	if e.API.Code == "" {
		return fmt.Sprintf("forum api: http %d", e.Status)
	}
	return fmt.Sprintf("forum api: http %d %s: %s", e.Status, e.API.Code, e.API.Message)
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{client: c}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) r(ctx context.Context) *resty.Request {
	return c.client.R().WithContext(ctx).SetError(&api.ErrorResponse{})
}

func (c *Client) ListPosts(ctx context.Context) (forum.Forest, error) {
	type posts struct {
		Posts forum.Forest `json:"posts"`
	}
	res, err := c.r(ctx).SetResult(&posts{}).Get("/v1/forum/posts")
	if err := check(res, err); err != nil {
		return nil, err
	}
	return res.Result().(*posts).Posts, nil
}

func (c *Client) GetPost(ctx context.Context, postID string) (forum.Post, error) {
	res, err := c.r(ctx).SetResult(&forum.Post{}).Get("/v1/forum/posts/" + url.PathEscape(postID))
	if err := check(res, err); err != nil {
		return forum.Post{}, err
	}
	return *res.Result().(*forum.Post), nil
}

func (c *Client) Stats(ctx context.Context) (forum.Stats, error) {
	res, err := c.r(ctx).SetResult(&forum.Stats{}).Get("/v1/forum/stats")
	if err := check(res, err); err != nil {
		return forum.Stats{}, err
	}
	return *res.Result().(*forum.Stats), nil
}

func (c *Client) CreatePost(ctx context.Context, title, content string) (*MutationResult, error) {
	body := map[string]string{"title": title, "content": content}
	return c.mutate(ctx, "/v1/forum/posts", body)
}

func (c *Client) VotePost(ctx context.Context, postID string, v forum.Vote) (*MutationResult, error) {
	return c.mutate(ctx, "/v1/forum/posts/"+url.PathEscape(postID)+"/"+v.String(), nil)
}

func (c *Client) AddComment(ctx context.Context, postID, text string) (*MutationResult, error) {
	return c.mutate(ctx, "/v1/forum/posts/"+url.PathEscape(postID)+"/comments", map[string]string{"text": text})
}

func (c *Client) VoteComment(ctx context.Context, postID, commentID string, v forum.Vote) (*MutationResult, error) {
	path := "/v1/forum/posts/" + url.PathEscape(postID) + "/comments/" + url.PathEscape(commentID) + "/" + v.String()
	return c.mutate(ctx, path, nil)
}

func (c *Client) AddReply(ctx context.Context, postID, parentID, text string) (*MutationResult, error) {
	path := "/v1/forum/posts/" + url.PathEscape(postID) + "/comments/" + url.PathEscape(parentID) + "/replies"
	return c.mutate(ctx, path, map[string]string{"text": text})
}

func (c *Client) mutate(ctx context.Context, path string, body any) (*MutationResult, error) {
	req := c.r(ctx).SetResult(&MutationResult{})
	if body != nil {
		req.SetBody(body)
	}
	res, err := req.Post(path)
	if err := check(res, err); err != nil {
		return nil, err
	}
	return res.Result().(*MutationResult), nil
}

func check(res *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !res.IsError() {
		return nil
	}
	e := &Error{Status: res.StatusCode()}
	if body, ok := res.Error().(*api.ErrorResponse); ok && body != nil {
		e.API = body.Error
	}
	return e
}
