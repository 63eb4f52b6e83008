package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/learnhub/internal/platform/api"
	"github.com/example/learnhub/internal/platform/httpserver"
	"github.com/example/learnhub/services/forum/internal/forum"
)

// ForumStore is the part of *forum.Store the handlers use.
type ForumStore interface {
	Forest() forum.Forest
	Post(id string) (forum.Post, bool)
	Stats() forum.Stats
	CreatePost(ctx context.Context, title, content string) (forum.Post, error)
	VotePost(ctx context.Context, postID string, v forum.Vote) (forum.Forest, error)
	AddComment(ctx context.Context, postID, text string) (forum.Added, bool, error)
	VoteComment(ctx context.Context, postID, commentID string, v forum.Vote) (forum.Forest, error)
	AddReply(ctx context.Context, postID, parentID, text string) (forum.Added, bool, error)
}

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type textRequest struct {
	Text string `json:"text"`
}

type postsResponse struct {
	Posts forum.Forest `json:"posts"`
}

// mutationResponse is returned by every write. Found is false when the
// addressed post or comment does not exist; the forest is then unchanged.
type mutationResponse struct {
	Found   bool           `json:"found"`
	Post    *forum.Post    `json:"post"`
	Comment *forum.Comment `json:"comment,omitempty"`
}

// Routes mounts the forum API on r. Writes go through limit when non-nil.
func Routes(r chi.Router, fs ForumStore, log *zap.Logger, limit func(http.Handler) http.Handler) {
	r.Get("/v1/forum/posts", ListPosts(fs))
	r.Get("/v1/forum/posts/{post_id}", GetPost(fs))
	r.Get("/v1/forum/stats", GetStats(fs))

	r.Group(func(r chi.Router) {
		if limit != nil {
			r.Use(limit)
		}
		r.Post("/v1/forum/posts", CreatePost(fs, log))
		r.Post("/v1/forum/posts/{post_id}/{vote:upvote|downvote}", VotePost(fs, log))
		r.Post("/v1/forum/posts/{post_id}/comments", AddComment(fs, log))
		r.Post("/v1/forum/posts/{post_id}/comments/{comment_id}/{vote:upvote|downvote}", VoteComment(fs, log))
		r.Post("/v1/forum/posts/{post_id}/comments/{comment_id}/replies", AddReply(fs, log))
	})
}

// ListPosts handles GET /v1/forum/posts
func ListPosts(fs ForumStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusOK, postsResponse{Posts: fs.Forest()})
	}
}

// GetPost handles GET /v1/forum/posts/{post_id}
func GetPost(fs ForumStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := fs.Post(chi.URLParam(r, "post_id"))
		if !ok {
			api.NotFound(w, "NOT_FOUND", "post not found", requestID(r))
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}

// GetStats handles GET /v1/forum/stats
func GetStats(fs ForumStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusOK, fs.Stats())
	}
}

// CreatePost handles POST /v1/forum/posts
func CreatePost(fs ForumStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPostRequest
		if !decode(w, r, &req) {
			return
		}
		p, err := fs.CreatePost(r.Context(), req.Title, req.Content)
		respond(w, r, log, http.StatusCreated, mutationResponse{Found: true, Post: &p}, err)
	}
}

// VotePost handles POST /v1/forum/posts/{post_id}/{upvote|downvote}
func VotePost(fs ForumStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := forum.ParseVote(chi.URLParam(r, "vote"))
		if !ok {
			api.BadRequest(w, "INVALID_VOTE", "vote must be upvote or downvote", requestID(r), nil)
			return
		}
		postID := chi.URLParam(r, "post_id")
		f, err := fs.VotePost(r.Context(), postID, v)
		respond(w, r, log, http.StatusOK, postResult(f, postID), err)
	}
}

// AddComment handles POST /v1/forum/posts/{post_id}/comments
func AddComment(fs ForumStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req textRequest
		if !decode(w, r, &req) || !requireText(w, r, req.Text) {
			return
		}
		a, found, err := fs.AddComment(r.Context(), chi.URLParam(r, "post_id"), req.Text)
		respond(w, r, log, http.StatusCreated, addedResult(a, found), err)
	}
}

// VoteComment handles POST /v1/forum/posts/{post_id}/comments/{comment_id}/{upvote|downvote}
func VoteComment(fs ForumStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := forum.ParseVote(chi.URLParam(r, "vote"))
		if !ok {
			api.BadRequest(w, "INVALID_VOTE", "vote must be upvote or downvote", requestID(r), nil)
			return
		}
		postID := chi.URLParam(r, "post_id")
		commentID := chi.URLParam(r, "comment_id")
		f, err := fs.VoteComment(r.Context(), postID, commentID, v)

		resp := postResult(f, postID)
		if c, ok := forum.FindComment(f, postID, commentID); ok {
			resp.Comment = &c
		} else {
			resp = mutationResponse{}
		}
		respond(w, r, log, http.StatusOK, resp, err)
	}
}

// AddReply handles POST /v1/forum/posts/{post_id}/comments/{comment_id}/replies
func AddReply(fs ForumStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req textRequest
		if !decode(w, r, &req) || !requireText(w, r, req.Text) {
			return
		}
		postID, parentID := chi.URLParam(r, "post_id"), chi.URLParam(r, "comment_id")
		a, found, err := fs.AddReply(r.Context(), postID, parentID, req.Text)
		respond(w, r, log, http.StatusCreated, addedResult(a, found), err)
	}
}

func postResult(f forum.Forest, postID string) mutationResponse {
	p, ok := forum.FindPost(f, postID)
	if !ok {
		return mutationResponse{}
	}
	return mutationResponse{Found: true, Post: &p}
}

func addedResult(a forum.Added, found bool) mutationResponse {
	if !found {
		return mutationResponse{}
	}
	return mutationResponse{Found: true, Post: &a.Post, Comment: &a.Comment}
}

// respond writes resp, or a 503 when the mutation was applied in memory but
// could not be persisted. Unknown targets are not errors: they answer 200
// with found=false.
func respond(w http.ResponseWriter, r *http.Request, log *zap.Logger, okStatus int, resp mutationResponse, err error) {
	if err != nil {
		log.Warn("forum: mutation not persisted", zap.String("path", r.URL.Path),
			zap.String("request_id", requestID(r)), zap.Error(err))
		api.Unavailable(w, "STORAGE_UNAVAILABLE", "change applied but not persisted", requestID(r),
			map[string]any{"applied": true})
		return
	}
	status := okStatus
	if !resp.Found {
		status = http.StatusOK
	}
	api.WriteJSON(w, status, resp)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst); err != nil {
		api.BadRequest(w, "INVALID_JSON", "invalid JSON", requestID(r), nil)
		return false
	}
	return true
}

// requireText rejects blank comment and reply bodies.
func requireText(w http.ResponseWriter, r *http.Request, text string) bool {
	if strings.TrimSpace(text) == "" {
		api.BadRequest(w, "EMPTY_TEXT", "text must not be empty", requestID(r), nil)
		return false
	}
	return true
}

func requestID(r *http.Request) string {
	return httpserver.RequestIDFromContext(r.Context())
}
