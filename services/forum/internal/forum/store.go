package forum

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Persister loads and saves the whole forest as one unit.
type Persister interface {
	Load(ctx context.Context) (Forest, error)
	Save(ctx context.Context, f Forest) error
}

// Event describes a mutation that was applied to the forest.
type Event struct {
	Op        string
	PostID    string
	CommentID string
	ParentID  string
	Changed   bool
}

// Observer is notified after every mutation, once the save has been attempted.
type Observer func(ctx context.Context, ev Event)

// Store owns the forest. Mutations are serialised, run to completion and are
// followed by a synchronous save of the full forest.
type Store struct {
	mu       sync.Mutex
	forest   Forest
	persist  Persister
	ids      IDGenerator
	log      *zap.Logger
	observer Observer
}

type Option func(*Store)

func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// NewStore builds a store from whatever p.Load returns. Load failures are
// logged and the store starts from the empty forest Load handed back.
func NewStore(ctx context.Context, p Persister, opts ...Option) *Store {
	s := &Store{persist: p, ids: UUIDGenerator{}, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}

	f, err := p.Load(ctx)
	if err != nil {
		s.log.Warn("forum: load failed, starting empty", zap.Error(err))
		loadsTotal.WithLabelValues("failed").Inc()
	} else {
		loadsTotal.WithLabelValues("ok").Inc()
	}
	if f == nil {
		f = Forest{}
	}
	s.forest = f
	if seeder, ok := s.ids.(Seeder); ok {
		seeder.Seed(f)
	}
	s.log.Info("forum: store ready", zap.Int("posts", len(f)))
	return s
}

// Forest returns the current forest. Callers must treat it as read-only.
func (s *Store) Forest() Forest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forest
}

// Post returns the post with id.
func (s *Store) Post(id string) (Post, bool) {
	return FindPost(s.Forest(), id)
}

func (s *Store) CreatePost(ctx context.Context, title, content string) (Post, error) {
	id := s.ids.NewID()
	f, err := s.mutate(ctx, Event{Op: "create_post", PostID: id}, func(f Forest) Forest {
		return CreatePost(f, id, title, content)
	})
	p, _ := FindPost(f, id)
	return p, err
}

func (s *Store) UpvotePost(ctx context.Context, postID string) (Forest, error) {
	return s.VotePost(ctx, postID, Upvote)
}

func (s *Store) DownvotePost(ctx context.Context, postID string) (Forest, error) {
	return s.VotePost(ctx, postID, Downvote)
}

func (s *Store) VotePost(ctx context.Context, postID string, v Vote) (Forest, error) {
	return s.mutate(ctx, Event{Op: v.String() + "_post", PostID: postID}, func(f Forest) Forest {
		return VotePost(f, postID, v)
	})
}

// Added is the new comment or reply together with its post, both read from
// the forest that was saved.
type Added struct {
	Post    Post
	Comment Comment
}

// AddComment returns the new comment, or false when postID does not exist.
func (s *Store) AddComment(ctx context.Context, postID, text string) (Added, bool, error) {
	id := s.ids.NewID()
	f, err := s.mutate(ctx, Event{Op: "add_comment", PostID: postID, CommentID: id}, func(f Forest) Forest {
		return AddComment(f, id, postID, text)
	})
	a, ok := added(f, postID, id)
	return a, ok, err
}

func (s *Store) UpvoteComment(ctx context.Context, postID, commentID string) (Forest, error) {
	return s.VoteComment(ctx, postID, commentID, Upvote)
}

func (s *Store) DownvoteComment(ctx context.Context, postID, commentID string) (Forest, error) {
	return s.VoteComment(ctx, postID, commentID, Downvote)
}

func (s *Store) VoteComment(ctx context.Context, postID, commentID string, v Vote) (Forest, error) {
	ev := Event{Op: v.String() + "_comment", PostID: postID, CommentID: commentID}
	return s.mutate(ctx, ev, func(f Forest) Forest {
		return VoteComment(f, postID, commentID, v)
	})
}

// AddReply returns the new reply, or false when either id does not exist.
func (s *Store) AddReply(ctx context.Context, postID, parentID, text string) (Added, bool, error) {
	id := s.ids.NewID()
	ev := Event{Op: "add_reply", PostID: postID, CommentID: id, ParentID: parentID}
	f, err := s.mutate(ctx, ev, func(f Forest) Forest {
		return AddReply(f, id, postID, parentID, text)
	})
	a, ok := added(f, postID, id)
	return a, ok, err
}

func added(f Forest, postID, commentID string) (Added, bool) {
	c, ok := FindComment(f, postID, commentID)
	if !ok {
		return Added{}, false
	}
	p, _ := FindPost(f, postID)
	return Added{Post: p, Comment: c}, true
}

// Stats summarises the current forest.
func (s *Store) Stats() Stats {
	return ComputeStats(s.Forest())
}

// Close writes the current forest one last time.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

// mutate swaps in the next forest and saves it. The in-memory forest is kept
// even when the save fails; the error is returned to the caller.
func (s *Store) mutate(ctx context.Context, ev Event, fn func(Forest) Forest) (Forest, error) {
	s.mu.Lock()
	prev := s.forest
	next := fn(prev)
	s.forest = next
	err := s.save(ctx)
	s.mu.Unlock()

	ev.Changed = !sameForest(prev, next)
	mutationsTotal.WithLabelValues(ev.Op, changedLabel(ev.Changed)).Inc()
	if !ev.Changed {
		s.log.Debug("forum: target not found", zap.String("op", ev.Op),
			zap.String("post_id", ev.PostID), zap.String("comment_id", ev.CommentID),
			zap.String("parent_id", ev.ParentID))
	}
	if s.observer != nil {
		s.observer(ctx, ev)
	}
	return next, err
}

func (s *Store) save(ctx context.Context) error {
	if err := s.persist.Save(ctx, s.forest); err != nil {
		savesTotal.WithLabelValues("failed").Inc()
		s.log.Warn("forum: save failed, continuing unpersisted", zap.Error(err))
		return err
	}
	savesTotal.WithLabelValues("ok").Inc()
	return nil
}

// sameForest reports whether b is the very slice a, which is how the pure
// operations signal an identity no-op.
func sameForest(a, b Forest) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}

func changedLabel(changed bool) string {
	if changed {
		return "changed"
	}
	return "noop"
}
