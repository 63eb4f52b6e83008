package forum

import (
	"errors"
	"fmt"
)

// ErrInvalidForest is wrapped by every Validate failure.
var ErrInvalidForest = errors.New("invalid forest")

// Validate checks the invariants a stored forest must satisfy: ids are
// non-empty and unique across posts and comments, every comment carries its
// root post's id, and counters are non-negative.
func Validate(f Forest) error {
	seen := make(map[string]struct{})
	claim := func(id string) error {
		if id == "" {
			return fmt.Errorf("%w: empty id", ErrInvalidForest)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidForest, id)
		}
		seen[id] = struct{}{}
		return nil
	}

	for _, p := range f {
		if err := claim(p.ID); err != nil {
			return err
		}
		if p.Upvotes < 0 || p.Downvotes < 0 {
			return fmt.Errorf("%w: negative votes on post %q", ErrInvalidForest, p.ID)
		}
		if err := validateComments(p.ID, p.Comments, claim); err != nil {
			return err
		}
	}
	return nil
}

func validateComments(postID string, nodes []Comment, claim func(string) error) error {
	for _, c := range nodes {
		if err := claim(c.ID); err != nil {
			return err
		}
		if c.PostID != postID {
			return fmt.Errorf("%w: comment %q has postId %q, want %q", ErrInvalidForest, c.ID, c.PostID, postID)
		}
		if c.Upvotes < 0 || c.Downvotes < 0 {
			return fmt.Errorf("%w: negative votes on comment %q", ErrInvalidForest, c.ID)
		}
		if err := validateComments(postID, c.Replies, claim); err != nil {
			return err
		}
	}
	return nil
}

// Normalize returns f with every nil comment or reply list replaced by an
// empty one. Subtrees that are already normalized are shared, not copied.
func Normalize(f Forest) Forest {
	if f == nil {
		return Forest{}
	}
	var out Forest
	for i, p := range f {
		comments, changed := normalizeComments(p.Comments)
		if !changed {
			continue
		}
		if out == nil {
			out = make(Forest, len(f))
			copy(out, f)
		}
		out[i].Comments = comments
	}
	if out == nil {
		return f
	}
	return out
}

func normalizeComments(nodes []Comment) ([]Comment, bool) {
	if nodes == nil {
		return []Comment{}, true
	}
	var out []Comment
	for i, c := range nodes {
		replies, changed := normalizeComments(c.Replies)
		if !changed {
			continue
		}
		if out == nil {
			out = make([]Comment, len(nodes))
			copy(out, nodes)
		}
		out[i].Replies = replies
	}
	if out == nil {
		return nodes, false
	}
	return out, true
}
