package forum

// The functions in this file are pure: they never write through their
// arguments. A result shares every untouched post and subtree with its input,
// and an unmatched id returns the input forest itself.

// CreatePost appends a new post with zero votes and no comments.
func CreatePost(f Forest, id, title, content string) Forest {
	return appendPost(f, newPost(id, title, content))
}

// UpvotePost increments the upvotes of the post with postID.
func UpvotePost(f Forest, postID string) Forest {
	return VotePost(f, postID, Upvote)
}

// DownvotePost increments the downvotes of the post with postID.
func DownvotePost(f Forest, postID string) Forest {
	return VotePost(f, postID, Downvote)
}

// VotePost applies v to the post with postID.
func VotePost(f Forest, postID string, v Vote) Forest {
	return updatePost(f, postID, func(p Post) (Post, bool) {
		switch v {
		case Upvote:
			p.Upvotes++
		case Downvote:
			p.Downvotes++
		default:
			return p, false
		}
		return p, true
	})
}

// AddComment appends a top-level comment to the post with postID.
func AddComment(f Forest, id, postID, text string) Forest {
	return updatePost(f, postID, func(p Post) (Post, bool) {
		p.Comments = appendComment(p.Comments, newComment(id, p.ID, text))
		return p, true
	})
}

// UpvoteComment increments the upvotes of commentID anywhere under postID.
func UpvoteComment(f Forest, postID, commentID string) Forest {
	return VoteComment(f, postID, commentID, Upvote)
}

// DownvoteComment increments the downvotes of commentID anywhere under postID.
func DownvoteComment(f Forest, postID, commentID string) Forest {
	return VoteComment(f, postID, commentID, Downvote)
}

// VoteComment applies v to commentID anywhere under postID.
func VoteComment(f Forest, postID, commentID string, v Vote) Forest {
	if v != Upvote && v != Downvote {
		return f
	}
	return updateComment(f, postID, commentID, func(c Comment) Comment {
		if v == Upvote {
			c.Upvotes++
		} else {
			c.Downvotes++
		}
		return c
	})
}

// AddReply appends a reply to parentID anywhere under postID. The reply's
// PostID is the post's id, not the parent's.
func AddReply(f Forest, id, postID, parentID, text string) Forest {
	return updateComment(f, postID, parentID, func(c Comment) Comment {
		c.Replies = appendComment(c.Replies, newComment(id, postID, text))
		return c
	})
}

// FindPost returns the post with postID.
func FindPost(f Forest, postID string) (Post, bool) {
	if i := indexOfPost(f, postID); i >= 0 {
		return f[i], true
	}
	return Post{}, false
}

// FindComment returns the first comment matching commentID in pre-order
// under postID.
func FindComment(f Forest, postID, commentID string) (Comment, bool) {
	p, ok := FindPost(f, postID)
	if !ok {
		return Comment{}, false
	}
	return findComment(p.Comments, commentID)
}

func findComment(nodes []Comment, id string) (Comment, bool) {
	for _, c := range nodes {
		if c.ID == id {
			return c, true
		}
		if found, ok := findComment(c.Replies, id); ok {
			return found, true
		}
	}
	return Comment{}, false
}

func updatePost(f Forest, postID string, fn func(Post) (Post, bool)) Forest {
	i := indexOfPost(f, postID)
	if i < 0 {
		return f
	}
	p, changed := fn(f[i])
	if !changed {
		return f
	}
	out := make(Forest, len(f))
	copy(out, f)
	out[i] = p
	return out
}

func updateComment(f Forest, postID, commentID string, fn func(Comment) Comment) Forest {
	return updatePost(f, postID, func(p Post) (Post, bool) {
		comments, changed := rebuild(p.Comments, commentID, fn)
		if !changed {
			return p, false
		}
		p.Comments = comments
		return p, true
	})
}

// rebuild walks nodes in pre-order and applies fn to the first node whose id
// is target. Only the path to that node is copied; the returned slice is
// nodes itself when nothing matched.
func rebuild(nodes []Comment, target string, fn func(Comment) Comment) ([]Comment, bool) {
	for i, c := range nodes {
		var next Comment
		if c.ID == target {
			next = fn(c)
		} else {
			replies, changed := rebuild(c.Replies, target, fn)
			if !changed {
				continue
			}
			next = c
			next.Replies = replies
		}
		out := make([]Comment, len(nodes))
		copy(out, nodes)
		out[i] = next
		return out, true
	}
	return nodes, false
}

func indexOfPost(f Forest, postID string) int {
	for i := range f {
		if f[i].ID == postID {
			return i
		}
	}
	return -1
}

func appendPost(f Forest, p Post) Forest {
	out := make(Forest, len(f), len(f)+1)
	copy(out, f)
	return append(out, p)
}

func appendComment(nodes []Comment, c Comment) []Comment {
	out := make([]Comment, len(nodes), len(nodes)+1)
	copy(out, nodes)
	return append(out, c)
}
