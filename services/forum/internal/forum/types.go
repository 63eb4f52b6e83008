package forum

// Post is a top-level forum entry and the root of its own comment tree.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
	Comments  []Comment `json:"comments"`
}

// Comment is a comment under a post or a reply under another comment.
// PostID always names the root post, whatever the nesting depth.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Text      string    `json:"text"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
	Replies   []Comment `json:"replies"`
}

// Forest is the ordered collection of posts.
type Forest []Post

// Vote selects which counter a vote operation increments.
type Vote int

const (
	Upvote Vote = iota + 1
	Downvote
)

func (v Vote) String() string {
	switch v {
	case Upvote:
		return "upvote"
	case Downvote:
		return "downvote"
	default:
		return "unknown"
	}
}

// ParseVote accepts "up"/"upvote"/"1" and "down"/"downvote"/"-1".
func ParseVote(s string) (Vote, bool) {
	switch s {
	case "up", "upvote", "1":
		return Upvote, true
	case "down", "downvote", "-1":
		return Downvote, true
	}
	return 0, false
}

func newPost(id, title, content string) Post {
	return Post{ID: id, Title: title, Content: content, Comments: []Comment{}}
}

func newComment(id, postID, text string) Comment {
	return Comment{ID: id, PostID: postID, Text: text, Replies: []Comment{}}
}
