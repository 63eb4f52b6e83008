package forum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// seeded builds:
//
//	p1: c1 -> [r1 -> [rr1], r2], c2
//	p2: c3
func seeded(t *testing.T) Forest {
	t.Helper()
	f := CreatePost(nil, "p1", "T1", "C1")
	f = CreatePost(f, "p2", "T2", "C2")
	f = AddComment(f, "c1", "p1", "first")
	f = AddComment(f, "c2", "p1", "second")
	f = AddComment(f, "c3", "p2", "other")
	f = AddReply(f, "r1", "p1", "c1", "reply one")
	f = AddReply(f, "r2", "p1", "c1", "reply two")
	f = AddReply(f, "rr1", "p1", "r1", "deep")
	return f
}

func TestCreatePost_AppendsInCallOrder(t *testing.T) {
	var f Forest
	for i, id := range []string{"a", "b", "c", "d"} {
		f = CreatePost(f, id, "title "+id, "content")
		require.Len(t, f, i+1)
	}
	for i, id := range []string{"a", "b", "c", "d"} {
		require.Equal(t, id, f[i].ID)
		require.Zero(t, f[i].Upvotes)
		require.Zero(t, f[i].Downvotes)
		require.NotNil(t, f[i].Comments)
		require.Empty(t, f[i].Comments)
	}
}

func TestCreatePost_DoesNotTouchInput(t *testing.T) {
	f := make(Forest, 1, 4)
	f[0] = newPost("a", "A", "")
	next := CreatePost(f, "b", "B", "")

	require.Len(t, f, 1)
	require.Len(t, next, 2)
	next[0].Title = "changed"
	require.Equal(t, "A", f[0].Title)
}

func TestUpvotePost_CountsAndLeavesOthers(t *testing.T) {
	f := seeded(t)
	orig := f
	for i := 0; i < 5; i++ {
		f = UpvotePost(f, "p1")
	}
	require.Equal(t, 5, f[0].Upvotes)
	require.Zero(t, f[0].Downvotes)
	require.Equal(t, orig[1], f[1])
	require.Same(t, &orig[1].Comments[0], &f[1].Comments[0])
	require.Zero(t, orig[0].Upvotes)
}

func TestDownvotePost(t *testing.T) {
	f := DownvotePost(seeded(t), "p2")
	require.Equal(t, 1, f[1].Downvotes)
	require.Zero(t, f[1].Upvotes)
}

func TestAddComment_SetsPostID(t *testing.T) {
	f := AddComment(seeded(t), "c4", "p2", "hi")
	c := f[1].Comments[1]
	require.Equal(t, "c4", c.ID)
	require.Equal(t, "p2", c.PostID)
	require.Equal(t, "hi", c.Text)
	require.Empty(t, c.Replies)
}

func TestUpvoteComment_AtAnyDepth(t *testing.T) {
	for _, id := range []string{"c1", "c2", "r1", "r2", "rr1"} {
		t.Run(id, func(t *testing.T) {
			orig := seeded(t)
			f := UpvoteComment(orig, "p1", id)

			got, ok := FindComment(f, "p1", id)
			require.True(t, ok)
			require.Equal(t, 1, got.Upvotes)

			before := ComputeStats(orig)
			after := ComputeStats(f)
			require.Equal(t, before.Upvotes+1, after.Upvotes)
			require.Equal(t, before.Comments, after.Comments)
			require.Equal(t, orig[1], f[1])
		})
	}
}

func TestUpvoteComment_SharesUntouchedSubtrees(t *testing.T) {
	orig := seeded(t)
	f := UpvoteComment(orig, "p1", "r2")

	// c2 is a sibling of the path and keeps its identity.
	require.Equal(t, orig[0].Comments[1], f[0].Comments[1])
	// rr1 hangs under r1, which is not on the path to r2.
	require.Same(t, &orig[0].Comments[0].Replies[0].Replies[0], &f[0].Comments[0].Replies[0].Replies[0])
	// The input is untouched.
	require.Zero(t, orig[0].Comments[0].Replies[1].Upvotes)
}

func TestDownvoteComment(t *testing.T) {
	f := DownvoteComment(seeded(t), "p1", "rr1")
	got, _ := FindComment(f, "p1", "rr1")
	require.Equal(t, 1, got.Downvotes)
	require.Zero(t, got.Upvotes)
}

func TestVoteComment_WrongPostIsNoop(t *testing.T) {
	orig := seeded(t)
	f := UpvoteComment(orig, "p2", "c1")
	require.Equal(t, orig, f)
}

func TestAddReply_AppendsAfterExisting(t *testing.T) {
	orig := seeded(t)
	f := AddReply(orig, "r3", "p1", "c1", "third")

	parent, ok := FindComment(f, "p1", "c1")
	require.True(t, ok)
	require.Len(t, parent.Replies, 3)
	require.Equal(t, orig[0].Comments[0].Replies, parent.Replies[:2])

	r := parent.Replies[2]
	require.Equal(t, "third", r.Text)
	require.Equal(t, "p1", r.PostID)
	require.Zero(t, r.Upvotes)
	require.Zero(t, r.Downvotes)
	require.Len(t, orig[0].Comments[0].Replies, 2)
}

func TestAddReply_DeepReplyKeepsRootPostID(t *testing.T) {
	f := AddReply(seeded(t), "x", "p1", "rr1", "deeper")
	got, ok := FindComment(f, "p1", "x")
	require.True(t, ok)
	require.Equal(t, "p1", got.PostID)
	require.Equal(t, 4, ComputeStats(f).MaxDepth)
}

func TestNoops_ReturnInputUnchanged(t *testing.T) {
	orig := seeded(t)
	cases := map[string]Forest{
		"upvote post":      UpvotePost(orig, "nonexistent"),
		"downvote post":    DownvotePost(orig, "nonexistent"),
		"add comment":      AddComment(orig, "z", "nonexistent", "x"),
		"upvote comment":   UpvoteComment(orig, "p1", "nonexistent"),
		"downvote comment": DownvoteComment(orig, "nonexistent", "c1"),
		"add reply":        AddReply(orig, "z", "p1", "nonexistent", "x"),
	}
	for name, f := range cases {
		require.Equal(t, orig, f, name)
		require.True(t, sameForest(orig, f), name)
	}
}

func TestScenario(t *testing.T) {
	f := CreatePost(Forest{}, "post", "T", "C")
	require.Len(t, f, 1)
	require.Zero(t, f[0].Upvotes)

	f = AddComment(f, "comment", "post", "nice")
	c := f[0].Comments[0]
	require.Equal(t, "nice", c.Text)
	require.Zero(t, c.Upvotes)
	require.Empty(t, c.Replies)

	f = AddReply(f, "reply", "post", "comment", "thanks")
	reply := f[0].Comments[0].Replies[0]
	require.Equal(t, "post", reply.PostID)

	f = UpvoteComment(f, "post", "reply")
	require.Equal(t, 1, f[0].Comments[0].Replies[0].Upvotes)
	require.Zero(t, f[0].Comments[0].Upvotes)
}

func TestRebuild_DuplicateIDHitsFirstInPreorder(t *testing.T) {
	nodes := []Comment{
		{ID: "a", Replies: []Comment{{ID: "dup"}}},
		{ID: "dup"},
	}
	out, changed := rebuild(nodes, "dup", func(c Comment) Comment {
		c.Upvotes++
		return c
	})
	require.True(t, changed)
	require.Equal(t, 1, out[0].Replies[0].Upvotes)
	require.Zero(t, out[1].Upvotes)
}

func TestParseVote(t *testing.T) {
	v, ok := ParseVote("up")
	require.True(t, ok)
	require.Equal(t, Upvote, v)

	v, ok = ParseVote("-1")
	require.True(t, ok)
	require.Equal(t, Downvote, v)

	_, ok = ParseVote("sideways")
	require.False(t, ok)
}
