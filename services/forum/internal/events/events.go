// Package events forwards forum mutations to the analytics stream.
package events

import (
	"context"
	"strings"

	"github.com/example/learnhub/internal/platform/analytics"
	"github.com/example/learnhub/services/forum/internal/forum"
)

// Publisher is satisfied by *analytics.Publisher.
type Publisher interface {
	Publish(subject, eventName, userID string, props map[string]any)
}

// Observer returns a forum.Observer that publishes one analytics event per
// mutation. Mutations whose target was not found are reported on a separate
// subject so dashboards can spot stale clients.
func Observer(p Publisher) forum.Observer {
	return func(_ context.Context, ev forum.Event) {
		props := map[string]any{"op": ev.Op, "post_id": ev.PostID}
		// A failed add never created its comment, so its id is not reported.
		if ev.CommentID != "" && (ev.Changed || !isAdd(ev.Op)) {
			props["comment_id"] = ev.CommentID
		}
		if ev.ParentID != "" {
			props["parent_id"] = ev.ParentID
		}
		if !ev.Changed {
			p.Publish(analytics.SubjectForumUnknownTarget, "forum.unknown_target", "", props)
			return
		}
		subject := SubjectFor(ev.Op)
		if subject == "" {
			return
		}
		p.Publish(subject, "forum."+ev.Op, "", props)
	}
}

func isAdd(op string) bool {
	return op == "add_comment" || op == "add_reply"
}

// SubjectFor maps a forum operation name to its analytics subject.
func SubjectFor(op string) string {
	switch {
	case op == "create_post":
		return analytics.SubjectForumPostCreated
	case op == "add_comment":
		return analytics.SubjectForumCommentAdded
	case op == "add_reply":
		return analytics.SubjectForumReplyAdded
	case strings.HasSuffix(op, "_post"):
		return analytics.SubjectForumPostVoted
	case strings.HasSuffix(op, "_comment"):
		return analytics.SubjectForumCommentVoted
	default:
		return ""
	}
}
