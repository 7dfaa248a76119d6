package model

import "time"

/**
 * @file: model_event.go
 * @description: realtime forum events
 */

type ForumEventKind string

const (
	ForumPostCreated   ForumEventKind = "created"
	ForumPostCommented ForumEventKind = "commented"
	ForumPostUpvoted   ForumEventKind = "upvoted"
	ForumPostDeleted   ForumEventKind = "deleted"
)

// ForumEvent is what subscribers of an organization channel receive. It is
// derived from a ForumPostView so anonymous authors stay hidden.
type ForumEvent struct {
	Kind         ForumEventKind `json:"kind"`
	Organization string         `json:"organization"`
	PostID       string         `json:"postId"`
	Post         *ForumPostView `json:"post,omitempty"`
	Comment      *Comment       `json:"comment,omitempty"`
	Upvotes      int64          `json:"upvotes,omitempty"`
	OccurredAt   time.Time      `json:"occurredAt"`
}

func NewForumEvent(kind ForumEventKind, post *ForumPost) ForumEvent {
	evt := ForumEvent{
		Kind:         kind,
		Organization: post.Organization,
		PostID:       post.ID,
		OccurredAt:   time.Now(),
	}
	switch kind {
	case ForumPostCreated:
		v := post.View()
		evt.Post = &v
	case ForumPostCommented:
		v := post.View()
		if n := len(v.Comments); n > 0 {
			evt.Comment = &v.Comments[n-1]
		}
	case ForumPostUpvoted:
		evt.Upvotes = post.Upvotes
	}
	return evt
}
