package model

import (
	"strings"
	"time"

	"github.com/campuscare/campuscare/internal/engine/core"
)

/**
 * @file: model_forum.go
 * @description: forum post model
 */

const MaxForumListLimit = 100

type Comment struct {
	AuthorID  string    `bson:"authorId" json:"authorId"`
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type ForumPost struct {
	ID           string    `bson:"_id" json:"id"`
	Organization string    `bson:"collegeName" json:"organization"`
	AuthorID     string    `bson:"authorId" json:"authorId"`
	Title        string    `bson:"title,omitempty" json:"title,omitempty"`
	Body         string    `bson:"body" json:"body"`
	Tags         []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	Anonymous    bool      `bson:"isAnonymous" json:"anonymous"`
	Upvotes      int64     `bson:"upvotes" json:"upvotes"`
	Comments     []Comment `bson:"comments" json:"comments"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (p *ForumPost) ResourceOwner() string        { return p.AuthorID }
func (p *ForumPost) ResourceOrganization() string { return p.Organization }

// View returns the externally visible form of the post. Anonymous posts never
// expose their author.
func (p *ForumPost) View() ForumPostView {
	v := ForumPostView{
		ID:           p.ID,
		Organization: p.Organization,
		Title:        p.Title,
		Body:         p.Body,
		Tags:         append([]string(nil), p.Tags...),
		Anonymous:    p.Anonymous,
		Upvotes:      p.Upvotes,
		Comments:     make([]Comment, len(p.Comments)),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	copy(v.Comments, p.Comments)
	if !p.Anonymous {
		v.AuthorID = p.AuthorID
		return v
	}
	for i := range v.Comments {
		if v.Comments[i].AuthorID == p.AuthorID {
			v.Comments[i].AuthorID = ""
		}
	}
	return v
}

type ForumPostView struct {
	ID           string    `json:"id"`
	Organization string    `json:"organization"`
	AuthorID     string    `json:"authorId,omitempty"`
	Title        string    `json:"title,omitempty"`
	Body         string    `json:"body"`
	Tags         []string  `json:"tags,omitempty"`
	Anonymous    bool      `json:"anonymous"`
	Upvotes      int64     `json:"upvotes"`
	Comments     []Comment `json:"comments"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func ForumPostViews(posts []*ForumPost) []ForumPostView {
	views := make([]ForumPostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, p.View())
	}
	return views
}

type CreatePostReq struct {
	Organization string   `json:"organization,omitempty"`
	Title        string   `json:"title,omitempty"`
	Body         string   `json:"body"`
	Tags         []string `json:"tags,omitempty"`
	Anonymous    bool     `json:"anonymous,omitempty"`
}

func (r *CreatePostReq) Validate() error {
	r.Organization = strings.TrimSpace(r.Organization)
	r.Title = strings.TrimSpace(r.Title)
	if strings.TrimSpace(r.Body) == "" {
		return core.InvalidArgument("body is required")
	}
	return nil
}

type CommentReq struct {
	Text string `json:"text"`
}

func (r *CommentReq) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return core.InvalidArgument("text is required")
	}
	return nil
}

type UpvoteResp struct {
	Upvotes int64 `json:"upvotes"`
}
