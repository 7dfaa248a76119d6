package service

import (
	"context"
	"strings"
	"time"

	"github.com/campuscare/campuscare/internal/engine/core"
	"github.com/campuscare/campuscare/internal/engine/guard"
	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/internal/engine/repo"
	"github.com/campuscare/campuscare/pkg/id"
	"github.com/campuscare/campuscare/pkg/log"
	"github.com/campuscare/campuscare/pkg/metrics"
	"github.com/campuscare/campuscare/pkg/safe"
)

/**
 * @file: service_forum.go
 * @description: forum posts, comments and upvotes
 */

const publishTimeout = 5 * time.Second

type ForumService struct {
	posts     repo.IForumRepository
	guard     *guard.Guard
	publisher ForumPublisher
	metrics   *metrics.Metrics
}

func NewForumService(posts repo.IForumRepository, g *guard.Guard, publisher ForumPublisher, m *metrics.Metrics) *ForumService {
	return &ForumService{
		posts:     posts,
		guard:     g,
		publisher: publisher,
		metrics:   m,
	}
}

// CreatePost stores a post authored by p. The organization defaults to the
// principal's own.
func (fs *ForumService) CreatePost(ctx context.Context, p model.Principal, req *model.CreatePostReq) (*model.ForumPostView, error) {
	if p.ID == "" {
		return nil, core.Unauthenticated("authentication required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	org := req.Organization
	if org == "" {
		org = p.Organization
	}
	if org == "" {
		return nil, core.InvalidArgument("organization is required")
	}
	if err := check(fs.metrics, fs.guard.AuthorizeOrganization(p, org)); err != nil {
		return nil, err
	}

	now := time.Now()
	post := &model.ForumPost{
		ID:           id.GetUUID(),
		Organization: org,
		AuthorID:     p.ID,
		Title:        req.Title,
		Body:         strings.TrimSpace(req.Body),
		Tags:         normalizeTags(req.Tags),
		Anonymous:    req.Anonymous,
		Comments:     []model.Comment{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := fs.posts.Create(ctx, post); err != nil {
		log.Errorw("failed to create forum post", "author", p.ID, "error", err)
		return nil, err
	}

	fs.publish(model.NewForumEvent(model.ForumPostCreated, post))
	view := post.View()
	return &view, nil
}

// List returns the newest posts of org, which defaults to the principal's
// organization.
func (fs *ForumService) List(ctx context.Context, p model.Principal, org string) ([]model.ForumPostView, error) {
	if org == "" {
		org = p.Organization
	}
	if err := check(fs.metrics, fs.guard.AuthorizeOrganization(p, org)); err != nil {
		return nil, err
	}
	posts, err := fs.posts.List(ctx, org, model.MaxForumListLimit)
	if err != nil {
		return nil, err
	}
	return model.ForumPostViews(posts), nil
}

func (fs *ForumService) Get(ctx context.Context, p model.Principal, id string) (*model.ForumPostView, error) {
	post, err := fs.posts.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := check(fs.metrics, fs.guard.AuthorizeOrganization(p, post.Organization)); err != nil {
		return nil, err
	}
	view := post.View()
	return &view, nil
}

func (fs *ForumService) Comment(ctx context.Context, p model.Principal, id string, req *model.CommentReq) (*model.ForumPostView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	post, err := fs.posts.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := check(fs.metrics, fs.guard.CanComment(p, post)); err != nil {
		return nil, err
	}

	updated, err := fs.posts.AppendComment(ctx, id, model.Comment{
		AuthorID:  p.ID,
		Text:      strings.TrimSpace(req.Text),
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	fs.publish(model.NewForumEvent(model.ForumPostCommented, updated))
	view := updated.View()
	return &view, nil
}

// Upvote increments the counter atomically. Repeated upvotes by the same
// principal all count.
func (fs *ForumService) Upvote(ctx context.Context, p model.Principal, id string) (*model.UpvoteResp, error) {
	post, err := fs.posts.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := check(fs.metrics, fs.guard.AuthorizeOrganization(p, post.Organization)); err != nil {
		return nil, err
	}

	updated, err := fs.posts.IncrementUpvotes(ctx, id)
	if err != nil {
		return nil, err
	}

	fs.publish(model.NewForumEvent(model.ForumPostUpvoted, updated))
	return &model.UpvoteResp{Upvotes: updated.Upvotes}, nil
}

func (fs *ForumService) DeletePost(ctx context.Context, p model.Principal, id string) error {
	post, err := fs.posts.GetById(ctx, id)
	if err != nil {
		return err
	}
	if err := check(fs.metrics, fs.guard.Authorize(p, guard.ActionDelete, post)); err != nil {
		return err
	}
	if err := fs.posts.Delete(ctx, id); err != nil {
		return err
	}

	log.Infow("forum post deleted", "id", id, "by", p.ID)
	fs.publish(model.NewForumEvent(model.ForumPostDeleted, post))
	return nil
}

// publish hands the event off without waiting for delivery. Each event is
// sent from its own goroutine, so subscribers may see events for one post out
// of order (an upvote before the create, a comment after the delete).
// OccurredAt and the absolute upvote count let clients reconcile.
func (fs *ForumService) publish(evt model.ForumEvent) {
	fs.metrics.ForumEvent(string(evt.Kind))
	if fs.publisher == nil {
		return
	}
	safe.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := fs.publisher.Publish(ctx, evt); err != nil {
			log.Errorw("failed to publish forum event",
				"kind", evt.Kind,
				"postId", evt.PostID,
				"organization", evt.Organization,
				"error", err,
			)
		}
	})
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
