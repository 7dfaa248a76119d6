package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/pkg/http/middleware"
)

/**
 * @file: router_forum.go
 * @description: forum router
 */

func (rt *Router) forumRouter(r fiber.Router, auth fiber.Handler) {
	forumGroup := r.Group("/forum", auth)
	{
		forumGroup.Post("/", rt.createPost)
		forumGroup.Get("/", rt.listPosts)
		forumGroup.Get("/:id", rt.getPost)
		forumGroup.Post("/:id/comment", rt.commentPost)
		forumGroup.Post("/:id/upvote", rt.upvotePost)
		forumGroup.Delete("/:id", rt.deletePost)
	}
}

func (rt *Router) createPost(c *fiber.Ctx) error {
	var req model.CreatePostReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	post, err := rt.Services.Forum.CreatePost(c.UserContext(), principal(c), &req)
	if err != nil {
		return fail(c, err)
	}
	c.Status(fiber.StatusCreated)
	c.Locals(middleware.DETAIL, post)
	return nil
}

func (rt *Router) listPosts(c *fiber.Ctx) error {
	posts, err := rt.Services.Forum.List(c.UserContext(), principal(c), c.Query("college"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, posts)
	return nil
}

func (rt *Router) getPost(c *fiber.Ctx) error {
	post, err := rt.Services.Forum.Get(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, post)
	return nil
}

func (rt *Router) commentPost(c *fiber.Ctx) error {
	var req model.CommentReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	post, err := rt.Services.Forum.Comment(c.UserContext(), principal(c), c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	c.Status(fiber.StatusCreated)
	c.Locals(middleware.DETAIL, post)
	return nil
}

func (rt *Router) upvotePost(c *fiber.Ctx) error {
	resp, err := rt.Services.Forum.Upvote(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, resp)
	return nil
}

func (rt *Router) deletePost(c *fiber.Ctx) error {
	if err := rt.Services.Forum.DeletePost(c.UserContext(), principal(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.OPERATION, true)
	return nil
}
