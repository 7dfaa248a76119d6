package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/pkg/http/middleware"
)

func (rt *Router) userRouter(r fiber.Router, auth fiber.Handler) {
	userGroup := r.Group("/users", auth)
	{
		userGroup.Get("/me", rt.getUserInfo)
		userGroup.Get("/", rt.listUsers)
		userGroup.Put("/:id/role", rt.setUserRole)
	}
}

func (rt *Router) getUserInfo(c *fiber.Ctx) error {
	info, err := rt.Services.Auth.Me(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, info)
	return nil
}

func (rt *Router) listUsers(c *fiber.Ctx) error {
	users, err := rt.Services.Auth.ListUsers(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, users)
	return nil
}

func (rt *Router) setUserRole(c *fiber.Ctx) error {
	var req model.SetRoleReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	info, err := rt.Services.Auth.SetRole(c.UserContext(), principal(c), c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, info)
	return nil
}
