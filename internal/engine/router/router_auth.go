package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/pkg/http/middleware"
)

/**
 * @file: router_auth.go
 * @description: registration and login, no authentication required
 */

func (rt *Router) authRouter(r fiber.Router) {
	authGroup := r.Group("/auth")
	{
		authGroup.Post("/register", rt.register)
		authGroup.Post("/login", rt.login)
		authGroup.Post("/refresh", rt.refresh)
	}
}

func (rt *Router) register(c *fiber.Ctx) error {
	var req model.RegisterReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	resp, err := rt.Services.Auth.Register(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}

	c.Status(fiber.StatusCreated)
	c.Locals(middleware.DETAIL, resp)
	return nil
}

func (rt *Router) login(c *fiber.Ctx) error {
	var req model.LoginReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	resp, err := rt.Services.Auth.Login(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}

	c.Locals(middleware.DETAIL, resp)
	return nil
}

func (rt *Router) refresh(c *fiber.Ctx) error {
	var req model.RefreshReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	resp, err := rt.Services.Auth.Refresh(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}

	c.Locals(middleware.DETAIL, resp)
	return nil
}
