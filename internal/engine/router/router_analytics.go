package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuscare/campuscare/pkg/http/middleware"
)

func (rt *Router) analyticsRouter(r fiber.Router, auth fiber.Handler) {
	analyticsGroup := r.Group("/analytics", auth)
	{
		analyticsGroup.Get("/", rt.listSnapshots)
		analyticsGroup.Get("/snapshot", rt.takeSnapshot)
	}
}

func (rt *Router) listSnapshots(c *fiber.Ctx) error {
	list, err := rt.Services.Analytics.List(c.UserContext(), principal(c), c.Query("college"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, list)
	return nil
}

func (rt *Router) takeSnapshot(c *fiber.Ctx) error {
	snapshot, err := rt.Services.Analytics.Snapshot(c.UserContext(), principal(c), c.Query("college"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, snapshot)
	return nil
}
