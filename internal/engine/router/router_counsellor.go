package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/pkg/http/middleware"
)

func (rt *Router) counsellorRouter(r fiber.Router, auth fiber.Handler) {
	counsellorGroup := r.Group("/counsellors", auth)
	{
		counsellorGroup.Get("/", rt.listCounsellors)
		counsellorGroup.Post("/", rt.createCounsellor)
		counsellorGroup.Get("/:id", rt.getCounsellor)
		counsellorGroup.Put("/:id", rt.updateCounsellor)
		counsellorGroup.Delete("/:id", rt.deleteCounsellor)
	}
}

func (rt *Router) listCounsellors(c *fiber.Ctx) error {
	list, err := rt.Services.Counsellor.List(c.UserContext(), principal(c), c.Query("college"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, list)
	return nil
}

// counsellorReq decodes without validating: the service fills in the
// organization first.
func counsellorReq(c *fiber.Ctx) (*model.CounsellorReq, error) {
	var req model.CounsellorReq
	if err := decode(c, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (rt *Router) createCounsellor(c *fiber.Ctx) error {
	req, err := counsellorReq(c)
	if err != nil {
		return fail(c, err)
	}
	counsellor, err := rt.Services.Counsellor.Create(c.UserContext(), principal(c), req)
	if err != nil {
		return fail(c, err)
	}
	c.Status(fiber.StatusCreated)
	c.Locals(middleware.DETAIL, counsellor)
	return nil
}

func (rt *Router) getCounsellor(c *fiber.Ctx) error {
	counsellor, err := rt.Services.Counsellor.Get(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, counsellor)
	return nil
}

func (rt *Router) updateCounsellor(c *fiber.Ctx) error {
	req, err := counsellorReq(c)
	if err != nil {
		return fail(c, err)
	}
	counsellor, err := rt.Services.Counsellor.Update(c.UserContext(), principal(c), c.Params("id"), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, counsellor)
	return nil
}

func (rt *Router) deleteCounsellor(c *fiber.Ctx) error {
	if err := rt.Services.Counsellor.Delete(c.UserContext(), principal(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.OPERATION, true)
	return nil
}
