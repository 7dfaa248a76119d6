package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/pkg/http/middleware"
)

func (rt *Router) appointmentRouter(r fiber.Router, auth fiber.Handler) {
	appointmentGroup := r.Group("/appointments", auth)
	{
		appointmentGroup.Post("/", rt.createAppointment)
		appointmentGroup.Get("/me", rt.listMyAppointments)
		appointmentGroup.Get("/", rt.listAppointments)
		appointmentGroup.Get("/:id", rt.getAppointment)
		appointmentGroup.Put("/:id", rt.updateAppointment)
		appointmentGroup.Delete("/:id", rt.cancelAppointment)
	}
}

func (rt *Router) createAppointment(c *fiber.Ctx) error {
	// validated by the service once the organization is defaulted
	var req model.CreateAppointmentReq
	if err := decode(c, &req); err != nil {
		return fail(c, err)
	}
	p := principal(c)
	if req.Organization == "" {
		req.Organization = p.Organization
	}

	a, err := rt.Services.Appointment.Create(c.UserContext(), p, &req)
	if err != nil {
		return fail(c, err)
	}
	c.Status(fiber.StatusCreated)
	c.Locals(middleware.DETAIL, a)
	return nil
}

func (rt *Router) listMyAppointments(c *fiber.Ctx) error {
	list, err := rt.Services.Appointment.ListMine(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, list)
	return nil
}

func (rt *Router) listAppointments(c *fiber.Ctx) error {
	list, err := rt.Services.Appointment.ListAll(c.UserContext(), principal(c), c.Query("college"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, list)
	return nil
}

func (rt *Router) getAppointment(c *fiber.Ctx) error {
	a, err := rt.Services.Appointment.Get(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, a)
	return nil
}

func (rt *Router) updateAppointment(c *fiber.Ctx) error {
	var req model.UpdateAppointmentReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	a, err := rt.Services.Appointment.Update(c.UserContext(), principal(c), c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, a)
	return nil
}

func (rt *Router) cancelAppointment(c *fiber.Ctx) error {
	a, err := rt.Services.Appointment.Cancel(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, a)
	return nil
}
