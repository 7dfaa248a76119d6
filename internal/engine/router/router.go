package router

import (
	"errors"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/campuscare/campuscare/internal/engine/core"
	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/internal/engine/service"
	httpx "github.com/campuscare/campuscare/pkg/http"
	"github.com/campuscare/campuscare/pkg/http/middleware"
	"github.com/campuscare/campuscare/pkg/log"
	"github.com/campuscare/campuscare/pkg/metrics"
	"github.com/campuscare/campuscare/pkg/version"
	"github.com/campuscare/campuscare/pkg/ws"
)

/**
 * @file: router.go
 * @description: setup router
 *  		     public api under the internal context path, realtime on /ws
 */

const appName = "CampusCare"

type Router struct {
	Http       *httpx.Http
	Services   *service.Services
	Metrics    *metrics.Metrics
	SendBuffer int
	Logger     *zap.Logger
}

func NewRouter(httpConf *httpx.Http, services *service.Services, m *metrics.Metrics, sendBuffer int, logger *zap.Logger) *Router {
	return &Router{
		Http:       httpConf,
		Services:   services,
		Metrics:    m,
		SendBuffer: sendBuffer,
		Logger:     logger,
	}
}

func (rt *Router) Router() *fiber.App {
	app := fiber.New(rt.Http.FiberConfig(appName, errorHandler))

	app.Use(
		middleware.ExceptionMiddleware,
		middleware.RequestMiddleware(),
		middleware.RealIPMiddleware(),
		middleware.CorsMiddleware(rt.Http.CorsOrigins),
		rt.Metrics.Middleware(),
	)
	if rt.Http.AccessLog && rt.Logger != nil {
		app.Use(httpx.AccessLogFormat(rt.Logger))
	}
	app.Use(middleware.UnifiedResponseMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/version", func(c *fiber.Ctx) error {
		c.Locals(middleware.DETAIL, version.GetVersion())
		return nil
	})
	if rt.Http.ExposeMetrics && rt.Metrics != nil {
		app.Get("/metrics", rt.Metrics.Handler())
	}

	auth := middleware.AuthorizationMiddleware[model.Principal](rt.Services.Resolver.Resolve, fail)

	app.Get("/ws", rt.upgradeRequired, auth, ws.Handle(rt.Services.Broker, rt.Services.Stream, rt.SendBuffer))

	api := app.Group(rt.Http.InternalContextPath)
	{
		rt.authRouter(api)
		rt.userRouter(api, auth)
		rt.appointmentRouter(api, auth)
		rt.forumRouter(api, auth)
		rt.counsellorRouter(api, auth)
		rt.analyticsRouter(api, auth)
	}

	// 找不到路径时的处理, 必须在所有路由注册之后
	app.Use(func(c *fiber.Ctx) error {
		return httpx.WithRepErrMsg(c, fiber.StatusNotFound, httpx.NotFound, string(core.KindNotFound))
	})

	return app
}

func (rt *Router) upgradeRequired(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// strictJSON rejects unknown fields so typos surface as InvalidArgument.
var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

type validator interface {
	Validate() error
}

func decode(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(body) == 0 {
		return core.InvalidArgument("request body is required")
	}
	if err := strictJSON.Unmarshal(body, v); err != nil {
		return core.Wrap(core.KindInvalidArgument, err, "invalid request body")
	}
	return nil
}

// bind decodes the request body into v and validates it.
func bind(c *fiber.Ctx, v any) error {
	if err := decode(c, v); err != nil {
		return err
	}
	if val, ok := v.(validator); ok {
		return val.Validate()
	}
	return nil
}

func principal(c *fiber.Ctx) model.Principal {
	p, _ := c.Locals(middleware.PrincipalKey).(model.Principal)
	return p
}

// fail renders err with the status of its kind.
func fail(c *fiber.Ctx, err error) error {
	kind := core.KindOf(err)
	status, rep := statusOf(kind)

	msg := rep.Msg
	var ce *core.Error
	if kind != core.KindInternal && errors.As(err, &ce) && ce.Msg != "" {
		msg = ce.Msg
	}
	if kind == core.KindInternal {
		log.Errorw("request failed", "path", c.Path(), "method", c.Method(), "error", err)
	}
	return httpx.WithRepErr(c, status, rep.Code, string(kind), msg)
}

func statusOf(kind core.Kind) (int, *httpx.Response) {
	switch kind {
	case core.KindUnauthenticated:
		return fiber.StatusUnauthorized, httpx.Unauthorized
	case core.KindForbidden:
		return fiber.StatusForbidden, httpx.Forbidden
	case core.KindNotFound:
		return fiber.StatusNotFound, httpx.NotFound
	case core.KindInvalidArgument:
		return fiber.StatusBadRequest, httpx.BadRequest
	case core.KindInvalidTransition:
		return fiber.StatusConflict, httpx.InvalidTransition
	case core.KindConflict:
		return fiber.StatusConflict, httpx.Conflict
	}
	return fiber.StatusInternalServerError, httpx.InternalError
}

// errorHandler renders errors that escape the handlers, including fiber's own.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		kind := core.KindInternal
		switch {
		case fe.Code == fiber.StatusNotFound:
			kind = core.KindNotFound
		case fe.Code == fiber.StatusRequestEntityTooLarge, fe.Code < fiber.StatusInternalServerError:
			kind = core.KindInvalidArgument
		}
		return httpx.WithRepErr(c, fe.Code, fe.Code, string(kind), fe.Message)
	}
	return fail(c, err)
}
