package http

import (
	"github.com/gofiber/fiber/v2"
)

type ResponseErr struct {
	ErrCode int    `json:"code"`
	ErrMsg  any    `json:"errMsg"`
	Kind    string `json:"kind,omitempty"`
	Path    string `json:"path,omitempty"`
}

// WithRepErr writes an error body with the given HTTP status.
func WithRepErr(c *fiber.Ctx, status int, code int, kind string, errMsg string) error {
	return c.Status(status).JSON(ResponseErr{
		ErrCode: code,
		ErrMsg:  errMsg,
		Kind:    kind,
		Path:    c.Path(),
	})
}

// WithRepErrMsg 返回错误信息
func WithRepErrMsg(c *fiber.Ctx, status int, rep *Response, kind string) error {
	return WithRepErr(c, status, rep.Code, kind, rep.Msg)
}
