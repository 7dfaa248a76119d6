package http

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AccessLogFormat logs one structured line per request.
func AccessLogFormat(log *zap.Logger) fiber.Handler {
	sugar := log.Sugar()
	// tips: 这里的路径是不需要记录日志的路径，url为端口后的全部路径
	excludedPaths := map[string]bool{
		"/health":  true,
		"/metrics": true,
	}

	return func(c *fiber.Ctx) error {
		if excludedPaths[c.Path()] {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		queryStr := ""
		if query := redactQuery(c.Context().QueryArgs().String()); query != "" {
			queryStr = "?" + query
		}

		status := c.Response().StatusCode()
		logw := sugar.Infow
		switch {
		case status >= fiber.StatusInternalServerError:
			logw = sugar.Errorw
		case status >= fiber.StatusBadRequest:
			logw = sugar.Warnw
		}
		logw("HTTP request",
			"method", c.Method(),
			"path", c.Path(),
			"query", queryStr,
			"status", status,
			"ip", clientIP(c),
			"request_id", c.Locals("request_id"),
			"user_agent", c.Get("User-Agent"),
			"latency", latency.String(),
		)

		return err
	}
}

// clientIP prefers the address recorded by the real-ip middleware.
func clientIP(c *fiber.Ctx) string {
	if ip, ok := c.Locals("ip").(string); ok && ip != "" {
		return ip
	}
	return c.IP()
}

// redactQuery hides the token parameter websocket clients authenticate with.
func redactQuery(query string) string {
	if query == "" {
		return ""
	}
	values, err := url.ParseQuery(query)
	if err != nil || !values.Has("token") {
		return query
	}
	values.Set("token", "REDACTED")
	return values.Encode()
}
