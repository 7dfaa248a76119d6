// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package middleware

import (
	"github.com/gofiber/fiber/v2"

	httpx "github.com/campuscare/campuscare/pkg/http"
)

const (
	// DETAIL holds the payload a handler wants wrapped in the envelope.
	DETAIL = "detail"
	// OPERATION marks a handler that succeeded without a payload.
	OPERATION = "operation"
)

// UnifiedResponseMiddleware wraps successful handler results in the
// {code, msg, detail} envelope. Error responses are written by the handlers
// themselves and pass through untouched.
func UnifiedResponseMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status == 0 {
			status = fiber.StatusOK
			c.Status(status)
		}
		if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
			return nil
		}

		if detail := c.Locals(DETAIL); detail != nil {
			return c.JSON(httpx.NewResponse(status, detail))
		}
		if c.Locals(OPERATION) != nil {
			return c.JSON(httpx.NewResponse(status, nil))
		}
		return nil
	}
}
