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
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PrincipalKey is the fiber local holding the resolved principal.
const PrincipalKey = "principal"

// Resolver turns the raw Authorization header into a principal.
type Resolver[T any] func(ctx context.Context, authorization string) (T, error)

// AuthorizationMiddleware resolves the caller on every request and stores the
// result under PrincipalKey. Failures are rendered by fail and stop the chain.
func AuthorizationMiddleware[T any](resolve Resolver[T], fail func(c *fiber.Ctx, err error) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := resolve(c.UserContext(), AuthorizationHeader(c))
		if err != nil {
			return fail(c, err)
		}
		c.Locals(PrincipalKey, principal)
		return c.Next()
	}
}

// AuthorizationHeader returns the Authorization header. Browsers cannot set
// headers on websocket upgrades, so a token query parameter is accepted as a
// bearer token too.
func AuthorizationHeader(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		return h
	}
	if token := strings.TrimSpace(c.Query("token")); token != "" {
		return "Bearer " + token
	}
	return ""
}

// BearerToken extracts the token from a "Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
