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

package service

import (
	"context"
	"errors"

	"github.com/campuscare/campuscare/internal/engine/core"
	"github.com/campuscare/campuscare/internal/engine/guard"
	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/internal/engine/repo"
	httpx "github.com/campuscare/campuscare/pkg/http"
	"github.com/campuscare/campuscare/pkg/http/jwt"
	"github.com/campuscare/campuscare/pkg/http/middleware"
	"github.com/campuscare/campuscare/pkg/log"
	"github.com/campuscare/campuscare/pkg/metrics"
)

// PrincipalResolver turns a bearer token into the principal it was issued
// for. Every call re-reads the user so role and organization changes and
// deletions take effect immediately.
type PrincipalResolver struct {
	users repo.IUserRepository
	auth  httpx.Auth
}

func NewPrincipalResolver(users repo.IUserRepository, auth httpx.Auth) *PrincipalResolver {
	return &PrincipalResolver{users: users, auth: auth}
}

func (r *PrincipalResolver) Resolve(ctx context.Context, authorization string) (model.Principal, error) {
	if authorization == "" {
		return model.Principal{}, &core.Error{Kind: core.KindUnauthenticated, Msg: httpx.AuthorizationEmpty.Msg}
	}
	token, ok := middleware.BearerToken(authorization)
	if !ok {
		return model.Principal{}, &core.Error{Kind: core.KindUnauthenticated, Msg: httpx.InvalidToken.Msg}
	}

	claims, err := jwt.ParseToken(token, r.auth.SecretKey)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Principal{}, core.Wrap(core.KindUnauthenticated, err, httpx.TokenExpired.Msg)
		}
		return model.Principal{}, core.Wrap(core.KindUnauthenticated, err, httpx.InvalidToken.Msg)
	}

	user, err := r.users.GetById(ctx, claims.UserId)
	if err != nil {
		if core.KindOf(err) == core.KindNotFound {
			return model.Principal{}, core.Unauthenticated("user no longer exists")
		}
		log.Errorw("failed to resolve principal", "userId", claims.UserId, "error", err)
		return model.Principal{}, err
	}
	return user.Principal(), nil
}

// check converts a guard decision into an error and counts denials.
func check(m *metrics.Metrics, d guard.Decision) error {
	if d.Allow {
		return nil
	}
	m.Denied(string(d.Reason))
	return d.Err()
}
