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

package guard

import (
	"reflect"

	"github.com/campuscare/campuscare/internal/engine/core"
	"github.com/campuscare/campuscare/internal/engine/model"
)

type Action string

const (
	ActionCreate   Action = "create"
	ActionRead     Action = "read"
	ActionReadMany Action = "read-many"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionComment  Action = "comment"
	ActionUpvote   Action = "upvote"
)

// Decision is computed per request and never cached.
type Decision struct {
	Allow  bool
	Reason core.Kind
}

// Err turns a denial into an error carrying the denial kind.
func (d Decision) Err() error {
	if d.Allow {
		return nil
	}
	switch d.Reason {
	case core.KindUnauthenticated:
		return core.Unauthenticated("authentication required")
	case core.KindNotFound:
		return core.NotFound("resource not found")
	default:
		return core.Forbidden("permission denied")
	}
}

var allow = Decision{Allow: true}

func deny(kind core.Kind) Decision {
	return Decision{Reason: kind}
}

// Guard decides whether a principal may act on a resource. It holds no mutable
// state and never blocks.
type Guard struct {
	policy Policy
}

func NewGuard(policy Policy) *Guard {
	return &Guard{policy: policy}
}

func (g *Guard) Policy() Policy {
	return g.policy
}

// Authorize applies, in order: admin within scope, read-many, ownership.
// Callers resolve existence first; a nil resource yields NotFound.
func (g *Guard) Authorize(p model.Principal, action Action, res model.Resource) Decision {
	if p.ID == "" {
		return deny(core.KindUnauthenticated)
	}
	if isNil(res) {
		return deny(core.KindNotFound)
	}
	if p.IsAdmin() && g.inAdminScope(p, res.ResourceOrganization()) {
		return allow
	}
	if action == ActionReadMany {
		return allow
	}
	if owner := res.ResourceOwner(); owner != "" && owner == p.ID {
		return allow
	}
	return deny(core.KindForbidden)
}

// AuthorizeOrganization decides whether p may act inside org as a whole:
// create in it, list it, or subscribe to its channel.
func (g *Guard) AuthorizeOrganization(p model.Principal, org string) Decision {
	if p.ID == "" {
		return deny(core.KindUnauthenticated)
	}
	if org == "" {
		return deny(core.KindForbidden)
	}
	if p.IsAdmin() && g.inAdminScope(p, org) {
		return allow
	}
	if p.Organization != "" && p.Organization == org {
		return allow
	}
	return deny(core.KindForbidden)
}

// RequireAdmin passes admins only, regardless of resource.
func (g *Guard) RequireAdmin(p model.Principal) Decision {
	if p.ID == "" {
		return deny(core.KindUnauthenticated)
	}
	if !p.IsAdmin() {
		return deny(core.KindForbidden)
	}
	return allow
}

// CanComment consults the configured comment policy after checking that the
// post is visible to p.
func (g *Guard) CanComment(p model.Principal, post *model.ForumPost) Decision {
	if post == nil {
		return deny(core.KindNotFound)
	}
	if d := g.AuthorizeOrganization(p, post.Organization); !d.Allow {
		return d
	}
	if !g.policy.CommentPolicy.permits(p, post) {
		return deny(core.KindForbidden)
	}
	return allow
}

func (g *Guard) inAdminScope(p model.Principal, org string) bool {
	return g.policy.GlobalAdmin || (p.Organization != "" && p.Organization == org)
}

func isNil(res model.Resource) bool {
	if res == nil {
		return true
	}
	v := reflect.ValueOf(res)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
