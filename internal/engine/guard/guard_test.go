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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscare/campuscare/internal/engine/core"
	"github.com/campuscare/campuscare/internal/engine/model"
)

var (
	alice   = model.Principal{ID: "alice", Role: model.RoleMember, Organization: "X"}
	bob     = model.Principal{ID: "bob", Role: model.RoleMember, Organization: "X"}
	mallory = model.Principal{ID: "mallory", Role: model.RoleMember, Organization: "Y"}
	adminX  = model.Principal{ID: "admin-x", Role: model.RoleAdmin, Organization: "X"}
	adminY  = model.Principal{ID: "admin-y", Role: model.RoleAdmin, Organization: "Y"}
)

var mutating = []Action{ActionUpdate, ActionDelete}

func TestAuthorize_OwnerAllowed(t *testing.T) {
	g := NewGuard(Policy{})
	appt := &model.Appointment{ID: "a1", OwnerID: "alice", Organization: "X"}

	for _, a := range []Action{ActionRead, ActionUpdate, ActionDelete} {
		assert.True(t, g.Authorize(alice, a, appt).Allow, a)
	}
}

func TestAuthorize_NonOwnerMemberDenied(t *testing.T) {
	g := NewGuard(Policy{})
	appt := &model.Appointment{ID: "a1", OwnerID: "alice", Organization: "X"}

	for _, p := range []model.Principal{bob, mallory} {
		for _, a := range append(mutating, ActionRead) {
			d := g.Authorize(p, a, appt)
			assert.False(t, d.Allow)
			assert.Equal(t, core.KindForbidden, d.Reason)
		}
	}
}

func TestAuthorize_AdminScope(t *testing.T) {
	appt := &model.Appointment{ID: "a1", OwnerID: "alice", Organization: "X"}

	g := NewGuard(Policy{})
	assert.True(t, g.Authorize(adminX, ActionUpdate, appt).Allow)
	assert.False(t, g.Authorize(adminY, ActionUpdate, appt).Allow)

	global := NewGuard(Policy{GlobalAdmin: true})
	assert.True(t, global.Authorize(adminY, ActionUpdate, appt).Allow)
	assert.True(t, global.Authorize(adminY, ActionDelete, appt).Allow)
}

func TestAuthorize_ReadManyAllowed(t *testing.T) {
	g := NewGuard(Policy{})
	post := &model.ForumPost{ID: "p1", AuthorID: "alice", Organization: "X"}
	assert.True(t, g.Authorize(bob, ActionReadMany, post).Allow)
}

func TestAuthorize_NilResource(t *testing.T) {
	g := NewGuard(Policy{})

	d := g.Authorize(alice, ActionRead, nil)
	assert.Equal(t, core.KindNotFound, d.Reason)

	var appt *model.Appointment
	d = g.Authorize(adminX, ActionDelete, appt)
	assert.False(t, d.Allow)
	assert.Equal(t, core.KindNotFound, d.Reason)
	assert.ErrorIs(t, d.Err(), core.ErrNotFound)
}

func TestAuthorize_Unauthenticated(t *testing.T) {
	g := NewGuard(Policy{})
	d := g.Authorize(model.Principal{}, ActionRead, &model.ForumPost{})
	assert.Equal(t, core.KindUnauthenticated, d.Reason)
	assert.ErrorIs(t, d.Err(), core.ErrUnauthenticated)
}

func TestAuthorize_Deterministic(t *testing.T) {
	g := NewGuard(Policy{})
	post := &model.ForumPost{ID: "p1", AuthorID: "alice", Organization: "X"}
	first := g.Authorize(bob, ActionDelete, post)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, g.Authorize(bob, ActionDelete, post))
	}
}

func TestAuthorizeOrganization(t *testing.T) {
	g := NewGuard(Policy{})
	assert.True(t, g.AuthorizeOrganization(alice, "X").Allow)
	assert.False(t, g.AuthorizeOrganization(alice, "Y").Allow)
	assert.False(t, g.AuthorizeOrganization(alice, "").Allow)
	assert.True(t, g.AuthorizeOrganization(adminX, "X").Allow)
	assert.False(t, g.AuthorizeOrganization(adminX, "Y").Allow)

	global := NewGuard(Policy{GlobalAdmin: true})
	assert.True(t, global.AuthorizeOrganization(adminX, "Y").Allow)
	assert.False(t, global.AuthorizeOrganization(alice, "Y").Allow)
}

func TestRequireAdmin(t *testing.T) {
	g := NewGuard(Policy{})
	assert.True(t, g.RequireAdmin(adminX).Allow)
	d := g.RequireAdmin(alice)
	assert.ErrorIs(t, d.Err(), core.ErrForbidden)
}

func TestCanComment(t *testing.T) {
	post := &model.ForumPost{ID: "p1", AuthorID: "alice", Organization: "X"}

	anyone := NewGuard(Policy{CommentPolicy: CommentAnyone})
	assert.True(t, anyone.CanComment(bob, post).Allow)
	assert.False(t, anyone.CanComment(mallory, post).Allow)
	assert.Equal(t, core.KindNotFound, anyone.CanComment(bob, nil).Reason)

	adminOnly := NewGuard(Policy{CommentPolicy: CommentAdminOnly})
	assert.False(t, adminOnly.CanComment(bob, post).Allow)
	assert.False(t, adminOnly.CanComment(alice, post).Allow)
	assert.True(t, adminOnly.CanComment(adminX, post).Allow)
}

func TestPolicy_Validate(t *testing.T) {
	p := Policy{}
	p.SetDefaults()
	require.NoError(t, p.Validate())
	assert.Equal(t, CommentAnyone, p.CommentPolicy)

	p.CommentPolicy = "Admin-Only"
	require.NoError(t, p.Validate())
	assert.Equal(t, CommentAdminOnly, p.CommentPolicy)

	p.CommentPolicy = "moderators"
	assert.Error(t, p.Validate())
}
