package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscare/campuscare/internal/engine/core"
	"github.com/campuscare/campuscare/internal/engine/guard"
	"github.com/campuscare/campuscare/internal/engine/model"
)

func TestCounsellor_AdminOnlyWrites(t *testing.T) {
	f := newFixture(t, guard.Policy{})
	ctx := context.Background()

	_, err := f.svc.Counsellor.Create(ctx, alice, &model.CounsellorReq{Name: "Dr. Rao"})
	assertKind(t, err, core.KindForbidden)

	_, err = f.svc.Counsellor.Create(ctx, adminX, &model.CounsellorReq{Name: "Dr. Rao", Organization: "Y"})
	assertKind(t, err, core.KindForbidden)

	_, err = f.svc.Counsellor.Create(ctx, adminX, &model.CounsellorReq{Name: "Dr. Rao", Rating: 7})
	assertKind(t, err, core.KindInvalidArgument)

	c, err := f.svc.Counsellor.Create(ctx, adminX, &model.CounsellorReq{Name: "Dr. Rao", RoomNumber: "B-12", Rating: 4.5})
	require.NoError(t, err)
	assert.Equal(t, "X", c.Organization)

	_, err = f.svc.Counsellor.Update(ctx, alice, c.ID, &model.CounsellorReq{Name: "Dr. R"})
	assertKind(t, err, core.KindForbidden)
	_, err = f.svc.Counsellor.Update(ctx, adminY, c.ID, &model.CounsellorReq{Name: "Dr. R"})
	assertKind(t, err, core.KindForbidden)
	_, err = f.svc.Counsellor.Update(ctx, adminX, c.ID, &model.CounsellorReq{Name: "Dr. R", Organization: "Y"})
	assertKind(t, err, core.KindForbidden)

	updated, err := f.svc.Counsellor.Update(ctx, adminX, c.ID, &model.CounsellorReq{Name: "Dr. R. Rao", Designation: "Senior"})
	require.NoError(t, err)
	assert.Equal(t, "Dr. R. Rao", updated.Name)
	assert.Equal(t, "X", updated.Organization)

	assertKind(t, f.svc.Counsellor.Delete(ctx, alice, c.ID), core.KindForbidden)
	require.NoError(t, f.svc.Counsellor.Delete(ctx, adminX, c.ID))
	_, err = f.svc.Counsellor.Get(ctx, alice, c.ID)
	assertKind(t, err, core.KindNotFound)
}

func TestCounsellor_ReadsScopedToOrganization(t *testing.T) {
	f := newFixture(t, guard.Policy{})
	ctx := context.Background()
	c, err := f.svc.Counsellor.Create(ctx, adminX, &model.CounsellorReq{Name: "Dr. Iyer"})
	require.NoError(t, err)

	got, err := f.svc.Counsellor.Get(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Iyer", got.Name)

	_, err = f.svc.Counsellor.Get(ctx, carol, c.ID)
	assertKind(t, err, core.KindForbidden)

	list, err := f.svc.Counsellor.List(ctx, alice, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.Counsellor.List(ctx, carol, "X")
	assertKind(t, err, core.KindForbidden)
}

func TestCounsellor_ListCacheInvalidatedOnWrite(t *testing.T) {
	f := newFixture(t, guard.Policy{})
	ctx := context.Background()
	_, err := f.svc.Counsellor.Create(ctx, adminX, &model.CounsellorReq{Name: "First"})
	require.NoError(t, err)

	list, err := f.svc.Counsellor.List(ctx, bob, "")
	require.NoError(t, err)
	require.Len(t, list, 1)

	// written behind the service's back: the cached listing still answers
	require.NoError(t, f.repos.Counsellor.Create(ctx, &model.Counsellor{ID: "direct", Organization: "X", Name: "Direct", CreatedAt: time.Now()}))
	list, err = f.svc.Counsellor.List(ctx, bob, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.Counsellor.Create(ctx, adminX, &model.CounsellorReq{Name: "Second"})
	require.NoError(t, err)
	list, err = f.svc.Counsellor.List(ctx, bob, "")
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
