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
	"github.com/campuscare/campuscare/pkg/http/jwt"
)

func register(t *testing.T, f *fixture, email, college string) *model.LoginResp {
	t.Helper()
	resp, err := f.svc.Auth.Register(context.Background(), &model.RegisterReq{
		Name:     "Student",
		Email:    email,
		Password: "s3cret-pass",
		College:  college,
	})
	require.NoError(t, err)
	return resp
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	f := newFixture(t, guard.Policy{})
	ctx := context.Background()

	resp := register(t, f, " Alice@Example.com ", "X")
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, model.RoleMember, resp.User.Role)
	assert.NotEmpty(t, resp.Token[jwt.AccessTokenKey])
	assert.NotEmpty(t, resp.Token[jwt.RefreshTokenKey])

	stored, err := f.repos.User.GetById(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)

	_, err = f.svc.Auth.Register(ctx, &model.RegisterReq{Name: "Dup", Email: "alice@example.com", Password: "x"})
	assertKind(t, err, core.KindConflict)

	_, err = f.svc.Auth.Register(ctx, &model.RegisterReq{Name: "Bad", Email: "not-an-email", Password: "x"})
	assertKind(t, err, core.KindInvalidArgument)

	login, err := f.svc.Auth.Login(ctx, &model.LoginReq{Email: "ALICE@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = f.svc.Auth.Login(ctx, &model.LoginReq{Email: "alice@example.com", Password: "wrong"})
	assertKind(t, err, core.KindUnauthenticated)

	_, err = f.svc.Auth.Login(ctx, &model.LoginReq{Email: "nobody@example.com", Password: "wrong"})
	assertKind(t, err, core.KindUnauthenticated)
}

func TestPrincipalResolver(t *testing.T) {
	f := newFixture(t, guard.Policy{})
	ctx := context.Background()
	resp := register(t, f, "bob@example.com", "X")

	p, err := f.svc.Resolver.Resolve(ctx, "Bearer "+resp.Token[jwt.AccessTokenKey])
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, p.ID)
	assert.Equal(t, model.RoleMember, p.Role)
	assert.Equal(t, "X", p.Organization)

	for name, header := range map[string]string{
		"missing":       "",
		"wrong scheme":  "Basic " + resp.Token[jwt.AccessTokenKey],
		"empty token":   "Bearer ",
		"garbage":       "Bearer not.a.jwt",
		"refresh token": "Bearer " + resp.Token[jwt.RefreshTokenKey],
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Resolver.Resolve(ctx, header)
			assertKind(t, err, core.KindUnauthenticated)
		})
	}

	t.Run("bad signature", func(t *testing.T) {
		aToken, _, err := jwt.GenToken(resp.User.ID, []byte("another-secret-key-123"), time.Hour, time.Hour)
		require.NoError(t, err)
		_, err = f.svc.Resolver.Resolve(ctx, "Bearer "+aToken)
		assertKind(t, err, core.KindUnauthenticated)
	})

	t.Run("expired", func(t *testing.T) {
		aToken, _, err := jwt.GenToken(resp.User.ID, []byte(testAuth.SecretKey), -time.Minute, time.Hour)
		require.NoError(t, err)
		_, err = f.svc.Resolver.Resolve(ctx, "Bearer "+aToken)
		assertKind(t, err, core.KindUnauthenticated)
	})

	t.Run("user gone", func(t *testing.T) {
		aToken, _, err := jwt.GenToken("ghost", []byte(testAuth.SecretKey), time.Hour, time.Hour)
		require.NoError(t, err)
		_, err = f.svc.Resolver.Resolve(ctx, "Bearer "+aToken)
		assertKind(t, err, core.KindUnauthenticated)
	})
}

func TestPrincipalResolver_SeesRoleChanges(t *testing.T) {
	f := newFixture(t, guard.Policy{})
	ctx := context.Background()
	resp := register(t, f, "carol@example.com", "Y")
	header := "Bearer " + resp.Token[jwt.AccessTokenKey]

	p, err := f.svc.Resolver.Resolve(ctx, header)
	require.NoError(t, err)
	assert.False(t, p.IsAdmin())

	require.NoError(t, f.repos.User.SetRole(ctx, resp.User.ID, model.RoleAdmin))

	p, err = f.svc.Resolver.Resolve(ctx, header)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())
}

func TestAuth_Refresh(t *testing.T) {
	f := newFixture(t, guard.Policy{})
	ctx := context.Background()
	resp := register(t, f, "dan@example.com", "X")

	refreshed, err := f.svc.Auth.Refresh(ctx, &model.RefreshReq{RefreshToken: resp.Token[jwt.RefreshTokenKey]})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, refreshed.User.ID)

	_, err = f.svc.Auth.Refresh(ctx, &model.RefreshReq{RefreshToken: resp.Token[jwt.AccessTokenKey]})
	assertKind(t, err, core.KindUnauthenticated)

	_, err = f.svc.Auth.Refresh(ctx, &model.RefreshReq{})
	assertKind(t, err, core.KindInvalidArgument)
}

func TestAuth_MeAndListUsers(t *testing.T) {
	f := newFixture(t, guard.Policy{})
	ctx := context.Background()
	a := register(t, f, "a@example.com", "X")
	register(t, f, "b@example.com", "X")
	register(t, f, "c@example.com", "Y")

	me, err := f.svc.Auth.Me(ctx, model.Principal{ID: a.User.ID})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", me.Email)

	_, err = f.svc.Auth.Me(ctx, model.Principal{})
	assertKind(t, err, core.KindUnauthenticated)

	_, err = f.svc.Auth.ListUsers(ctx, alice)
	assertKind(t, err, core.KindForbidden)

	users, err := f.svc.Auth.ListUsers(ctx, adminX)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	global := newFixture(t, guard.Policy{GlobalAdmin: true})
	register(t, global, "a@example.com", "X")
	register(t, global, "c@example.com", "Y")
	users, err = global.svc.Auth.ListUsers(ctx, adminX)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestAuth_SetRole(t *testing.T) {
	f := newFixture(t, guard.Policy{})
	ctx := context.Background()
	x := register(t, f, "x@example.com", "X")
	y := register(t, f, "y@example.com", "Y")

	_, err := f.svc.Auth.SetRole(ctx, alice, x.User.ID, &model.SetRoleReq{Role: "admin"})
	assertKind(t, err, core.KindForbidden)

	_, err = f.svc.Auth.SetRole(ctx, adminX, y.User.ID, &model.SetRoleReq{Role: "admin"})
	assertKind(t, err, core.KindForbidden)

	_, err = f.svc.Auth.SetRole(ctx, adminX, x.User.ID, &model.SetRoleReq{Role: "root"})
	assertKind(t, err, core.KindInvalidArgument)

	info, err := f.svc.Auth.SetRole(ctx, adminX, x.User.ID, &model.SetRoleReq{Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, info.Role)
}

func TestAuth_EnsureAdmin(t *testing.T) {
	f := newFixture(t, guard.Policy{})
	ctx := context.Background()
	seed := model.AdminSeed{Email: "root@example.com", Password: "change-me", College: "X"}

	require.NoError(t, f.svc.Auth.EnsureAdmin(ctx, model.AdminSeed{}))
	require.NoError(t, f.svc.Auth.EnsureAdmin(ctx, seed))
	require.NoError(t, f.svc.Auth.EnsureAdmin(ctx, seed))

	resp, err := f.svc.Auth.Login(ctx, &model.LoginReq{Email: seed.Email, Password: seed.Password})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, resp.User.Role)

	existing := register(t, f, "promote@example.com", "X")
	require.NoError(t, f.svc.Auth.EnsureAdmin(ctx, model.AdminSeed{Email: "promote@example.com", Password: "whatever"}))
	user, err := f.repos.User.GetById(ctx, existing.User.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
}
