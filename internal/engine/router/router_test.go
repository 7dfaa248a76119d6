package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscare/campuscare/internal/engine/core"
	"github.com/campuscare/campuscare/internal/engine/guard"
	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/internal/engine/repo"
	"github.com/campuscare/campuscare/internal/engine/service"
	"github.com/campuscare/campuscare/pkg/cache"
	httpx "github.com/campuscare/campuscare/pkg/http"
	"github.com/campuscare/campuscare/pkg/http/jwt"
	"github.com/campuscare/campuscare/pkg/metrics"
	"github.com/campuscare/campuscare/pkg/ws"
)

type envelope struct {
	Code   int             `json:"code"`
	Msg    string          `json:"msg"`
	Detail json.RawMessage `json:"detail"`
}

type errorBody struct {
	Code   int    `json:"code"`
	ErrMsg string `json:"errMsg"`
	Kind   string `json:"kind"`
	Path   string `json:"path"`
}

type testEnv struct {
	app   *fiber.App
	repos *repo.Repositories
}

func newEnv(t *testing.T, policy guard.Policy) *testEnv {
	t.Helper()
	policy.SetDefaults()
	require.NoError(t, policy.Validate())

	conf := &httpx.Http{ExposeMetrics: true}
	conf.Auth.SecretKey = "router-test-secret-key"
	conf.SetDefaults()
	require.NoError(t, conf.Validate())

	repos := repo.NewMemoryRepositories()
	m := metrics.New()
	broker := ws.NewBroker()
	services := service.NewServices(repos, guard.NewGuard(policy), conf.Auth,
		cache.NewFastCache(cache.FastCacheConfig{}), broker, service.NewLocalForumPublisher(broker), m)

	return &testEnv{
		app:   NewRouter(conf, services, m, ws.DefaultSendBuffer, nil).Router(),
		repos: repos,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := sonic.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

// ok performs the request, expects status and decodes the envelope detail.
func (e *testEnv) ok(t *testing.T, status int, method, path, token string, body, out any) {
	t.Helper()
	code, data := e.do(t, method, path, token, body)
	require.Equal(t, status, code, string(data))

	var env envelope
	require.NoError(t, sonic.Unmarshal(data, &env))
	assert.Equal(t, status, env.Code)
	if out != nil {
		require.NoError(t, sonic.Unmarshal(env.Detail, out))
	}
}

// fails performs the request and expects an error body of kind.
func (e *testEnv) fails(t *testing.T, status int, kind core.Kind, method, path, token string, body any) errorBody {
	t.Helper()
	code, data := e.do(t, method, path, token, body)
	require.Equal(t, status, code, string(data))

	var eb errorBody
	require.NoError(t, sonic.Unmarshal(data, &eb))
	assert.Equal(t, string(kind), eb.Kind)
	assert.NotEmpty(t, eb.ErrMsg)
	return eb
}

func (e *testEnv) signUp(t *testing.T, email, college string) (string, model.UserInfo) {
	t.Helper()
	var resp model.LoginResp
	e.ok(t, fiber.StatusCreated, fiber.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     "Student",
		"email":    email,
		"password": "pa55word",
		"college":  college,
	}, &resp)
	return resp.Token[jwt.AccessTokenKey], resp.User
}

func (e *testEnv) signUpAdmin(t *testing.T, email, college string) string {
	t.Helper()
	token, user := e.signUp(t, email, college)
	require.NoError(t, e.repos.User.SetRole(context.Background(), user.ID, model.RoleAdmin))
	return token
}

func TestRouter_Ops(t *testing.T) {
	e := newEnv(t, guard.Policy{})

	code, body := e.do(t, fiber.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "ok", string(body))

	var info map[string]any
	e.ok(t, fiber.StatusOK, fiber.MethodGet, "/version", "", nil, &info)
	assert.Contains(t, info, "version")

	code, body = e.do(t, fiber.MethodGet, "/metrics", "", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, string(body), "campuscare_http_requests_total")

	eb := e.fails(t, fiber.StatusNotFound, core.KindNotFound, fiber.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, "/nowhere", eb.Path)

	code, _ = e.do(t, fiber.MethodGet, "/ws", "", nil)
	assert.Equal(t, fiber.StatusUpgradeRequired, code)
}

func TestRouter_Auth(t *testing.T) {
	e := newEnv(t, guard.Policy{})
	token, user := e.signUp(t, "alice@example.com", "X")
	assert.Equal(t, model.RoleMember, user.Role)

	e.fails(t, fiber.StatusConflict, core.KindConflict, fiber.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Again", "email": "alice@example.com", "password": "x",
	})
	e.fails(t, fiber.StatusBadRequest, core.KindInvalidArgument, fiber.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Sneaky", "email": "sneaky@example.com", "password": "x", "role": "admin",
	})
	e.fails(t, fiber.StatusBadRequest, core.KindInvalidArgument, fiber.MethodPost, "/api/auth/login", "", nil)
	e.fails(t, fiber.StatusBadRequest, core.KindInvalidArgument, fiber.MethodPost, "/api/auth/login", "", "{oops")
	e.fails(t, fiber.StatusUnauthorized, core.KindUnauthenticated, fiber.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "alice@example.com", "password": "wrong",
	})

	var login model.LoginResp
	e.ok(t, fiber.StatusOK, fiber.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "alice@example.com", "password": "pa55word",
	}, &login)
	assert.Equal(t, user.ID, login.User.ID)

	var refreshed model.LoginResp
	e.ok(t, fiber.StatusOK, fiber.MethodPost, "/api/auth/refresh", "", map[string]any{
		"refreshToken": login.Token[jwt.RefreshTokenKey],
	}, &refreshed)
	assert.NotEmpty(t, refreshed.Token[jwt.AccessTokenKey])

	var me model.UserInfo
	e.ok(t, fiber.StatusOK, fiber.MethodGet, "/api/users/me", token, nil, &me)
	assert.Equal(t, "alice@example.com", me.Email)

	e.fails(t, fiber.StatusUnauthorized, core.KindUnauthenticated, fiber.MethodGet, "/api/users/me", "", nil)
	e.fails(t, fiber.StatusUnauthorized, core.KindUnauthenticated, fiber.MethodGet, "/api/users/me", "not-a-token", nil)
	e.fails(t, fiber.StatusUnauthorized, core.KindUnauthenticated, fiber.MethodGet, "/api/users/me", login.Token[jwt.RefreshTokenKey], nil)
	e.fails(t, fiber.StatusForbidden, core.KindForbidden, fiber.MethodGet, "/api/users", token, nil)

	// the token query parameter works where headers cannot be set
	code, _ := e.do(t, fiber.MethodGet, "/api/users/me?token="+token, "", nil)
	assert.Equal(t, fiber.StatusOK, code)
}

func TestRouter_AppointmentFlow(t *testing.T) {
	e := newEnv(t, guard.Policy{})
	alice, _ := e.signUp(t, "alice@example.com", "X")
	bob, _ := e.signUp(t, "bob@example.com", "X")
	admin := e.signUpAdmin(t, "admin@example.com", "X")

	at := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	var a model.Appointment
	e.ok(t, fiber.StatusCreated, fiber.MethodPost, "/api/appointments", alice, map[string]any{"scheduledAt": at}, &a)
	assert.Equal(t, model.AppointmentPending, a.Status)
	assert.Equal(t, "X", a.Organization)

	e.fails(t, fiber.StatusBadRequest, core.KindInvalidArgument, fiber.MethodPost, "/api/appointments", alice, map[string]any{})
	e.fails(t, fiber.StatusForbidden, core.KindForbidden, fiber.MethodPost, "/api/appointments", alice, map[string]any{"organization": "Y", "scheduledAt": at})

	path := "/api/appointments/" + a.ID
	e.fails(t, fiber.StatusForbidden, core.KindForbidden, fiber.MethodGet, path, bob, nil)
	e.fails(t, fiber.StatusNotFound, core.KindNotFound, fiber.MethodGet, "/api/appointments/missing", alice, nil)

	var updated model.Appointment
	e.ok(t, fiber.StatusOK, fiber.MethodPut, path, alice, map[string]any{"status": "confirmed", "notes": "see you"}, &updated)
	assert.Equal(t, model.AppointmentConfirmed, updated.Status)
	assert.Equal(t, "see you", updated.Notes)

	e.fails(t, fiber.StatusConflict, core.KindInvalidTransition, fiber.MethodPut, path, alice, map[string]any{"status": "pending"})
	e.fails(t, fiber.StatusBadRequest, core.KindInvalidArgument, fiber.MethodPut, path, alice, map[string]any{"status": "archived"})
	e.fails(t, fiber.StatusForbidden, core.KindForbidden, fiber.MethodDelete, path, bob, nil)

	var cancelled model.Appointment
	e.ok(t, fiber.StatusOK, fiber.MethodDelete, path, alice, nil, &cancelled)
	assert.Equal(t, model.AppointmentCancelled, cancelled.Status)
	e.fails(t, fiber.StatusConflict, core.KindInvalidTransition, fiber.MethodDelete, path, alice, nil)

	var mine []model.Appointment
	e.ok(t, fiber.StatusOK, fiber.MethodGet, "/api/appointments/me", alice, nil, &mine)
	assert.Len(t, mine, 1)

	e.fails(t, fiber.StatusForbidden, core.KindForbidden, fiber.MethodGet, "/api/appointments", alice, nil)
	var all []model.Appointment
	e.ok(t, fiber.StatusOK, fiber.MethodGet, "/api/appointments", admin, nil, &all)
	assert.Len(t, all, 1)
}

func TestRouter_ForumFlow(t *testing.T) {
	e := newEnv(t, guard.Policy{})
	alice, aliceInfo := e.signUp(t, "alice@example.com", "X")
	bob, _ := e.signUp(t, "bob@example.com", "X")
	carol, _ := e.signUp(t, "carol@example.com", "Y")

	var post model.ForumPostView
	e.ok(t, fiber.StatusCreated, fiber.MethodPost, "/api/forum", alice, map[string]any{
		"title": "hello", "body": "first post", "anonymous": true,
	}, &post)
	assert.Equal(t, "X", post.Organization)
	assert.Empty(t, post.AuthorID)

	e.fails(t, fiber.StatusBadRequest, core.KindInvalidArgument, fiber.MethodPost, "/api/forum", alice, map[string]any{"title": "no body"})

	var list []model.ForumPostView
	e.ok(t, fiber.StatusOK, fiber.MethodGet, "/api/forum?college=X", bob, nil, &list)
	require.Len(t, list, 1)
	assert.NotEqual(t, aliceInfo.ID, list[0].AuthorID)
	e.fails(t, fiber.StatusForbidden, core.KindForbidden, fiber.MethodGet, "/api/forum?college=X", carol, nil)

	path := "/api/forum/" + post.ID
	e.fails(t, fiber.StatusForbidden, core.KindForbidden, fiber.MethodGet, path, carol, nil)

	var commented model.ForumPostView
	e.ok(t, fiber.StatusCreated, fiber.MethodPost, path+"/comment", bob, map[string]any{"text": "welcome"}, &commented)
	assert.Len(t, commented.Comments, 1)

	var votes model.UpvoteResp
	e.ok(t, fiber.StatusOK, fiber.MethodPost, path+"/upvote", bob, nil, &votes)
	e.ok(t, fiber.StatusOK, fiber.MethodPost, path+"/upvote", bob, nil, &votes)
	assert.Equal(t, int64(2), votes.Upvotes)

	e.fails(t, fiber.StatusForbidden, core.KindForbidden, fiber.MethodDelete, path, bob, nil)
	code, _ := e.do(t, fiber.MethodDelete, path, alice, nil)
	assert.Equal(t, fiber.StatusOK, code)
	e.fails(t, fiber.StatusNotFound, core.KindNotFound, fiber.MethodGet, path, alice, nil)
}

func TestRouter_CounsellorsAndAnalytics(t *testing.T) {
	e := newEnv(t, guard.Policy{})
	member, _ := e.signUp(t, "m@example.com", "X")
	admin := e.signUpAdmin(t, "a@example.com", "X")

	e.fails(t, fiber.StatusForbidden, core.KindForbidden, fiber.MethodPost, "/api/counsellors", member, map[string]any{"name": "Dr. Rao"})

	var c model.Counsellor
	e.ok(t, fiber.StatusCreated, fiber.MethodPost, "/api/counsellors", admin, map[string]any{"name": "Dr. Rao", "roomNumber": "B-2"}, &c)
	assert.Equal(t, "X", c.Organization)

	var list []model.Counsellor
	e.ok(t, fiber.StatusOK, fiber.MethodGet, "/api/counsellors", member, nil, &list)
	assert.Len(t, list, 1)

	var updated model.Counsellor
	e.ok(t, fiber.StatusOK, fiber.MethodPut, "/api/counsellors/"+c.ID, admin, map[string]any{"name": "Dr. Rao", "rating": 4}, &updated)
	assert.Equal(t, float64(4), updated.Rating)

	e.fails(t, fiber.StatusForbidden, core.KindForbidden, fiber.MethodGet, "/api/analytics/snapshot", member, nil)
	var snap model.AnalyticsSnapshot
	e.ok(t, fiber.StatusOK, fiber.MethodGet, "/api/analytics/snapshot", admin, nil, &snap)
	assert.Equal(t, "X", snap.Organization)

	var snaps []model.AnalyticsSnapshot
	e.ok(t, fiber.StatusOK, fiber.MethodGet, "/api/analytics", admin, nil, &snaps)
	assert.Len(t, snaps, 1)

	code, _ := e.do(t, fiber.MethodDelete, "/api/counsellors/"+c.ID, admin, nil)
	assert.Equal(t, fiber.StatusOK, code)
}

func TestStatusOf(t *testing.T) {
	cases := map[core.Kind]int{
		core.KindUnauthenticated:   fiber.StatusUnauthorized,
		core.KindForbidden:         fiber.StatusForbidden,
		core.KindNotFound:          fiber.StatusNotFound,
		core.KindInvalidArgument:   fiber.StatusBadRequest,
		core.KindInvalidTransition: fiber.StatusConflict,
		core.KindConflict:          fiber.StatusConflict,
		core.KindInternal:          fiber.StatusInternalServerError,
	}
	for kind, want := range cases {
		got, rep := statusOf(kind)
		assert.Equal(t, want, got, kind)
		assert.NotEmpty(t, rep.Msg)
	}
}
