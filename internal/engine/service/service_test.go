package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscare/campuscare/internal/engine/core"
	"github.com/campuscare/campuscare/internal/engine/guard"
	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/internal/engine/repo"
	"github.com/campuscare/campuscare/pkg/cache"
	httpx "github.com/campuscare/campuscare/pkg/http"
	"github.com/campuscare/campuscare/pkg/http/middleware"
	"github.com/campuscare/campuscare/pkg/ws"
)

var (
	alice    = model.Principal{ID: "alice", Role: model.RoleMember, Organization: "X"}
	bob      = model.Principal{ID: "bob", Role: model.RoleMember, Organization: "X"}
	carol    = model.Principal{ID: "carol", Role: model.RoleMember, Organization: "Y"}
	adminX   = model.Principal{ID: "admin-x", Role: model.RoleAdmin, Organization: "X"}
	adminY   = model.Principal{ID: "admin-y", Role: model.RoleAdmin, Organization: "Y"}
	testAuth = httpx.Auth{SecretKey: "campuscare-test-secret", AccessExpire: 60, RefreshExpire: 1440}
)

func assertKind(t *testing.T, err error, kind core.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, core.KindOf(err), "error: %v", err)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	events chan model.ForumEvent
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan model.ForumEvent, 256)}
}

func (r *recordingPublisher) Publish(_ context.Context, evt model.ForumEvent) error {
	r.events <- evt
	return nil
}

func (r *recordingPublisher) next(t *testing.T) model.ForumEvent {
	t.Helper()
	select {
	case evt := <-r.events:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("no forum event published")
		return model.ForumEvent{}
	}
}

// stubConn is an in-memory ws.Conn carrying a principal.
type stubConn struct {
	id     string
	locals map[string]any
	queue  chan []byte
	ctx    context.Context

	mu     sync.Mutex
	closed bool
}

func newStubConn(id string, p *model.Principal) *stubConn {
	c := &stubConn{id: id, locals: map[string]any{}, queue: make(chan []byte, 16), ctx: context.Background()}
	if p != nil {
		c.locals[middleware.PrincipalKey] = *p
	}
	return c
}

func (c *stubConn) ID() string { return c.id }

func (c *stubConn) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.queue <- data:
		return true
	default:
		return false
	}
}

func (c *stubConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *stubConn) RemoteAddr() string    { return "stub" }
func (c *stubConn) Locals(key string) any { return c.locals[key] }

func (c *stubConn) Context() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

func (c *stubConn) SetContext(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()
}

func (c *stubConn) next(t *testing.T) []byte {
	t.Helper()
	select {
	case data := <-c.queue:
		return data
	case <-time.After(2 * time.Second):
		t.Fatal("nothing delivered")
		return nil
	}
}

func (c *stubConn) pending() int { return len(c.queue) }

type fixture struct {
	repos     *repo.Repositories
	guard     *guard.Guard
	publisher *recordingPublisher
	broker    ws.Broker
	svc       *Services
}

func newFixture(t *testing.T, policy guard.Policy) *fixture {
	t.Helper()
	policy.SetDefaults()
	require.NoError(t, policy.Validate())

	f := &fixture{
		repos:     repo.NewMemoryRepositories(),
		guard:     guard.NewGuard(policy),
		publisher: newRecordingPublisher(),
		broker:    ws.NewBroker(),
	}
	f.svc = NewServices(f.repos, f.guard, testAuth, cache.NewFastCache(cache.FastCacheConfig{}), f.broker, f.publisher, nil)
	return f
}
