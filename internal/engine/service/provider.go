package service

import (
	"context"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

	"github.com/campuscare/campuscare/internal/engine/guard"
	"github.com/campuscare/campuscare/internal/engine/repo"
	"github.com/campuscare/campuscare/pkg/cache"
	httpx "github.com/campuscare/campuscare/pkg/http"
	"github.com/campuscare/campuscare/pkg/log"
	"github.com/campuscare/campuscare/pkg/metrics"
	"github.com/campuscare/campuscare/pkg/safe"
	"github.com/campuscare/campuscare/pkg/ws"
)

// ProviderSet 提供服务层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideServices,
	ProvideBroker,
	ProvideForumPublisher,
)

// ProvideServices 提供统一的 Services 实例
func ProvideServices(
	repos *repo.Repositories,
	g *guard.Guard,
	auth *httpx.Auth,
	c cache.ICache,
	broker ws.Broker,
	publisher ForumPublisher,
	m *metrics.Metrics,
) *Services {
	return NewServices(repos, g, *auth, c, broker, publisher, m)
}

// ProvideBroker counts messages dropped on full subscriber queues.
func ProvideBroker(m *metrics.Metrics) ws.Broker {
	return ws.NewBroker(ws.WithDropHook(func(string) {
		m.BroadcastDropped()
	}))
}

// ProvideForumPublisher picks local delivery or the redis relay. The relay
// consumer runs until cleanup.
func ProvideForumPublisher(conf *Realtime, broker ws.Broker, client *redis.Client) (ForumPublisher, func(), error) {
	local := NewLocalForumPublisher(broker)
	if conf.Relay != RelayRedis {
		return local, func() {}, nil
	}
	if client == nil {
		log.Warnw("realtime relay is redis but redis is not configured, delivering locally")
		return local, func() {}, nil
	}

	relay := NewRedisForumRelay(client, conf.Channel, local)
	ctx, cancel := context.WithCancel(context.Background())
	safe.Go(func() {
		if err := relay.Run(ctx); err != nil {
			log.Errorw("forum relay stopped", "error", err)
		}
	})
	return relay, cancel, nil
}
