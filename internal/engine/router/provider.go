package router

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/campuscare/campuscare/internal/engine/service"
	"github.com/campuscare/campuscare/pkg/http"
	"github.com/campuscare/campuscare/pkg/log"
	"github.com/campuscare/campuscare/pkg/metrics"
)

// ProviderSet 提供路由相关的依赖
var ProviderSet = wire.NewSet(ProvideRouter)

// ProvideRouter 提供路由实例
func ProvideRouter(
	httpConf *http.Http,
	services *service.Services,
	m *metrics.Metrics,
	realtime *service.Realtime,
	logger *log.Logger,
) *Router {
	var zl *zap.Logger
	if logger != nil && logger.Log != nil {
		zl = logger.Log.Desugar()
	}
	return NewRouter(httpConf, services, m, realtime.SendBuffer, zl)
}
