//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/campuscare/campuscare/internal/engine/bootstrap"
	"github.com/campuscare/campuscare/internal/engine/config"
	"github.com/campuscare/campuscare/internal/engine/guard"
	"github.com/campuscare/campuscare/internal/engine/repo"
	"github.com/campuscare/campuscare/internal/engine/router"
	"github.com/campuscare/campuscare/internal/engine/service"
	"github.com/campuscare/campuscare/pkg/cache"
	"github.com/campuscare/campuscare/pkg/database"
	"github.com/campuscare/campuscare/pkg/http"
	"github.com/campuscare/campuscare/pkg/log"
	"github.com/campuscare/campuscare/pkg/metrics"
)

func initApp(configPath string) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		// 配置层
		config.ProviderSet,
		log.ProviderSet,
		// 基础设施
		database.ProviderSet,
		cache.ProviderSet,
		metrics.ProviderSet,
		http.ProviderSet,
		// 仓储层
		repo.ProviderSet,
		guard.ProviderSet,
		// 服务层
		service.ProviderSet,
		// 路由层
		router.ProviderSet,
		// 应用层
		bootstrap.NewApp,
	))
}
