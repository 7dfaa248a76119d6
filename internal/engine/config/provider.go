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

package config

import (
	"github.com/google/wire"

	"github.com/campuscare/campuscare/internal/engine/guard"
	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/internal/engine/service"
	"github.com/campuscare/campuscare/pkg/cache"
	"github.com/campuscare/campuscare/pkg/database"
	"github.com/campuscare/campuscare/pkg/http"
	"github.com/campuscare/campuscare/pkg/log"
	"github.com/campuscare/campuscare/pkg/metrics"
)

// ProviderSet 提供配置层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideConf,
	ProvideHttpConfig,
	ProvideLogConfig,
	ProvideDatabaseConfig,
	ProvideRedisConfig,
	ProvideRealtimeConfig,
	ProvidePolicyConfig,
	ProvideMetricsConfig,
	ProvideSeedConfig,
)

// ProvideConf 提供应用配置
func ProvideConf(configPath string) (*AppConfig, error) {
	return NewConf(configPath)
}

func ProvideHttpConfig(appConf *AppConfig) *http.Http {
	return &appConf.Http
}

func ProvideLogConfig(appConf *AppConfig) *log.Conf {
	return &appConf.Log
}

func ProvideDatabaseConfig(appConf *AppConfig) *database.Database {
	return &appConf.Database
}

func ProvideRedisConfig(appConf *AppConfig) *cache.Redis {
	return &appConf.Redis
}

func ProvideRealtimeConfig(appConf *AppConfig) *service.Realtime {
	return &appConf.Realtime
}

func ProvidePolicyConfig(appConf *AppConfig) *guard.Policy {
	return &appConf.Policy
}

func ProvideMetricsConfig(appConf *AppConfig) *metrics.MetricsConfig {
	return &appConf.Metrics
}

func ProvideSeedConfig(appConf *AppConfig) *model.AdminSeed {
	return &appConf.Seed
}
