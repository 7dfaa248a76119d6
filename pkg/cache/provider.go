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

package cache

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

	"github.com/campuscare/campuscare/pkg/log"
)

const defaultLocalMaxBytes = 32 * 1024 * 1024

var ProviderSet = wire.NewSet(
	ProvideRedis,
	ProvideFastCache,
	wire.Bind(new(ICache), new(*FastCache)),
)

// ProvideRedis connects when redis is configured and returns a nil client
// otherwise.
func ProvideRedis(conf *Redis) (*redis.Client, func(), error) {
	if !conf.Enabled() {
		return nil, func() {}, nil
	}
	client, err := NewRedis(*conf)
	if err != nil {
		return nil, nil, err
	}
	return client, func() {
		if err := client.Close(); err != nil {
			log.Errorw("failed to close redis", "error", err)
		}
	}, nil
}

func ProvideFastCache() *FastCache {
	return NewFastCache(FastCacheConfig{MaxBytes: defaultLocalMaxBytes})
}
