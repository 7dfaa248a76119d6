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
	"context"
	"encoding/binary"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/bytedance/sonic"
)

// FastCacheConfig holds fastcache configuration
type FastCacheConfig struct {
	MaxBytes int `mapstructure:"maxBytes"` // default 16MB
}

// FastCache is a local cache on VictoriaMetrics fastcache. Each entry is
// prefixed with its expiry so no background cleanup is needed: expired
// entries are dropped on read or evicted by fastcache itself.
type FastCache struct {
	cache *fastcache.Cache
	now   func() time.Time
}

const expiryHeader = 8

func NewFastCache(conf FastCacheConfig) *FastCache {
	maxBytes := conf.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 16 * 1024 * 1024
	}
	return &FastCache{
		cache: fastcache.New(maxBytes),
		now:   time.Now,
	}
}

func (fc *FastCache) Get(_ context.Context, key string) ([]byte, bool) {
	raw, ok := fc.cache.HasGet(nil, []byte(key))
	if !ok || len(raw) < expiryHeader {
		return nil, false
	}
	if exp := int64(binary.BigEndian.Uint64(raw[:expiryHeader])); exp > 0 && fc.now().UnixNano() >= exp {
		fc.cache.Del([]byte(key))
		return nil, false
	}
	return raw[expiryHeader:], true
}

func (fc *FastCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	var payload []byte
	switch v := value.(type) {
	case string:
		payload = []byte(v)
	case []byte:
		payload = v
	default:
		data, err := sonic.Marshal(v)
		if err != nil {
			return err
		}
		payload = data
	}

	var exp int64
	if ttl > 0 {
		exp = fc.now().Add(ttl).UnixNano()
	}
	buf := make([]byte, expiryHeader+len(payload))
	binary.BigEndian.PutUint64(buf[:expiryHeader], uint64(exp))
	copy(buf[expiryHeader:], payload)
	fc.cache.Set([]byte(key), buf)
	return nil
}

func (fc *FastCache) Del(_ context.Context, keys ...string) int {
	n := 0
	for _, key := range keys {
		if fc.cache.Has([]byte(key)) {
			fc.cache.Del([]byte(key))
			n++
		}
	}
	return n
}

// Clear 清空所有缓存
func (fc *FastCache) Clear() {
	fc.cache.Reset()
}

func (fc *FastCache) Stats() fastcache.Stats {
	var s fastcache.Stats
	fc.cache.UpdateStats(&s)
	return s
}

var _ ICache = (*FastCache)(nil)
