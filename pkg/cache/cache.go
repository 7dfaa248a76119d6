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
	"time"
)

// ICache is a byte-oriented key/value cache with per-key expiry.
type ICache interface {
	// Get 获取缓存值, ok is false on miss or expiry
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set 设置缓存值, strings and byte slices are stored as-is and anything
	// else is JSON encoded. A non-positive ttl never expires.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Del 删除缓存
	Del(ctx context.Context, keys ...string) int
}
