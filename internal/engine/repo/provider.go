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

package repo

import (
	"context"
	"fmt"

	"github.com/google/wire"

	"github.com/campuscare/campuscare/pkg/database"
)

// ProviderSet 提供仓储层相关的依赖
var ProviderSet = wire.NewSet(ProvideRepositories)

// ProvideRepositories picks the store configured in database.driver.
func ProvideRepositories(conf *database.Database, db database.MongoDB) (*Repositories, error) {
	switch conf.Driver {
	case database.DriverMemory:
		return NewMemoryRepositories(), nil
	case database.DriverMongo:
		if db == nil {
			return nil, fmt.Errorf("mongo driver selected but no connection available")
		}
		return NewRepositories(context.Background(), db)
	}
	return nil, fmt.Errorf("unknown database driver %q", conf.Driver)
}
