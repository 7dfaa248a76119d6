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

package database

import (
	"context"

	"github.com/google/wire"

	"github.com/campuscare/campuscare/pkg/log"
)

// ProviderSet provides database-related dependencies
var ProviderSet = wire.NewSet(ProvideMongoDB)

// ProvideMongoDB connects to MongoDB when the mongo driver is selected. It
// returns a nil handle for the memory driver.
func ProvideMongoDB(conf *Database) (MongoDB, func(), error) {
	if conf.Driver != DriverMongo {
		log.Infow("database driver is not mongo, skipping connection", "driver", conf.Driver)
		return nil, func() {}, nil
	}
	client, err := NewMongoDB(context.Background(), conf.MongoDB)
	if err != nil {
		return nil, nil, err
	}
	log.Infow("connected to mongodb", "db", conf.MongoDB.DB)
	cleanup := func() {
		if err := client.Close(context.Background()); err != nil {
			log.Errorw("failed to close mongodb", "error", err)
		}
	}
	return client, cleanup, nil
}
