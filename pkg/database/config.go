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
	"fmt"
	"strings"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Database selects the document store backing the repositories.
type Database struct {
	// Driver is "mongo" or "memory". The memory driver keeps everything in
	// process and is meant for local runs and tests.
	Driver  string      `mapstructure:"driver"`
	MongoDB MongoConfig `mapstructure:"mongodb"`
}

func (d *Database) SetDefaults() {
	if d.Driver == "" {
		d.Driver = DriverMongo
	}
	if d.MongoDB.DB == "" {
		d.MongoDB.DB = "campuscare"
	}
	if d.MongoDB.PoolSize == 0 {
		d.MongoDB.PoolSize = 50
	}
}

func (d *Database) Validate() error {
	d.Driver = strings.ToLower(strings.TrimSpace(d.Driver))
	switch d.Driver {
	case DriverMemory:
		return nil
	case DriverMongo:
		if d.MongoDB.Uri == "" {
			return fmt.Errorf("database.mongodb.uri is required for driver %q", DriverMongo)
		}
		return nil
	}
	return fmt.Errorf("unknown database driver %q", d.Driver)
}
