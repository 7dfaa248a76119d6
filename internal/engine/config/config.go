package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/campuscare/campuscare/internal/engine/guard"
	"github.com/campuscare/campuscare/internal/engine/model"
	"github.com/campuscare/campuscare/internal/engine/service"
	"github.com/campuscare/campuscare/pkg/cache"
	"github.com/campuscare/campuscare/pkg/database"
	"github.com/campuscare/campuscare/pkg/http"
	"github.com/campuscare/campuscare/pkg/log"
	"github.com/campuscare/campuscare/pkg/metrics"
)

// EnvPrefix prefixes environment overrides, e.g. CAMPUSCARE_HTTP_PORT.
const EnvPrefix = "CAMPUSCARE"

type AppConfig struct {
	Log      log.Conf
	Http     http.Http
	Database database.Database
	Redis    cache.Redis
	Realtime service.Realtime
	Policy   guard.Policy
	Metrics  metrics.MetricsConfig
	Seed     model.AdminSeed
}

// SetDefaults fills every unset section with its default.
func (c *AppConfig) SetDefaults() {
	def := log.SetDefaults()
	if c.Log.Output == "" {
		c.Log.Output = def.Output
	}
	if c.Log.Path == "" {
		c.Log.Path = def.Path
	}
	if c.Log.Filename == "" {
		c.Log.Filename = def.Filename
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Level
	}
	c.Http.SetDefaults()
	c.Database.SetDefaults()
	c.Realtime.SetDefaults()
	c.Policy.SetDefaults()
}

func (c *AppConfig) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Http.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return err
	}
	if err := c.Realtime.Validate(); err != nil {
		return err
	}
	if c.Realtime.Relay == service.RelayRedis && !c.Redis.Enabled() {
		return fmt.Errorf("realtime.relay %q needs redis.mode to be set", service.RelayRedis)
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	return nil
}

var (
	mu        sync.RWMutex
	current   AppConfig
	listeners []func(AppConfig)
)

// Current returns the most recently loaded configuration.
func Current() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// OnChange registers fn to run after the config file changes and the new
// content passed validation.
func OnChange(fn func(AppConfig)) {
	mu.Lock()
	defer mu.Unlock()
	listeners = append(listeners, fn)
}

// NewConf loads the config file and keeps watching it.
func NewConf(confFile string) (*AppConfig, error) {
	v := newViper(confFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	current = *cfg
	mu.Unlock()

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("configuration changed, reloading", "file", e.Name)
		next, err := decode(v)
		if err != nil {
			log.Errorw("ignoring invalid configuration", "file", e.Name, "error", err)
			return
		}
		mu.Lock()
		current = *next
		fns := append([]func(AppConfig){}, listeners...)
		mu.Unlock()
		for _, fn := range fns {
			fn(*next)
		}
	})
	v.WatchConfig()

	log.Infow("config file loaded", "path", confFile)
	return cfg, nil
}

// Load reads and validates the config file without watching it.
func Load(confFile string) (*AppConfig, error) {
	v := newViper(confFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}
	return decode(v)
}

func newViper(confFile string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(confFile)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// keys must be known to viper for env overrides to reach Unmarshal
	for _, key := range envKeys {
		v.SetDefault(key, nil)
	}
	return v
}

var envKeys = []string{
	"log.level",
	"http.host",
	"http.port",
	"http.corsOrigins",
	"http.auth.secretKey",
	"database.driver",
	"database.mongodb.uri",
	"database.mongodb.db",
	"redis.mode",
	"redis.address",
	"redis.password",
	"realtime.relay",
	"policy.globalAdmin",
	"seed.email",
	"seed.password",
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
