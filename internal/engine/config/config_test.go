package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscare/campuscare/internal/engine/guard"
	"github.com/campuscare/campuscare/internal/engine/service"
	"github.com/campuscare/campuscare/pkg/database"
)

const sample = `
[log]
output = "stdout"
level = "DEBUG"

[http]
port = 9090
corsOrigins = "https://campus.example"

[http.auth]
secretKey = "0123456789abcdef0123"
accessExpire = 15

[database]
driver = "memory"

[policy]
commentPolicy = "admin-only"

[seed]
email = "root@example.com"
password = "changeme"
`

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConf(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, "campuscare.log", cfg.Log.Filename)
	assert.Equal(t, 9090, cfg.Http.Port)
	assert.Equal(t, "/api", cfg.Http.InternalContextPath)
	assert.Equal(t, 15, cfg.Http.Auth.AccessExpire)
	assert.Equal(t, "https://campus.example", cfg.Http.CorsOrigins)
	assert.Equal(t, database.DriverMemory, cfg.Database.Driver)
	assert.Equal(t, service.RelayLocal, cfg.Realtime.Relay)
	assert.Equal(t, guard.CommentAdminOnly, cfg.Policy.CommentPolicy)
	assert.False(t, cfg.Policy.GlobalAdmin)
	assert.True(t, cfg.Seed.Enabled())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CAMPUSCARE_HTTP_PORT", "7070")
	t.Setenv("CAMPUSCARE_POLICY_GLOBALADMIN", "true")

	cfg, err := Load(writeConf(t, sample))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Http.Port)
	assert.True(t, cfg.Policy.GlobalAdmin)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"short secret": `
[http.auth]
secretKey = "short"
[database]
driver = "memory"
`,
		"redis relay without redis": sample + `
[realtime]
relay = "redis"
`,
		"unknown comment policy": `
[http.auth]
secretKey = "0123456789abcdef0123"
[database]
driver = "memory"
[policy]
commentPolicy = "nobody"
`,
		"mongo without uri": `
[http.auth]
secretKey = "0123456789abcdef0123"
`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConf(t, content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestNewConf_SetsCurrent(t *testing.T) {
	cfg, err := NewConf(writeConf(t, sample))
	require.NoError(t, err)
	assert.Equal(t, cfg.Http.Port, Current().Http.Port)

	httpConf := ProvideHttpConfig(cfg)
	httpConf.Port = 1
	assert.Equal(t, 1, cfg.Http.Port, "providers hand out pointers into the loaded config")
}
