package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, "kv_store", cfg.Store.Table)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 10, cfg.Finance.TopN)
	assert.Equal(t, "eduflow", cfg.Events.SubjectPrefix)
}

func TestLoadReadsEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("DASHBOARD_CACHE_TTL", "90s")
	t.Setenv("EXPORTS_SIGNED_URL_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverRedis, cfg.Store.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 90*time.Second, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.Exports.SignedURLTTL)
}

func TestRedisAddr(t *testing.T) {
	assert.Equal(t, "cache.local:6380", RedisConfig{Host: "cache.local", Port: 6380}.Addr())
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
