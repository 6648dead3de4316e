package cfg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DUFFEL_BASE_URL", "http://localhost:9000")
	t.Setenv("DUFFEL_ACCESS_TOKEN", "duffel_test_token")
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "v2", config.Duffel.APIVersion)
	assert.Equal(t, 30*time.Second, config.Duffel.Timeout)
	assert.Equal(t, CacheBackendMemory, config.Cache.Backend)
	assert.Equal(t, 5*time.Minute, config.Cache.SearchTTL)
	assert.Equal(t, 24*time.Hour, config.Cache.ReferenceTTL)
	assert.Equal(t, 10, config.Search.RateLimit)
	assert.Equal(t, time.Minute, config.Search.RateWindow)
	assert.Equal(t, 300*time.Millisecond, config.Search.Debounce)
	assert.False(t, config.Otel.Enabled)
	assert.False(t, config.IsProduction())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("DUFFEL_BASE_URL", "")
	t.Setenv("DUFFEL_ACCESS_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing env: APP_ENV")
	assert.Contains(t, err.Error(), "missing env: DUFFEL_ACCESS_TOKEN")
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("SEARCH_RATE_LIMIT", "3")
	t.Setenv("CACHE_SEARCH_TTL", "90s")
	t.Setenv("DUFFEL_CORPORATE_CODES", "ba:BA123, IB:IB9")
	t.Setenv("OTEL_ENABLED", "true")

	config, err := Load()
	require.NoError(t, err)

	assert.True(t, config.IsProduction())
	assert.Equal(t, 3, config.Search.RateLimit)
	assert.Equal(t, 90*time.Second, config.Cache.SearchTTL)
	assert.Equal(t, map[string]string{"BA": "BA123", "IB": "IB9"}, config.Duffel.CorporateCodes)
	assert.True(t, config.Otel.Enabled)
}

func TestLoad_RedisBackendNeedsHost(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing env: REDIS_HOST")
}

func TestLoad_BadValues(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)
	t.Setenv("SEARCH_RATE_LIMIT", "ten")
	t.Setenv("CACHE_BACKEND", "memcached")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conversion failed env: SEARCH_RATE_LIMIT")
	assert.Contains(t, err.Error(), "CACHE_BACKEND")
}
