package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestFromEnv_MemoryDefaults(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("SESSION_SECRET", secret)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.DataBackend)
	assert.Equal(t, 15*time.Second, cfg.SupabaseTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.SMTPEnabled())
}

func TestFromEnv_Supabase(t *testing.T) {
	t.Setenv("DATA_BACKEND", "supabase")
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("SESSION_SECRET", secret)
	t.Setenv("CORS_ORIGINS", "https://samudra.in, https://www.samudra.in")
	t.Setenv("REDIS_HOST", "localhost:6379")
	t.Setenv("CATALOG_CACHE_TTL", "30s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://samudra.in", "https://www.samudra.in"}, cfg.CORSOrigins)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
}

func TestFromEnv_Errors(t *testing.T) {
	t.Setenv("DATA_BACKEND", "supabase")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("SESSION_SECRET", "short")
	t.Setenv("REDIS_DB", "zero")

	_, err := FromEnv()
	require.Error(t, err)
	msg := err.Error()
	assert.True(t, strings.Contains(msg, "SUPABASE_URL"))
	assert.True(t, strings.Contains(msg, "SESSION_SECRET"))
	assert.True(t, strings.Contains(msg, "REDIS_DB"))
}

func TestFromEnv_UnknownBackend(t *testing.T) {
	t.Setenv("DATA_BACKEND", "mongo")
	t.Setenv("SESSION_SECRET", secret)

	_, err := FromEnv()
	assert.ErrorContains(t, err, "DATA_BACKEND")
}
