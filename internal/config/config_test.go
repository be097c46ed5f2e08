package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithEnvFiles(), WithEnvironment(map[string]string{
		"JWT_SECRET": testSecret,
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "./portfolio.db", cfg.DatabasePath)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, time.Minute, cfg.QuoteCacheTTL)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.OTLPEndpoint)
	assert.False(t, cfg.SeedDemoData)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(WithEnvFiles(), WithEnvironment(map[string]string{
		"JWT_SECRET":     testSecret,
		"HTTP_ADDR":      "127.0.0.1:5000",
		"TOKEN_TTL":      "1h",
		"REDIS_ADDR":     "redis:6379",
		"LOG_LEVEL":      "debug",
		"SEED_DEMO_DATA": "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:5000", cfg.HTTPAddr)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.True(t, cfg.SeedDemoData)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"short secret", map[string]string{"JWT_SECRET": "short"}},
		{"bad log level", map[string]string{"JWT_SECRET": testSecret, "LOG_LEVEL": "loud"}},
		{"bad bcrypt cost", map[string]string{"JWT_SECRET": testSecret, "BCRYPT_COST": "2"}},
		{"bad duration", map[string]string{"JWT_SECRET": testSecret, "TOKEN_TTL": "soon"}},
		{"bad redis addr", map[string]string{"JWT_SECRET": testSecret, "REDIS_ADDR": "no port"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(WithEnvFiles(), WithEnvironment(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(file, []byte("PORTFOLIO_TEST_MARKER=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PORTFOLIO_TEST_MARKER") })

	_, err := Load(WithEnvFiles(file), WithEnvironment(map[string]string{"JWT_SECRET": testSecret}))
	require.NoError(t, err)
	assert.Equal(t, "from-file", os.Getenv("PORTFOLIO_TEST_MARKER"))
}

func TestLoadIgnoresMissingEnvFile(t *testing.T) {
	_, err := Load(
		WithEnvFiles(filepath.Join(t.TempDir(), "absent.env")),
		WithEnvironment(map[string]string{"JWT_SECRET": testSecret}),
	)
	assert.NoError(t, err)
}
