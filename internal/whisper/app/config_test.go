package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/whisper/pkg/httpx"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	want := DefaultConfig()
	require.Equal(t, want, cfg)
	require.Equal(t, httpx.DefaultRateLimits(), cfg.EffectiveRateLimits())
}

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whisper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
issuer: from-file
algorithm: HS256
port: 9000
log_level: debug
housekeeping_interval: 15m
retired_key_files: [old-1.key, old-2.key]
`), 0o600))

	t.Setenv("PORT", "9100")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("WHISPER_DATABASE_DRIVER", "postgres")
	t.Setenv("WHISPER_DATABASE_DSN", "postgres://localhost/whisper")
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "50")

	cfg, err := LoadConfig([]string{"--config", path, "--log-level", "error"})
	require.NoError(t, err)

	require.Equal(t, "from-file", cfg.Issuer, "file over default")
	require.Equal(t, "HS256", cfg.Algorithm)
	require.Equal(t, 15*time.Minute, cfg.HousekeepingInterval)
	require.Equal(t, []string{"old-1.key", "old-2.key"}, cfg.RetiredKeyFiles)
	require.Equal(t, 9100, cfg.Port, "env over file")
	require.Equal(t, "error", cfg.LogLevel, "flag over env")
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, 50, cfg.RateLimits.Strict.RequestsPerWindow)
}

func TestLoadConfigFlags(t *testing.T) {
	cfg, err := LoadConfig([]string{
		"-p", "7000",
		"--key-file", "",
		"--shutdown-grace-period", "3s",
		"--disable-rate-limit",
	})
	require.NoError(t, err)

	require.Equal(t, 7000, cfg.Port)
	require.Empty(t, cfg.KeyFile)
	require.Equal(t, 3*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, httpx.RateLimits{}, cfg.EffectiveRateLimits())
}

func TestTrustProxyHeaders(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	require.False(t, cfg.EffectiveRateLimits().Strict.TrustProxyHeaders)

	t.Setenv("WHISPER_TRUST_PROXY_HEADERS", "true")
	cfg, err = LoadConfig(nil)
	require.NoError(t, err)
	limits := cfg.EffectiveRateLimits()
	for _, p := range []httpx.RateLimitConfig{limits.Strict, limits.Moderate, limits.Lenient, limits.Public} {
		require.True(t, p.TrustProxyHeaders)
	}

	cfg, err = LoadConfig([]string{"--trust-proxy-headers=false"})
	require.NoError(t, err)
	require.False(t, cfg.EffectiveRateLimits().Public.TrustProxyHeaders, "flag over env")
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("no_such_setting: true\n"), 0o600))

	tests := []struct {
		name string
		args []string
	}{
		{"bad algorithm", []string{"--algorithm", "RS256"}},
		{"bad driver", []string{"--db-driver", "mysql"}},
		{"bad port", []string{"--port", "0"}},
		{"empty dsn", []string{"--db-dsn", ""}},
		{"retired without active", []string{"--key-file", "", "--retired-key-file", "old.key"}},
		{"missing config file", []string{"--config", filepath.Join(dir, "absent.yaml")}},
		{"unknown config field", []string{"--config", unknown}},
		{"unknown flag", []string{"--nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.args)
			require.Error(t, err)
		})
	}

	t.Run("help", func(t *testing.T) {
		_, err := LoadConfig([]string{"--help"})
		require.ErrorIs(t, err, pflag.ErrHelp)
	})
}

func TestSQLiteDSN(t *testing.T) {
	require.Equal(t, ":memory:", sqliteDSN(":memory:"))
	require.Equal(t, "file:x.db?mode=ro", sqliteDSN("file:x.db?mode=ro"))
	require.Equal(t, "file:data/whisper.db?_pragma=journal_mode(WAL)", sqliteDSN("data/whisper.db"))
}
