package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Load_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, []string{"localhost:19092"}, cfg.KafkaBrokers)
	require.Equal(t, 4, cfg.CleanMaxConcurrency)
	require.Equal(t, 24*time.Hour, cfg.CompletionCacheTTL)
	require.True(t, cfg.IsDev())
	require.False(t, cfg.IsProd())
}

func Test_Load_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("KAFKA_BROKERS", "rp1:9092,rp2:9092")
	t.Setenv("CLEAN_MAX_CONCURRENCY", "8")
	t.Setenv("COMPLETION_CACHE_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.IsProd())
	require.Equal(t, []string{"rp1:9092", "rp2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 8, cfg.CleanMaxConcurrency)
	require.Equal(t, time.Hour, cfg.CompletionCacheTTL)
}

func Test_GetAIBackoffConfig_TestEnvIsFast(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	cfg, err := Load()
	require.NoError(t, err)
	maxElapsed, initial, maxInterval, multiplier := cfg.GetAIBackoffConfig()
	require.Equal(t, 5*time.Second, maxElapsed)
	require.Equal(t, 100*time.Millisecond, initial)
	require.Equal(t, time.Second, maxInterval)
	require.Equal(t, 2.0, multiplier)
}
