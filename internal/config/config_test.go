package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"REDISKV_LISTEN_ADDR", "REDISKV_AUTH_PASSWORD", "REDISKV_RDB_PATH",
		"REDISKV_RDB_AUTO_SAVE_SECS", "REDISKV_MAXMEMORY_BYTES", "REDISKV_MAXVALUE_BYTES",
		"REDISKV_SLOWLOG_SLOWER_THAN_US", "REDISKV_SLOWLOG_MAX_LEN", "REDISKV_METRICS_ADDR",
		"REDISKV_DATABASES", "REDISKV_EXPIRE_SAMPLE_HZ", "REDISKV_EXPIRE_SAMPLE_SIZE",
		"REDISKV_EXPIRE_SAMPLE_BUDGET_MS", "REDISKV_EVICT_SAMPLE_SIZE",
		"REDISKV_BULK_LIMIT_BYTES", "REDISKV_ARRAY_LIMIT_LEN",
	}
	for _, k := range keys {
		require.NoError(t, os.Unsetenv(k))
	}
}

func Test_Load_DefaultsWhenEnvUnset(t *testing.T) {
	clearEnv(t)

	c := config.Load(nil)
	require.Equal(t, "127.0.0.1:6379", c.ListenAddr)
	require.Equal(t, "", c.AuthPassword)
	require.Equal(t, 16, c.Databases)
	require.Equal(t, int64(512<<20), c.MaxValueBytes)
}

func Test_Load_ReadsOverridesFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDISKV_LISTEN_ADDR", "0.0.0.0:7000")
	t.Setenv("REDISKV_AUTH_PASSWORD", "hunter2")
	t.Setenv("REDISKV_DATABASES", "4")
	t.Setenv("REDISKV_MAXMEMORY_BYTES", "256M")

	c := config.Load(nil)
	require.Equal(t, "0.0.0.0:7000", c.ListenAddr)
	require.Equal(t, "hunter2", c.AuthPassword)
	require.Equal(t, 4, c.Databases)
	require.Equal(t, int64(256<<20), c.MaxMemoryBytes)
}

func Test_Load_WarnsAndKeepsDefaultOnBadValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDISKV_DATABASES", "not-a-number")

	var warnings []string
	c := config.Load(func(key, raw, reason string) {
		warnings = append(warnings, key)
	})

	require.Equal(t, 16, c.Databases, "falls back to the default")
	require.Contains(t, warnings, "DATABASES")
}

func Test_Load_ParsesMemorySizeSuffixes(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDISKV_MAXVALUE_BYTES", "2G")

	c := config.Load(nil)
	require.Equal(t, int64(2<<30), c.MaxValueBytes)
}

func Test_Load_NilWarnIsANoop(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDISKV_SLOWLOG_MAX_LEN", "garbage")

	require.NotPanics(t, func() {
		config.Load(nil)
	})
}
