// Package config loads the server's environment-variable configuration
// surface described in spec.md §6. Unset or unparseable values fall back
// to documented defaults; the process never refuses to start because of
// a bad config value, it logs and continues with the default.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the fully-resolved runtime configuration.
type Config struct {
	ListenAddr         string
	AuthPassword       string // empty ⇒ open access
	RDBPath            string
	RDBAutoSaveSecs    int // 0 ⇒ disabled
	MaxMemoryBytes     int64
	MaxValueBytes      int64
	SlowLogSlowerThanUS int64
	SlowLogMaxLen      int
	MetricsAddr        string // empty ⇒ no exporter

	Databases         int
	ExpireSampleHz    int // active-expire ticks per second
	ExpireSampleSize  int
	ExpireSampleBudgetMS int
	EvictSampleSize   int
	BulkLimitBytes    int64
	ArrayLimitLen     int
}

// defaults mirror spec.md §6 and §3/§4 sampling defaults.
func defaults() Config {
	return Config{
		ListenAddr:           "127.0.0.1:6379",
		AuthPassword:         "",
		RDBPath:              "./snapshot.db",
		RDBAutoSaveSecs:      0,
		MaxMemoryBytes:       0,
		MaxValueBytes:        512 << 20,
		SlowLogSlowerThanUS:  10000,
		SlowLogMaxLen:        128,
		MetricsAddr:          "",
		Databases:            16,
		ExpireSampleHz:       10, // 100ms tick
		ExpireSampleSize:     20,
		ExpireSampleBudgetMS: 25,
		EvictSampleSize:      5,
		BulkLimitBytes:       512 << 20,
		ArrayLimitLen:        1 << 20,
	}
}

// warnFunc receives (key, rawValue, reason) for any env var that failed to
// parse; callers typically wire this to a zap logger.
type warnFunc func(key, raw, reason string)

// Load reads the environment into a Config, applying defaults for unset or
// malformed values. A nil warn is treated as a no-op.
func Load(warn warnFunc) Config {
	if warn == nil {
		warn = func(string, string, string) {}
	}
	c := defaults()

	if v, ok := lookup("LISTEN_ADDR"); ok {
		c.ListenAddr = v
	}
	if v, ok := lookup("AUTH_PASSWORD"); ok {
		c.AuthPassword = v
	}
	if v, ok := lookup("RDB_PATH"); ok {
		c.RDBPath = v
	}
	if v, ok := lookup("RDB_AUTO_SAVE_SECS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.RDBAutoSaveSecs = n
		} else {
			warn("RDB_AUTO_SAVE_SECS", v, "not a non-negative integer")
		}
	}
	if v, ok := lookup("MAXMEMORY_BYTES"); ok {
		if n, err := parseMem(v); err == nil {
			c.MaxMemoryBytes = n
		} else {
			warn("MAXMEMORY_BYTES", v, err.Error())
		}
	}
	if v, ok := lookup("MAXVALUE_BYTES"); ok {
		if n, err := parseMem(v); err == nil {
			c.MaxValueBytes = n
		} else {
			warn("MAXVALUE_BYTES", v, err.Error())
		}
	}
	if v, ok := lookup("SLOWLOG_SLOWER_THAN_US"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.SlowLogSlowerThanUS = n
		} else {
			warn("SLOWLOG_SLOWER_THAN_US", v, "not an integer")
		}
	}
	if v, ok := lookup("SLOWLOG_MAX_LEN"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.SlowLogMaxLen = n
		} else {
			warn("SLOWLOG_MAX_LEN", v, "not a non-negative integer")
		}
	}
	if v, ok := lookup("METRICS_ADDR"); ok {
		c.MetricsAddr = v
	}
	if v, ok := lookup("DATABASES"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Databases = n
		} else {
			warn("DATABASES", v, "not a positive integer")
		}
	}
	if v, ok := lookup("EXPIRE_SAMPLE_HZ"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.ExpireSampleHz = n
		} else {
			warn("EXPIRE_SAMPLE_HZ", v, "not a positive integer")
		}
	}
	if v, ok := lookup("EXPIRE_SAMPLE_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.ExpireSampleSize = n
		} else {
			warn("EXPIRE_SAMPLE_SIZE", v, "not a positive integer")
		}
	}
	if v, ok := lookup("EXPIRE_SAMPLE_BUDGET_MS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.ExpireSampleBudgetMS = n
		} else {
			warn("EXPIRE_SAMPLE_BUDGET_MS", v, "not a positive integer")
		}
	}
	if v, ok := lookup("EVICT_SAMPLE_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.EvictSampleSize = n
		} else {
			warn("EVICT_SAMPLE_SIZE", v, "not a positive integer")
		}
	}
	if v, ok := lookup("BULK_LIMIT_BYTES"); ok {
		if n, err := parseMem(v); err == nil && n > 0 {
			c.BulkLimitBytes = n
		} else {
			warn("BULK_LIMIT_BYTES", v, "not a positive size")
		}
	}
	if v, ok := lookup("ARRAY_LIMIT_LEN"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.ArrayLimitLen = n
		} else {
			warn("ARRAY_LIMIT_LEN", v, "not a positive integer")
		}
	}

	return c
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv("REDISKV_" + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// parseMem parses a byte-size string with an optional K/M/G suffix
// (case-insensitive; no suffix means bytes).
func parseMem(s string) (int64, error) {
	s = strings.TrimSpace(s)
	mult := int64(1)
	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "G"):
		mult = 1 << 30
		s = s[:len(s)-1]
	case strings.HasSuffix(upper, "M"):
		mult = 1 << 20
		s = s[:len(s)-1]
	case strings.HasSuffix(upper, "K"):
		mult = 1 << 10
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n * mult, nil
}
