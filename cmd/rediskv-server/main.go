package main

import (
	"context"
	"time"

	"github.com/edirooss/rediskv-server/internal/config"
	"github.com/edirooss/rediskv-server/internal/dispatch"
	"github.com/edirooss/rediskv-server/internal/evict"
	"github.com/edirooss/rediskv-server/internal/expire"
	"github.com/edirooss/rediskv-server/internal/metricshttp"
	"github.com/edirooss/rediskv-server/internal/pubsub"
	"github.com/edirooss/rediskv-server/internal/server"
	"github.com/edirooss/rediskv-server/internal/session"
	"github.com/edirooss/rediskv-server/internal/slowlog"
	"github.com/edirooss/rediskv-server/internal/snapshot"
	"github.com/edirooss/rediskv-server/internal/stats"
	"github.com/edirooss/rediskv-server/internal/store"
	"github.com/edirooss/rediskv-server/internal/txn"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shardsPerDB = 16

func main() {
	log := buildLogger()
	log = log.Named("main")

	cfg := config.Load(func(key, raw, reason string) {
		log.Warn("ignoring invalid config value", zap.String("key", key), zap.String("raw", raw), zap.String("reason", reason))
	})

	counters := stats.New()
	dbs := store.NewDBSet(cfg.Databases, shardsPerDB, counters)
	coord := txn.NewCoordinator()
	hub := pubsub.NewHub(log)
	sl := slowlog.New(cfg.SlowLogMaxLen, cfg.SlowLogSlowerThanUS)
	ev := evict.New(cfg.EvictSampleSize, counters)
	saver := snapshot.NewSaver(log, cfg.RDBPath, &snapshot.Store{DBs: dbs})
	idAlloc := &session.IDAllocator{}

	if err := snapshot.Load(log, cfg.RDBPath, dbs); err != nil {
		log.Warn("snapshot load failed, starting with an empty keyspace", zap.Error(err))
	}

	disp := dispatch.New(log, cfg, dbs, coord, hub, counters, sl, ev, saver, idAlloc)

	sampler := expire.New(log, dbs, counters,
		time.Second/time.Duration(cfg.ExpireSampleHz),
		cfg.ExpireSampleSize,
		time.Duration(cfg.ExpireSampleBudgetMS)*time.Millisecond,
	)

	srv := server.New(log, cfg, disp, sampler, saver)

	if cfg.MetricsAddr != "" {
		mh := metricshttp.New(log, cfg.MetricsAddr, counters, dbs)
		go mh.Run()
	}

	if err := srv.Run(context.Background()); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// buildLogger mirrors the development-console logger every entrypoint in
// this codebase uses: colorized levels, no timestamp/caller noise.
func buildLogger() *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	logConfig.Level.SetLevel(zap.InfoLevel)
	return zap.Must(logConfig.Build())
}
