package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// rediskv-admin bulk-deletes every key matching a glob pattern via
// SCAN+DEL, the same iterate-then-mutate shape as the teacher's
// bulk-delete CLI (cmd/bulk-delete), generalized from a fixed channel-ID
// range to an arbitrary key pattern against a standalone rediskv-server.
func main() {
	addr := flag.String("addr", "127.0.0.1:6379", "rediskv-server address")
	password := flag.String("password", "", "AUTH password, if one is configured")
	db := flag.Int("db", 0, "database index")
	pattern := flag.String("pattern", "", "glob pattern of keys to delete (required)")
	count := flag.Int64("scan-count", 1000, "SCAN COUNT hint per iteration")
	flag.Parse()

	if *pattern == "" {
		fmt.Println("Usage: ./rediskv-admin -pattern=<glob> [-addr=host:port] [-db=0] [-password=...]")
		os.Exit(1)
	}

	log := buildLogger()
	log = log.Named("main")

	client := redis.NewClient(&redis.Options{
		Addr:         *addr,
		Password:     *password,
		DB:           *db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MaxRetries:   3,
	})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("connection failed", zap.Error(err))
	}

	var cursor uint64
	var total int64
	for {
		iterStart := time.Now()

		keys, next, err := client.Scan(ctx, cursor, *pattern, *count).Result()
		if err != nil {
			log.Fatal("scan failed", zap.Uint64("cursor", cursor), zap.Error(err))
		}

		var deleted int64
		if len(keys) > 0 {
			deleted, err = client.Del(ctx, keys...).Result()
			if err != nil {
				log.Fatal("delete failed", zap.Strings("keys", keys), zap.Error(err))
			}
		}
		total += deleted

		log.Info("batch deleted",
			zap.Int("scanned", len(keys)),
			zap.Int64("deleted", deleted),
			zap.Int64("total", total),
			zap.Duration("took", time.Since(iterStart)),
		)

		cursor = next
		if cursor == 0 {
			break
		}
	}

	log.Info("done", zap.Int64("total_deleted", total))
}

func buildLogger() *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	logConfig.Level.SetLevel(zap.DebugLevel)
	return zap.Must(logConfig.Build())
}
