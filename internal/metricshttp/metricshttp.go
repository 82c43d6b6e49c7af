// Package metricshttp is the optional HTTP surface for health checks and
// counter inspection, separate from the RESP2 port. Grounded on the
// teacher's cmd/zmux-server/main.go gin construction (gin.New, Recovery
// first, a ZapLogger middleware, plain r.GET handlers returning
// gin.H-shaped JSON) reused here for a much smaller route set.
package metricshttp

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/edirooss/rediskv-server/internal/stats"
	"github.com/edirooss/rediskv-server/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Exporter serves /healthz and /metrics on its own address.
type Exporter struct {
	log  *zap.Logger
	addr string
	hs   *http.Server
}

func New(log *zap.Logger, addr string, counters *stats.Counters, dbs *store.DBSet) *Exporter {
	log = log.Named("metricshttp")

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", func(c *gin.Context) {
		snap := counters.Snapshot()
		keyspace := make(gin.H, dbs.Count())
		for i, ks := range dbs.All() {
			keyspace[dbIndexKey(i)] = gin.H{"keys": ks.DBSize(), "bytes": ks.EstimatedBytes()}
		}
		c.JSON(http.StatusOK, gin.H{
			"commands_processed": snap.CommandsProcessed,
			"keyspace_hits":      snap.KeyspaceHits,
			"keyspace_misses":    snap.KeyspaceMisses,
			"expired_keys":       snap.ExpiredKeys,
			"evicted_keys":       snap.EvictedKeys,
			"mutations":          snap.Mutations,
			"keyspace":           keyspace,
		})
	})

	return &Exporter{
		log:  log,
		addr: addr,
		hs: &http.Server{
			Addr:           addr,
			Handler:        r,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   15 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 15,
			ErrorLog:       zap.NewStdLog(log.WithOptions(zap.AddCallerSkip(1))),
		},
	}
}

// Run serves until the listener fails; callers run it in its own
// goroutine since a metrics exporter's failure shouldn't take the RESP2
// server down with it.
func (e *Exporter) Run() {
	e.log.Info("metrics http listening", zap.String("addr", e.addr))
	if err := e.hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.log.Error("metrics http server failed", zap.Error(err))
	}
}

func dbIndexKey(i int) string {
	return "db" + strconv.Itoa(i)
}

func zapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
