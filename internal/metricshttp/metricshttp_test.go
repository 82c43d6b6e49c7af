package metricshttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/stats"
	"github.com/edirooss/rediskv-server/internal/store"
	"go.uber.org/zap"
)

func Test_Healthz_ReportsOK(t *testing.T) {
	t.Parallel()

	counters := stats.New()
	dbs := store.NewDBSet(1, 2, counters)
	e := New(zap.NewNop(), "127.0.0.1:0", counters, dbs)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.hs.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
}

func Test_Metrics_ReportsCountersAndKeyspace(t *testing.T) {
	t.Parallel()

	counters := stats.New()
	dbs := store.NewDBSet(2, 2, counters)
	dbs.Get(0).Set("k", store.StringValue("v"), 0)
	counters.IncrCommandsProcessed()

	e := New(zap.NewNop(), "127.0.0.1:0", counters, dbs)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.hs.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.EqualValues(t, 1, body["commands_processed"])

	keyspace, ok := body["keyspace"].(map[string]any)
	require.True(t, ok)
	db0, ok := keyspace["db0"].(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 1, db0["keys"])
}

func Test_DbIndexKey_FormatsWithDbPrefix(t *testing.T) {
	t.Parallel()

	require.Equal(t, "db0", dbIndexKey(0))
	require.Equal(t, "db7", dbIndexKey(7))
}
