package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveBatch(t *testing.T) {
	m := NewMetrics()

	m.ObserveBatch("neo4j", "lineitem", 1000, 20*time.Millisecond, nil)
	m.ObserveBatch("neo4j", "lineitem", 1000, 20*time.Millisecond, nil)
	m.ObserveBatch("neo4j", "lineitem", 1, time.Millisecond, errors.New("duplicate"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BatchesTotal.WithLabelValues("neo4j", "lineitem", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchesTotal.WithLabelValues("neo4j", "lineitem", "failed")))
	assert.Equal(t, 2000.0, testutil.ToFloat64(m.RowsTotal.WithLabelValues("neo4j", "lineitem", "ok")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BatchDuration))
}

func TestMetrics_ObserveQuery(t *testing.T) {
	m := NewMetrics()
	m.ObserveQuery("arangodb", "A1", "selection", 1, 3*time.Millisecond, nil)
	m.ObserveQuery("arangodb", "B1", "aggregation", 0, time.Millisecond, errors.New("syntax"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("arangodb", "selection", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("arangodb", "aggregation", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueryRowsTotal.WithLabelValues("arangodb", "A1")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBatch("neo4j", "region", 5, time.Millisecond, nil)
		m.ObserveTable("neo4j", "region", time.Second)
		m.ObserveQuery("neo4j", "A1", "selection", 1, time.Millisecond, nil)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveTable("nebula", "region", 2*time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `graphonauts_load_table_duration_seconds{backend="nebula",table="region"} 2`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
