package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of load runs and query runs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	BatchesTotal   *prometheus.CounterVec
	RowsTotal      *prometheus.CounterVec
	BatchDuration  *prometheus.HistogramVec
	TableDuration  *prometheus.GaugeVec
	QueriesTotal   *prometheus.CounterVec
	QueryDuration  *prometheus.HistogramVec
	QueryRowsTotal *prometheus.GaugeVec
}

// NewMetrics creates a private registry with the graphonauts collectors and the
// Go runtime collectors.
func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewGoCollector())
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: r}
	m.BatchesTotal = promauto.With(r).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphonauts_load_batches_total",
			Help: "Bulk writes issued, by outcome",
		},
		[]string{"backend", "kind", "status"}, // status: ok, failed
	)
	m.RowsTotal = promauto.With(r).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphonauts_load_rows_total",
			Help: "Records submitted in bulk writes, by outcome",
		},
		[]string{"backend", "kind", "status"},
	)
	m.BatchDuration = promauto.With(r).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphonauts_load_batch_duration_seconds",
			Help:    "Duration of one bulk write",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend", "kind"},
	)
	m.TableDuration = promauto.With(r).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graphonauts_load_table_duration_seconds",
			Help: "Wall-clock time of the last load of a table",
		},
		[]string{"backend", "table"},
	)
	m.QueriesTotal = promauto.With(r).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphonauts_queries_total",
			Help: "Catalogue queries executed, by outcome",
		},
		[]string{"backend", "category", "status"},
	)
	m.QueryDuration = promauto.With(r).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphonauts_query_duration_seconds",
			Help:    "Duration of one catalogue query",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"backend", "query"},
	)
	m.QueryRowsTotal = promauto.With(r).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graphonauts_query_rows",
			Help: "Rows returned by the last run of a catalogue query",
		},
		[]string{"backend", "query"},
	)
	return m
}

func status(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}

// ObserveBatch records one bulk write.
func (m *Metrics) ObserveBatch(backend, kind string, rows int, d time.Duration, err error) {
	if m == nil {
		return
	}
	s := status(err)
	m.BatchesTotal.WithLabelValues(backend, kind, s).Inc()
	m.RowsTotal.WithLabelValues(backend, kind, s).Add(float64(rows))
	m.BatchDuration.WithLabelValues(backend, kind).Observe(d.Seconds())
}

// ObserveTable records the wall-clock time of one table load.
func (m *Metrics) ObserveTable(backend, table string, d time.Duration) {
	if m == nil {
		return
	}
	m.TableDuration.WithLabelValues(backend, table).Set(d.Seconds())
}

// ObserveQuery records one catalogue query.
func (m *Metrics) ObserveQuery(backend, id, category string, rows int, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(backend, category, status(err)).Inc()
	m.QueryDuration.WithLabelValues(backend, id).Observe(d.Seconds())
	if err == nil {
		m.QueryRowsTotal.WithLabelValues(backend, id).Set(float64(rows))
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
