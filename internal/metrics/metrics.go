package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	RowsRead     prometheus.Counter
	RowsDropped  prometheus.Counter
	RunsTotal    prometheus.Counter
	RunFailures  prometheus.Counter
	RunSeconds   prometheus.Histogram
	PairsIndexed prometheus.Counter
	LastRunRows  prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	rowsRead := prometheus.NewCounter(prometheus.CounterOpts{Name: "uplens_rows_read_total"})
	rowsDropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "uplens_rows_dropped_total"})
	runs := prometheus.NewCounter(prometheus.CounterOpts{Name: "uplens_runs_total"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "uplens_run_failures_total"})
	runSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "uplens_run_seconds",
		Buckets: prometheus.DefBuckets,
	})
	pairs := prometheus.NewCounter(prometheus.CounterOpts{Name: "uplens_pairs_indexed_total"})
	lastRows := prometheus.NewGauge(prometheus.GaugeOpts{Name: "uplens_last_run_rows"})

	r.MustRegister(rowsRead, rowsDropped, runs, failures, runSeconds, pairs, lastRows)
	return &Registry{
		reg:          r,
		RowsRead:     rowsRead,
		RowsDropped:  rowsDropped,
		RunsTotal:    runs,
		RunFailures:  failures,
		RunSeconds:   runSeconds,
		PairsIndexed: pairs,
		LastRunRows:  lastRows,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
