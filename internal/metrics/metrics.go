// Package metrics exposes Prometheus instrumentation for backtest
// runs, mainly useful when sweeping parameters across many runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
	daysSimulated prometheus.Counter
	ordersTotal   *prometheus.CounterVec
	brokeragePaid prometheus.Counter
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fjord_backtest_runs_total",
				Help: "Total number of backtest runs",
			},
			[]string{"strategy", "status"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fjord_backtest_run_duration_seconds",
				Help:    "Backtest run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		daysSimulated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fjord_backtest_days_simulated_total",
				Help: "Total number of trading days simulated",
			},
		),

		ordersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fjord_backtest_orders_total",
				Help: "Total number of orders by action and outcome",
			},
			[]string{"action", "outcome"},
		),

		brokeragePaid: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fjord_backtest_brokerage_paid_total",
				Help: "Total brokerage fees paid across runs",
			},
		),
	}

	reg.MustRegister(r.runsTotal)
	reg.MustRegister(r.runDuration)
	reg.MustRegister(r.daysSimulated)
	reg.MustRegister(r.ordersTotal)
	reg.MustRegister(r.brokeragePaid)

	return r
}

// RecordRun records a completed or failed run and its duration.
func (r *Registry) RecordRun(strategy, status string, seconds float64) {
	r.runsTotal.WithLabelValues(strategy, status).Inc()
	r.runDuration.Observe(seconds)
}

// RecordDay counts one simulated trading day.
func (r *Registry) RecordDay() {
	r.daysSimulated.Inc()
}

// RecordOrder counts an order by action ("buy"/"sell") and outcome
// ("filled"/"open").
func (r *Registry) RecordOrder(action, outcome string) {
	r.ordersTotal.WithLabelValues(action, outcome).Inc()
}

// RecordBrokerage accumulates fees paid.
func (r *Registry) RecordBrokerage(amount float64) {
	r.brokeragePaid.Add(amount)
}

// Handler returns an HTTP handler serving the registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}
