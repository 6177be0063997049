package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elisartix/herder/internal/logger"
)

// Collector manages the Prometheus metrics for the coordinator.
type Collector struct {
	commandsTotal    *prometheus.CounterVec
	commandDuration  *prometheus.HistogramVec
	fanoutOpsTotal   *prometheus.CounterVec
	rosterSize       prometheus.Gauge
	dailySendsTotal  *prometheus.CounterVec
	enkaFetchesTotal *prometheus.CounterVec
}

// NewCollector registers the metric set. A nil registry uses the global one.
func NewCollector(registry *prometheus.Registry) *Collector {
	var factory promauto.Factory
	if registry == nil {
		factory = promauto.With(prometheus.DefaultRegisterer)
	} else {
		factory = promauto.With(registry)
	}
	return &Collector{
		commandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "herder_commands_total",
				Help: "Total number of controller commands processed",
			},
			[]string{"command", "status"},
		),
		commandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "herder_command_duration_seconds",
				Help:    "Command handling duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		fanoutOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "herder_fanout_ops_total",
				Help: "Per-account fan-out operations by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		rosterSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "herder_roster_size",
				Help: "Number of usable sessions in the roster",
			},
		),
		dailySendsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "herder_daily_sends_total",
				Help: "Scheduled daily sends by outcome",
			},
			[]string{"status"},
		),
		enkaFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "herder_enka_fetches_total",
				Help: "Enka.Network profile fetches by outcome",
			},
			[]string{"status"},
		),
	}
}

func (c *Collector) RecordCommand(command, status string, duration time.Duration) {
	c.commandsTotal.WithLabelValues(command, status).Inc()
	c.commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

func (c *Collector) RecordFanout(kind string, ok, total int) {
	c.fanoutOpsTotal.WithLabelValues(kind, "ok").Add(float64(ok))
	c.fanoutOpsTotal.WithLabelValues(kind, "failed").Add(float64(total - ok))
}

func (c *Collector) SetRosterSize(n int) {
	c.rosterSize.Set(float64(n))
}

func (c *Collector) RecordDailySend(status string) {
	c.dailySendsTotal.WithLabelValues(status).Inc()
}

func (c *Collector) RecordEnkaFetch(status string) {
	c.enkaFetchesTotal.WithLabelValues(status).Inc()
}

// Serve exposes /metrics on addr. Runs until the listener fails.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("metrics endpoint listening", map[string]interface{}{"addr": addr})
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics endpoint failed", map[string]interface{}{"error": err.Error()})
	}
}
