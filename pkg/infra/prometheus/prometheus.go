package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Store latency buckets in milliseconds
	latencyBuckets = []float64{
		0.5, 1, 2.5, // Local redis
		5, 10, 25, // Normal network round trips
		50, 100, 250, // Slow, close to the default store timeout
		500, 1000, // Timed out
	}

	ChecksTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "banhammer_checks_total",
			Help: "Threshold checks by metric, operation and result",
		},
		[]string{"metric", "operation", "result"},
	)

	BreachesTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "banhammer_breaches_total",
			Help: "Threshold breaches by metric and threshold index",
		},
		[]string{"metric", "threshold"},
	)

	ActionFailuresTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "banhammer_action_failures_total",
			Help: "Breach actions that returned an error or panicked",
		},
		[]string{"action"},
	)

	StoreErrorsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "banhammer_store_errors_total",
			Help: "Counter store calls that failed or timed out",
		},
		[]string{"operation"},
	)

	StoreLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "banhammer_store_latency_ms",
			Help:    "Counter store call latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"operation"},
	)
)

type MetricsConfig struct {
	EnableStoreLatency bool `mapstructure:"enable_store_latency"`
	EnableProcess      bool `mapstructure:"enable_process"`
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableStoreLatency: true,
		EnableProcess:      true,
	}
}

func Initialize(cfg MetricsConfig) {
	if cfg.EnableProcess {
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}

func Gatherer() prometheus.Gatherer {
	return registry
}

// Recorder reports engine measurements to the package registry.
type Recorder struct {
	cfg MetricsConfig
}

func NewRecorder(cfg MetricsConfig) *Recorder {
	return &Recorder{cfg: cfg}
}

func (r *Recorder) ObserveCheck(metric, operation string, passed bool) {
	result := "passed"
	if !passed {
		result = "breached"
	}
	ChecksTotal.WithLabelValues(metric, operation, result).Inc()
}

func (r *Recorder) ObserveBreach(metric string, threshold int) {
	BreachesTotal.WithLabelValues(metric, strconv.Itoa(threshold)).Inc()
}

func (r *Recorder) ObserveActionFailure(action string) {
	ActionFailuresTotal.WithLabelValues(action).Inc()
}

func (r *Recorder) ObserveStoreError(operation string) {
	StoreErrorsTotal.WithLabelValues(operation).Inc()
}

func (r *Recorder) ObserveStoreLatency(operation string, elapsed time.Duration) {
	if !r.cfg.EnableStoreLatency {
		return
	}
	StoreLatency.WithLabelValues(operation).Observe(float64(elapsed.Microseconds()) / 1000)
}
