package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the engine's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coachflow",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coachflow",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	evaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coachflow",
			Subsystem: "achievements",
			Name:      "evaluations_total",
			Help:      "Achievement evaluations by outcome.",
		},
		[]string{"result"},
	)

	awards = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coachflow",
			Subsystem: "achievements",
			Name:      "awarded_total",
			Help:      "Achievements newly written to the award ledger.",
		},
		[]string{"criteria_type"},
	)

	sweepRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coachflow",
			Subsystem: "workflow",
			Name:      "sweep_rows_total",
			Help:      "Due workflow rows processed by the sweep, by status.",
		},
		[]string{"status"},
	)

	sweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "coachflow",
			Subsystem: "workflow",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of a full due sweep.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)

	cardsFinalized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coachflow",
			Subsystem: "cards",
			Name:      "finalized_total",
			Help:      "Review cards released to clients.",
		},
		[]string{"card_type"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		evaluations,
		awards,
		sweepRows,
		sweepDuration,
		cardsFinalized,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the handler with request count and latency metrics.
// Paths are labelled by route pattern to keep cardinality bounded.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func RecordEvaluation(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	evaluations.WithLabelValues(result).Inc()
}

func RecordAward(criteriaType string) {
	awards.WithLabelValues(criteriaType).Inc()
}

func RecordSweepRow(status string) {
	sweepRows.WithLabelValues(status).Inc()
}

func ObserveSweep(d time.Duration) {
	sweepDuration.Observe(d.Seconds())
}

func RecordCardFinalized(cardType string) {
	cardsFinalized.WithLabelValues(cardType).Inc()
}
