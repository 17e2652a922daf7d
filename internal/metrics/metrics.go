// Package metrics exposes Prometheus collectors for the parse service.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/toozej/go-ehparse/internal/types"
)

// Parse result labels
const (
	ResultOK          = "ok"
	ResultParseFailed = "parse_failed"
	ResultUnknownKind = "unknown_kind"
	ResultError       = "error"
)

var (
	parsesTotal                *prometheus.CounterVec
	parseBytesTotal            *prometheus.CounterVec
	parseDurationSeconds       *prometheus.HistogramVec
	classificationsTotal       *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		parsesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ehparse_parses_total",
				Help: "Total number of page parses, labeled by page kind and result.",
			},
			[]string{"kind", "result"},
		)

		parseBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ehparse_parse_bytes_total",
				Help: "Total number of markup bytes parsed, labeled by page kind.",
			},
			[]string{"kind"},
		)

		parseDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ehparse_parse_duration_seconds",
				Help:    "Histogram of parse latencies, labeled by page kind.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
			},
			[]string{"kind"},
		)

		classificationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ehparse_classifications_total",
				Help: "Total number of classified server messages, labeled by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ehparse_http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ehparse_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"method"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ResultLabel maps a parse error onto its result label.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, types.ErrUnknownKind):
		return ResultUnknownKind
	case types.IsParseFailure(err):
		return ResultParseFailed
	default:
		return ResultError
	}
}

// ObserveParse records one parse call.
func ObserveParse(kind string, inputBytes int, duration time.Duration, err error) {
	parsesTotal.WithLabelValues(kind, ResultLabel(err)).Inc()
	if inputBytes > 0 {
		parseBytesTotal.WithLabelValues(kind).Add(float64(inputBytes))
	}
	parseDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveClassification records one classified message.
func ObserveClassification(kind, outcome string) {
	classificationsTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method).Observe(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latencies.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		ObserveHTTPRequest(r.Method, rec.code, time.Since(start))
	})
}
