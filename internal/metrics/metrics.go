// Package metrics holds the Prometheus collectors. It is a leaf package so
// the store, strategy and HTTP layers can all record into it.
package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "In-flight requests by method and path",
	}, []string{"method", "path"})

	// outcome: authenticated | rejected | fault
	AuthAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_attempts_total",
		Help: "Authentication attempts by strategy and outcome",
	}, []string{"strategy", "outcome"})

	// result: found | not_found | timeout | cancelled | error
	StoreLookupDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_lookup_duration_seconds",
		Help:    "User directory lookup latency",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 3, 5},
	}, []string{"op", "result"})

	RateLimitRejectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limit_rejects_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"path"})
)

// Register registers every collector on reg (or the default registry if nil)
// and returns the /metrics handler. Registering twice is not an error.
func Register(reg prometheus.Registerer) (http.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPInflight,
		AuthAttemptsTotal,
		StoreLookupDuration,
		RateLimitRejectsTotal,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(g, promhttp.HandlerOpts{}), nil
	}
	return promhttp.Handler(), nil
}

// RecordAuthAttempt counts one strategy resolution.
func RecordAuthAttempt(strategy, outcome string) {
	AuthAttemptsTotal.WithLabelValues(strategy, outcome).Inc()
}

// ObserveStoreLookup records the latency of one directory lookup.
func ObserveStoreLookup(op, result string, d time.Duration) {
	StoreLookupDuration.WithLabelValues(op, result).Observe(d.Seconds())
}

// RecordRateLimitReject counts a request refused by the limiter.
func RecordRateLimitReject(path string) {
	RateLimitRejectsTotal.WithLabelValues(NormalizePath(path)).Inc()
}

// ObserveHTTP records a finished request.
func ObserveHTTP(method, path string, status int, d time.Duration) {
	method = strings.ToUpper(method)
	HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

var (
	uuidSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE   = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)
)

// NormalizePath collapses ids and tokens in a path into ":param" to keep
// label cardinality bounded.
func NormalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	if clean == "" || clean == "/" {
		return "/"
	}

	var out []string
	for _, seg := range strings.Split(clean, "/") {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 {
		return true
	}
	if uuidSegmentRE.MatchString(seg) || hexSegmentRE.MatchString(seg) || tokenSegmentRE.MatchString(seg) {
		return true
	}
	if _, err := strconv.Atoi(seg); err == nil {
		return true
	}
	return false
}
