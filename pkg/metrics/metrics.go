package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "videoauth",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 1.5, 2, 5},
		},
		[]string{"method", "route", "code"},
	)
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "videoauth", Name: "http_requests_total", Help: "Total number of HTTP requests."},
		[]string{"method", "route", "code"},
	)
	HTTPRequestErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "videoauth", Name: "http_request_errors_total", Help: "Number of HTTP requests answered with a 4xx or 5xx status."},
		[]string{"method", "route", "code"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "videoauth", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "videoauth", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequestDuration)
	reg.MustRegister(HTTPRequestsTotal)
	reg.MustRegister(HTTPRequestErrors)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
