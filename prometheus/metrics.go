package prometheus

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Permission check counter by outcome
	PermissionCheckCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "divisadero_permission_checks_total",
			Help: "Total number of permission checks by outcome",
		},
		[]string{"result"}, // "granted", "denied", "error"
	)

	// Invite counter by outcome
	InviteCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "divisadero_invites_total",
			Help: "Total number of invitation attempts by outcome",
		},
		[]string{"outcome"}, // "provider_email", "fallback_email", "link_only", "failed"
	)

	// Authentication error counter
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "divisadero_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "missing_header", "invalid_format", "invalid_token"
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "divisadero_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"path", "method", "status"},
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "divisadero_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)

// InitMetrics registers all metrics with the default registry
func InitMetrics() {
	prometheus.MustRegister(PermissionCheckCounter)
	prometheus.MustRegister(InviteCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(RequestDuration)
}

// RecordPermissionCheck increments the permission check counter
func RecordPermissionCheck(result string) {
	PermissionCheckCounter.WithLabelValues(result).Inc()
}

// RecordInvite increments the invite counter
func RecordInvite(outcome string) {
	InviteCounter.WithLabelValues(outcome).Inc()
}

// RecordAuthError increments the auth error counter
func RecordAuthError(errorType string) {
	AuthErrorCounter.WithLabelValues(errorType).Inc()
}

// MetricsMiddleware creates an Echo middleware that records HTTP request metrics
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			method := c.Request().Method
			path := c.Path()

			HTTPRequestCounter.WithLabelValues(path, method, status).Inc()
			RequestDuration.WithLabelValues(path, method, status).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// Handler returns the HTTP handler exposing the metrics endpoint
func Handler() echo.HandlerFunc {
	h := promhttp.Handler()
	return func(c echo.Context) error {
		h.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}
