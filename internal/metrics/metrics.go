// Package metrics holds the Prometheus collectors for the NoteKeeper server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth event labels.
const (
	AuthRegister     = "register"
	AuthLoginSuccess = "login_success"
	AuthLoginFailure = "login_failure"
	AuthTokenInvalid = "token_invalid"
	AuthAccountGone  = "account_deleted"
)

// Password reset event labels.
const (
	ResetRequested = "requested"
	ResetIssued    = "issued"
	ResetConfirmed = "confirmed"
	ResetRejected  = "rejected"
	ResetPurged    = "purged"
)

// Metrics owns a private registry and the application collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	authEvents   *prometheus.CounterVec
	resetEvents  *prometheus.CounterVec
	cascades     *prometheus.CounterVec
}

// New creates and registers the collectors on a fresh registry.
func New() *Metrics {
	// A private registry keeps tests and multiple containers isolated.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notekeeper_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "notekeeper_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		authEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notekeeper_auth_events_total",
				Help: "Authentication events by kind",
			},
			[]string{"event"},
		),
		resetEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notekeeper_password_reset_events_total",
				Help: "Password reset token lifecycle events by kind",
			},
			[]string{"event"},
		),
		cascades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notekeeper_cascade_deleted_rows_total",
				Help: "Rows removed by cascading deletes, by entity",
			},
			[]string{"entity"},
		),
	}

	reg.MustRegister(m.httpRequests, m.httpDuration, m.authEvents, m.resetEvents, m.cascades)
	return m
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Middleware records request counts and latency labelled by the chi route
// pattern, so ids in paths do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// AuthEvent counts one authentication event.
func (m *Metrics) AuthEvent(event string) {
	if m == nil {
		return
	}
	m.authEvents.WithLabelValues(event).Inc()
}

// ResetEvent adds n password reset events.
func (m *Metrics) ResetEvent(event string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.resetEvents.WithLabelValues(event).Add(float64(n))
}

// CascadeDeleted adds counts of rows removed by a cascading delete.
func (m *Metrics) CascadeDeleted(books, chapters, notes, tags, resetTokens int64) {
	if m == nil {
		return
	}
	for entity, n := range map[string]int64{
		"book":        books,
		"chapter":     chapters,
		"note":        notes,
		"tag":         tags,
		"reset_token": resetTokens,
	} {
		if n > 0 {
			m.cascades.WithLabelValues(entity).Add(float64(n))
		}
	}
}
