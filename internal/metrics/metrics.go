// Package metrics exposes Prometheus instrumentation for API calls and polling.
//
// All methods are safe on a nil *Metrics, so callers can leave metrics
// unconfigured without guarding every call site.
package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/watchfire-io/studiobar/internal/studio"
)

const namespace = "studiobar"

// Refresh outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeStale   = "stale"
	OutcomePartial = "partial"
)

var allStatuses = []studio.Status{
	studio.StatusPending,
	studio.StatusInitializing,
	studio.StatusRunning,
	studio.StatusStopping,
	studio.StatusStopped,
	studio.StatusFailed,
	studio.StatusUnknown,
}

// Metrics holds the collectors registered on its own registry.
type Metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	refreshes     *prometheus.CounterVec
	notifications prometheus.Counter
	status        *prometheus.GaugeVec
	fastPolling   prometheus.Gauge
}

// New creates a Metrics with all collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Control-plane API requests by operation and HTTP status code.",
		}, []string{"op", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Control-plane API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Completed status refreshes by outcome.",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Transition notifications emitted.",
		}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "studio_status",
			Help:      "1 for the currently observed studio status, 0 otherwise.",
		}, []string{"status"}),
		fastPolling: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fast_polling",
			Help:      "1 while the fast poll cadence is active.",
		}),
	}

	m.registry.MustRegister(m.requests, m.latency, m.refreshes, m.notifications, m.status, m.fastPolling)
	return m
}

// ObserveRequest implements studio.Observer.
func (m *Metrics) ObserveRequest(op string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// RefreshCompleted counts one finished refresh.
func (m *Metrics) RefreshCompleted(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

// NotificationSent counts one transition notification.
func (m *Metrics) NotificationSent() {
	if m == nil {
		return
	}
	m.notifications.Inc()
}

// SetStatus records the current status and poll cadence.
func (m *Metrics) SetStatus(current studio.Status, fast bool) {
	if m == nil {
		return
	}
	for _, s := range allStatuses {
		v := 0.0
		if s == current {
			v = 1
		}
		m.status.WithLabelValues(string(s)).Set(v)
	}
	if fast {
		m.fastPolling.Set(1)
	} else {
		m.fastPolling.Set(0)
	}
}

// Handler returns the HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[metrics] Serving on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
