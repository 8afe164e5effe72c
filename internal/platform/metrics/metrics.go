package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	LoginAttempts   *prometheus.CounterVec
	MfaVerifications *prometheus.CounterVec
	AuthFailures    prometheus.Counter
	PasswordResets  prometheus.Counter

	EventsCreated  prometheus.Counter
	EventUpdates   prometheus.Counter
	HistoryRecords prometheus.Counter
	FlightsApproved *prometheus.CounterVec

	EndpointLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "etp_login_attempts_total",
			Help: "Total number of login attempts, labeled by outcome",
		}, []string{"outcome"}),
		MfaVerifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "etp_mfa_verifications_total",
			Help: "Total number of MFA code verifications, labeled by outcome",
		}, []string{"outcome"}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "etp_auth_failures_total",
			Help: "Total number of authentication failures",
		}),
		PasswordResets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "etp_password_resets_total",
			Help: "Total number of temporary password resets",
		}),
		EventsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "etp_events_created_total",
			Help: "Total number of events created",
		}),
		EventUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "etp_event_updates_total",
			Help: "Total number of event updates applied",
		}),
		HistoryRecords: promauto.NewCounter(prometheus.CounterOpts{
			Name: "etp_history_records_total",
			Help: "Total number of budget history records written",
		}),
		FlightsApproved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "etp_flights_approved_total",
			Help: "Total number of flight approvals, labeled by mode (auto|manual)",
		}, []string{"mode"}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "etp_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// Middleware records per-endpoint request latency, labeled by the
// matched chi route pattern to keep label cardinality bounded.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			m.EndpointLatency.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
		})
	}
}
