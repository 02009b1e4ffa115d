package tenantdb

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

// Metrics records session and commit activity per module. Tenants are not
// a label; their number is unbounded.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	SessionsOpened *prometheus.CounterVec
	OpenDuration   *prometheus.HistogramVec
	OpenSessions   *prometheus.GaugeVec
	Commits        *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		SessionsOpened: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tenantdb",
				Name:      "sessions_opened_total",
				Help:      "Tenant session open attempts.",
			},
			[]string{"module", "result"}, // result=ok/required/not_found/inactive/unavailable
		),
		OpenDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tenantdb",
				Name:      "session_open_duration_seconds",
				Help:      "Time spent looking up the tenant and connecting.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"module"},
		),
		OpenSessions: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "tenantdb",
				Name:      "open_sessions",
				Help:      "Sessions currently holding a tenant connection.",
			},
			[]string{"module"},
		),
		Commits: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tenantdb",
				Name:      "commits_total",
				Help:      "Unit of work commit attempts.",
			},
			[]string{"module", "result"}, // result=ok/conflict/unavailable/error
		),
	}
}

func (m *Metrics) sessionOpened(module, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.SessionsOpened.WithLabelValues(module, result).Inc()
	m.OpenDuration.WithLabelValues(module).Observe(d.Seconds())
	if result == resultOK {
		m.OpenSessions.WithLabelValues(module).Inc()
	}
}

func (m *Metrics) sessionClosed(module string) {
	if m == nil {
		return
	}
	m.OpenSessions.WithLabelValues(module).Dec()
}

// ObserveCommit records the outcome of a commit on module.
func (m *Metrics) ObserveCommit(module string, err error) {
	if m == nil {
		return
	}
	m.Commits.WithLabelValues(module, resultOf(err)).Inc()
}

const resultOK = "ok"

func resultOf(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, ErrPersistenceConflict):
		return "conflict"
	case errors.Is(err, ErrPersistenceUnavailable):
		return "unavailable"
	case errors.Is(err, tenant.ErrTenantRequired):
		return "required"
	case errors.Is(err, tenant.ErrTenantNotFound):
		return "not_found"
	case errors.Is(err, tenant.ErrTenantInactive):
		return "inactive"
	default:
		return "error"
	}
}
