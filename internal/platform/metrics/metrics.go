package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the portal. Services treat the
// struct as optional; a nil *Metrics disables instrumentation.
type Metrics struct {
	Logins                prometheus.Counter
	LoginFailures         prometheus.Counter
	Registrations         prometheus.Counter
	ApplicationsSubmitted prometheus.Counter
	ApplicationsUpdated   prometheus.Counter
	CacheHits             *prometheus.CounterVec
	CacheMisses           *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry.
// Call at most once per process; tests pass nil instead.
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gramseva_logins_total",
			Help: "Total number of successful logins, demo fallbacks included",
		}),
		LoginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gramseva_login_failures_total",
			Help: "Total number of rejected login attempts",
		}),
		Registrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gramseva_registrations_total",
			Help: "Total number of citizen registrations",
		}),
		ApplicationsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gramseva_applications_submitted_total",
			Help: "Total number of applications submitted by citizens",
		}),
		ApplicationsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gramseva_applications_updated_total",
			Help: "Total number of application updates, batch items included",
		}),
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gramseva_cache_hits_total",
			Help: "Cache hits by cache name",
		}, []string{"cache"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gramseva_cache_misses_total",
			Help: "Cache misses by cache name",
		}, []string{"cache"}),
	}
}

// IncCacheHit records a hit for the named cache.
func (m *Metrics) IncCacheHit(cache string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(cache).Inc()
}

// IncCacheMiss records a miss for the named cache.
func (m *Metrics) IncCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(cache).Inc()
}
