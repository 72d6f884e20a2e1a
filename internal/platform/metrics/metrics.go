// Package metrics exposes Prometheus instruments for the scheduler, the
// auction engine and the state store. A nil *Manager is a valid no-op.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "league_vault"

type Manager struct {
	registry *prometheus.Registry

	jobRuns          *prometheus.CounterVec
	jobDuration      *prometheus.HistogramVec
	auctionsResolved prometheus.Counter
	bidsCleared      prometheus.Counter
	playersSigned    prometheus.Counter
	storeWrites      *prometheus.CounterVec
	snapshots        *prometheus.CounterVec
	notifications    *prometheus.CounterVec
}

// New registers every instrument on a private registry.
func New() *Manager {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Manager{
		registry: reg,
		jobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "job_runs_total",
			Help:      "Scheduler job evaluations by outcome.",
		}, []string{"job", "outcome"}),
		jobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "job_duration_seconds",
			Help:      "Duration of scheduler jobs that reached the running state.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		auctionsResolved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auction",
			Name:      "resolved_total",
			Help:      "Auctions resolved by rollovers.",
		}),
		bidsCleared: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auction",
			Name:      "bids_cleared_total",
			Help:      "Bids removed from the free-agent pool by rollovers.",
		}),
		playersSigned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auction",
			Name:      "players_signed_total",
			Help:      "Free agents added to a roster by rollovers.",
		}),
		storeWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "State document writes by result.",
		}, []string{"result"}),
		snapshots: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "written_total",
			Help:      "Snapshots archived by source.",
		}, []string{"source"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "events_total",
			Help:      "Published league events by reason.",
		}, []string{"reason"}),
	}
}

func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Manager) ObserveJob(job, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
	if took > 0 {
		m.jobDuration.WithLabelValues(job).Observe(took.Seconds())
	}
}

func (m *Manager) ObserveRollover(auctions, cleared, signed int) {
	if m == nil {
		return
	}
	m.auctionsResolved.Add(float64(auctions))
	m.bidsCleared.Add(float64(cleared))
	m.playersSigned.Add(float64(signed))
}

func (m *Manager) ObserveStoreWrite(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeWrites.WithLabelValues(result).Inc()
}

func (m *Manager) ObserveSnapshot(source string) {
	if m == nil {
		return
	}
	m.snapshots.WithLabelValues(source).Inc()
}

func (m *Manager) ObserveNotification(reason string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(reason).Inc()
}
