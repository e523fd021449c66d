package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SnapshotOutcome describes what happened to a snapshot fetch result
type SnapshotOutcome string

const (
	SnapshotApplied   SnapshotOutcome = "applied"
	SnapshotDiscarded SnapshotOutcome = "discarded" // live data arrived first
	SnapshotFailed    SnapshotOutcome = "failed"
	SnapshotCancelled SnapshotOutcome = "cancelled" // view unmounted before resolution
)

// Collector defines the interface for collecting reconciliation metrics
type Collector interface {
	RecordPushEvent(event string, accepted bool)
	RecordListeners(count int)
	RecordConnectionError()
	RecordSnapshot(view string, outcome SnapshotOutcome)
	RecordLiveApplied(view string)
	RecordLoadingTimeout(view string)
}

// NoOpCollector is a no-op implementation for when metrics aren't needed
type NoOpCollector struct{}

func (NoOpCollector) RecordPushEvent(event string, accepted bool)         {}
func (NoOpCollector) RecordListeners(count int)                           {}
func (NoOpCollector) RecordConnectionError()                              {}
func (NoOpCollector) RecordSnapshot(view string, outcome SnapshotOutcome) {}
func (NoOpCollector) RecordLiveApplied(view string)                       {}
func (NoOpCollector) RecordLoadingTimeout(view string)                    {}

// OrNoOp returns c, or a NoOpCollector when c is nil
func OrNoOp(c Collector) Collector {
	if c == nil {
		return NoOpCollector{}
	}
	return c
}

// Prometheus implements Collector using the Prometheus client library
type Prometheus struct {
	pushEvents       *prometheus.CounterVec
	listeners        prometheus.Gauge
	connectionErrors prometheus.Counter
	snapshots        *prometheus.CounterVec
	liveApplied      *prometheus.CounterVec
	loadingTimeouts  *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them with reg
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	m := &Prometheus{
		pushEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gameday",
			Name:      "push_events_total",
			Help:      "Push events received, by event name and whether they were accepted.",
		}, []string{"event", "status"}),
		listeners: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gameday",
			Name:      "live_listeners",
			Help:      "Listeners currently registered on the shared connection.",
		}),
		connectionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gameday",
			Name:      "live_connection_errors_total",
			Help:      "Connection errors reported by the push transport.",
		}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gameday",
			Name:      "snapshots_total",
			Help:      "Snapshot results per view and outcome.",
		}, []string{"view", "outcome"}),
		liveApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gameday",
			Name:      "live_updates_applied_total",
			Help:      "Push updates applied to a view.",
		}, []string{"view"}),
		loadingTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gameday",
			Name:      "loading_timeouts_total",
			Help:      "Views that gave up waiting for initial data.",
		}, []string{"view"}),
	}

	reg.MustRegister(m.pushEvents, m.listeners, m.connectionErrors, m.snapshots, m.liveApplied, m.loadingTimeouts)
	return m
}

func (m *Prometheus) RecordPushEvent(event string, accepted bool) {
	status := "accepted"
	if !accepted {
		status = "dropped"
	}
	m.pushEvents.WithLabelValues(event, status).Inc()
}

func (m *Prometheus) RecordListeners(count int) {
	m.listeners.Set(float64(count))
}

func (m *Prometheus) RecordConnectionError() {
	m.connectionErrors.Inc()
}

func (m *Prometheus) RecordSnapshot(view string, outcome SnapshotOutcome) {
	m.snapshots.WithLabelValues(view, string(outcome)).Inc()
}

func (m *Prometheus) RecordLiveApplied(view string) {
	m.liveApplied.WithLabelValues(view).Inc()
}

func (m *Prometheus) RecordLoadingTimeout(view string) {
	m.loadingTimeouts.WithLabelValues(view).Inc()
}
