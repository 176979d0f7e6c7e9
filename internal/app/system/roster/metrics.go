package roster

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reasons recorded when a selection record is dropped during a join.
const (
	ReasonMissing      = "missing"
	ReasonLookupFailed = "lookup_failed"
)

// Metrics counts snapshot and join activity per event. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	snapshotsReceived  *prometheus.CounterVec
	snapshotsCommitted *prometheus.CounterVec
	snapshotsDiscarded *prometheus.CounterVec
	lookupWarnings     *prometheus.CounterVec
	channelFailures    *prometheus.CounterVec
	rosterSize         *prometheus.GaugeVec

	registerOnce sync.Once
}

// NewMetrics creates Metrics and registers them with registry. A nil
// registry yields metrics that are counted but not exported.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{}
	m.register(registry)
	return m
}

func (m *Metrics) register(registry prometheus.Registerer) {
	m.registerOnce.Do(func() {
		factory := promauto.With(registry)

		m.snapshotsReceived = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventroster_snapshots_received_total",
			Help: "Total number of selection snapshots delivered to a roster page",
		}, []string{"event"})

		m.snapshotsCommitted = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventroster_snapshots_committed_total",
			Help: "Total number of joined snapshots committed to a roster",
		}, []string{"event"})

		m.snapshotsDiscarded = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventroster_snapshots_discarded_total",
			Help: "Total number of joined snapshots discarded as stale or after stop",
		}, []string{"event"})

		m.lookupWarnings = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventroster_lookup_warnings_total",
			Help: "Total number of selection records dropped because their registration could not be resolved",
		}, []string{"event", "reason"})

		m.channelFailures = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventroster_channel_failures_total",
			Help: "Total number of change-feed failures that ended a roster subscription",
		}, []string{"event"})

		m.rosterSize = factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "eventroster_roster_size",
			Help: "Number of participants in the committed roster",
		}, []string{"event"})
	})
}

func (m *Metrics) snapshotReceived(event string) {
	if m != nil {
		m.snapshotsReceived.WithLabelValues(event).Inc()
	}
}

func (m *Metrics) snapshotCommitted(event string, size int) {
	if m != nil {
		m.snapshotsCommitted.WithLabelValues(event).Inc()
		m.rosterSize.WithLabelValues(event).Set(float64(size))
	}
}

func (m *Metrics) snapshotDiscarded(event string) {
	if m != nil {
		m.snapshotsDiscarded.WithLabelValues(event).Inc()
	}
}

func (m *Metrics) lookupWarning(event, reason string) {
	if m != nil {
		m.lookupWarnings.WithLabelValues(event, reason).Inc()
	}
}

func (m *Metrics) channelFailure(event string) {
	if m != nil {
		m.channelFailures.WithLabelValues(event).Inc()
	}
}

// Committed returns the committed-snapshot counter for event, for tests and
// diagnostics.
func (m *Metrics) Committed(event string) prometheus.Counter {
	return m.snapshotsCommitted.WithLabelValues(event)
}

// Discarded returns the discarded-snapshot counter for event.
func (m *Metrics) Discarded(event string) prometheus.Counter {
	return m.snapshotsDiscarded.WithLabelValues(event)
}

// LookupWarnings returns the lookup warning counter for event and reason.
func (m *Metrics) LookupWarnings(event, reason string) prometheus.Counter {
	return m.lookupWarnings.WithLabelValues(event, reason)
}

// ChannelFailures returns the feed failure counter for event.
func (m *Metrics) ChannelFailures(event string) prometheus.Counter {
	return m.channelFailures.WithLabelValues(event)
}
