package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	eventsIngested       atomic.Uint64
	tradesSettled        atomic.Uint64
	settlementsRejected  atomic.Uint64
	feedReconnects       atomic.Uint64
	maintenanceFailures  atomic.Uint64

	// Settlement latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	activeConnections atomic.Int32
	feedConnected     atomic.Int32 // 1 = connected, 0 = disconnected
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordEventIngested records one feed event received.
func (m *Metrics) RecordEventIngested() {
	m.eventsIngested.Add(1)
}

// RecordSettlement records a successful settlement with its latency.
func (m *Metrics) RecordSettlement(latencyNs int64) {
	m.tradesSettled.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordSettlementRejected records a refused settlement (funds, position or
// state-transition failure).
func (m *Metrics) RecordSettlementRejected() {
	m.settlementsRejected.Add(1)
}

// RecordFeedReconnect records one reconnect cycle of the feed worker.
func (m *Metrics) RecordFeedReconnect() {
	m.feedReconnects.Add(1)
}

// RecordMaintenanceFailure records a failed maintenance sub-task.
func (m *Metrics) RecordMaintenanceFailure() {
	m.maintenanceFailures.Add(1)
}

// IncrementConnections increments active connections by 1.
func (m *Metrics) IncrementConnections() {
	m.activeConnections.Add(1)
}

// DecrementConnections decrements active connections by 1.
func (m *Metrics) DecrementConnections() {
	m.activeConnections.Add(-1)
}

// SetFeedConnected sets the feed connectivity gauge.
func (m *Metrics) SetFeedConnected(connected bool) {
	if connected {
		m.feedConnected.Store(1)
	} else {
		m.feedConnected.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	EventsIngested      uint64
	TradesSettled       uint64
	SettlementsRejected uint64
	FeedReconnects      uint64
	MaintenanceFailures uint64
	AvgLatencyNs        int64
	ActiveConnections   int32
	FeedConnected       bool
	Timestamp           time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		EventsIngested:      m.eventsIngested.Load(),
		TradesSettled:       m.tradesSettled.Load(),
		SettlementsRejected: m.settlementsRejected.Load(),
		FeedReconnects:      m.feedReconnects.Load(),
		MaintenanceFailures: m.maintenanceFailures.Load(),
		AvgLatencyNs:        avgLatency,
		ActiveConnections:   m.activeConnections.Load(),
		FeedConnected:       m.feedConnected.Load() == 1,
		Timestamp:           time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.eventsIngested.Store(0)
	m.tradesSettled.Store(0)
	m.settlementsRejected.Store(0)
	m.feedReconnects.Store(0)
	m.maintenanceFailures.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.activeConnections.Store(0)
	m.feedConnected.Store(0)
}
