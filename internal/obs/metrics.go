package obs

import (
	"sync/atomic"
	"time"

	"main/internal/schema"
)

const maxMessageType = int(schema.MessageHeartbeat)

// Metrics collects lightweight counters and latency stats across the
// pipeline. All methods are safe from any goroutine.
type Metrics struct {
	messageCounts [maxMessageType + 1]uint64
	bytesConsumed uint64

	signalsEmitted uint64
	signalsDenied  uint64

	ordersSubmitted uint64
	ordersCanceled  uint64
	reportsEmitted  uint64

	logDrops     uint64
	captureDrops uint64

	ingestLatency    LatencyStats
	orderFlowLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	MessageCounts    map[schema.MessageType]uint64
	BytesConsumed    uint64
	SignalsEmitted   uint64
	SignalsDenied    uint64
	OrdersSubmitted  uint64
	OrdersCanceled   uint64
	ReportsEmitted   uint64
	LogDrops         uint64
	CaptureDrops     uint64
	IngestLatency    LatencySnapshot
	OrderFlowLatency LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveMessage counts one parsed feed message.
func (m *Metrics) ObserveMessage(t schema.MessageType) {
	if m == nil {
		return
	}
	idx := int(t)
	if idx >= 0 && idx < len(m.messageCounts) {
		atomic.AddUint64(&m.messageCounts[idx], 1)
	}
}

// AddBytesConsumed accounts for feed bytes handed to the parser.
func (m *Metrics) AddBytesConsumed(n int) {
	if m == nil || n <= 0 {
		return
	}
	atomic.AddUint64(&m.bytesConsumed, uint64(n))
}

// IncSignal counts a strategy signal.
func (m *Metrics) IncSignal() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.signalsEmitted, 1)
}

// IncSignalDenied counts a signal stopped by the risk gate.
func (m *Metrics) IncSignalDenied() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.signalsDenied, 1)
}

// IncOrderSubmitted counts an order handed to the execution engine.
func (m *Metrics) IncOrderSubmitted() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ordersSubmitted, 1)
}

// IncOrderCanceled counts a successful cancel.
func (m *Metrics) IncOrderCanceled() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ordersCanceled, 1)
}

// IncReport counts one execution report delivered to the callback.
func (m *Metrics) IncReport() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.reportsEmitted, 1)
}

// IncLogDrop records a log line lost to back-pressure.
func (m *Metrics) IncLogDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.logDrops, 1)
}

// IncCaptureDrop records a feed batch the capture writer had to drop.
func (m *Metrics) IncCaptureDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.captureDrops, 1)
}

// ObserveIngest measures one ingest batch.
func (m *Metrics) ObserveIngest(d time.Duration) {
	if m == nil {
		return
	}
	m.ingestLatency.Observe(d)
}

// ObserveOrderFlow measures submit-to-terminal order latency.
func (m *Metrics) ObserveOrderFlow(d time.Duration) {
	if m == nil {
		return
	}
	m.orderFlowLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	messageCounts := make(map[schema.MessageType]uint64)
	for i := range m.messageCounts {
		if v := atomic.LoadUint64(&m.messageCounts[i]); v > 0 {
			messageCounts[schema.MessageType(i)] = v
		}
	}
	return Snapshot{
		MessageCounts:    messageCounts,
		BytesConsumed:    atomic.LoadUint64(&m.bytesConsumed),
		SignalsEmitted:   atomic.LoadUint64(&m.signalsEmitted),
		SignalsDenied:    atomic.LoadUint64(&m.signalsDenied),
		OrdersSubmitted:  atomic.LoadUint64(&m.ordersSubmitted),
		OrdersCanceled:   atomic.LoadUint64(&m.ordersCanceled),
		ReportsEmitted:   atomic.LoadUint64(&m.reportsEmitted),
		LogDrops:         atomic.LoadUint64(&m.logDrops),
		CaptureDrops:     atomic.LoadUint64(&m.captureDrops),
		IngestLatency:    m.ingestLatency.Snapshot(),
		OrderFlowLatency: m.orderFlowLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
