package messenger

import "sync/atomic"

type MetricsSnapshot struct {
	Sent     int64
	Received int64
	Requests int64
	Replies  int64
	Timeouts int64
	Dropped  int64
	Pending  int64
}

type Metrics struct {
	sent     atomic.Int64
	received atomic.Int64
	requests atomic.Int64
	replies  atomic.Int64
	timeouts atomic.Int64
	dropped  atomic.Int64
	pending  atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordSent(delta int) {
	m.sent.Add(int64(delta))
}

func (m *Metrics) RecordReceived(delta int) {
	m.received.Add(int64(delta))
}

func (m *Metrics) RecordRequest(delta int) {
	m.requests.Add(int64(delta))
}

func (m *Metrics) RecordReply(delta int) {
	m.replies.Add(int64(delta))
}

func (m *Metrics) RecordTimeout(delta int) {
	m.timeouts.Add(int64(delta))
}

func (m *Metrics) RecordDropped(delta int) {
	m.dropped.Add(int64(delta))
}

func (m *Metrics) RecordPending(delta int) {
	m.pending.Add(int64(delta))
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Sent:     m.sent.Load(),
		Received: m.received.Load(),
		Requests: m.requests.Load(),
		Replies:  m.replies.Load(),
		Timeouts: m.timeouts.Load(),
		Dropped:  m.dropped.Load(),
		Pending:  m.pending.Load(),
	}
}
