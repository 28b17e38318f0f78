package comm

import (
	"sync/atomic"
)

// ExchangeMetrics contains atomic metrics for a Transceiver.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type ExchangeMetrics struct {
	// SendCount indicates the number of command writes, including re-sends.
	SendCount atomic.Uint64
	// RetryCount indicates the number of re-sends beyond the initial write.
	RetryCount atomic.Uint64
	// ReplyCount indicates the number of replies accepted by a predicate.
	ReplyCount atomic.Uint64
	// TimeoutCount indicates the number of exchanges that timed out.
	TimeoutCount atomic.Uint64
}

func (m *ExchangeMetrics) incSendCount() {
	m.SendCount.Add(1)
}

func (m *ExchangeMetrics) incRetryCount() {
	m.RetryCount.Add(1)
}

func (m *ExchangeMetrics) incReplyCount() {
	m.ReplyCount.Add(1)
}

func (m *ExchangeMetrics) incTimeoutCount() {
	m.TimeoutCount.Add(1)
}
