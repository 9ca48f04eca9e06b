package meshtak

import (
	"sync/atomic"
)

// ClientMetrics contains atomic metrics for a client connection.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type ClientMetrics struct {
	// FrameRecvCount indicates the number of well-formed envelopes decoded.
	FrameRecvCount atomic.Uint64
	// FrameDropCount indicates the number of malformed envelopes dropped.
	FrameDropCount atomic.Uint64

	// CmdSendCount indicates the number of commands written to the port.
	CmdSendCount atomic.Uint64
	// ReplyRecvCount indicates the number of replies matched to a pending request.
	ReplyRecvCount atomic.Uint64
	// ReplyTimeoutCount indicates the number of commands that timed out.
	ReplyTimeoutCount atomic.Uint64
	// LateReplyCount indicates replies that arrived after their request
	// completed or timed out, and were dropped.
	LateReplyCount atomic.Uint64
	// CmdInflightCount indicates the number of commands waiting for a reply.
	CmdInflightCount atomic.Int64

	// EventRecvCount indicates the number of events queued for dispatch.
	EventRecvCount atomic.Uint64
	// EventDropCount indicates events dropped because the dispatch queue was full.
	EventDropCount atomic.Uint64
}

func (m *ClientMetrics) incFrameRecvCount() {
	m.FrameRecvCount.Add(1)
}

func (m *ClientMetrics) incFrameDropCount() {
	m.FrameDropCount.Add(1)
}

func (m *ClientMetrics) incCmdSendCount() {
	m.CmdSendCount.Add(1)
}

func (m *ClientMetrics) incReplyRecvCount() {
	m.ReplyRecvCount.Add(1)
}

func (m *ClientMetrics) incReplyTimeoutCount() {
	m.ReplyTimeoutCount.Add(1)
}

func (m *ClientMetrics) incLateReplyCount() {
	m.LateReplyCount.Add(1)
}

func (m *ClientMetrics) incCmdInflightCount() {
	m.CmdInflightCount.Add(1)
}

func (m *ClientMetrics) decCmdInflightCount() {
	m.CmdInflightCount.Add(-1)
}

func (m *ClientMetrics) incEventRecvCount() {
	m.EventRecvCount.Add(1)
}

func (m *ClientMetrics) incEventDropCount() {
	m.EventDropCount.Add(1)
}
