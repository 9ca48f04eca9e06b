package meshtak

import "sync/atomic"

// ConnState represents the lifecycle stage of the serial connection.
type ConnState uint32

const (
	// DisconnectedState indicates no open port and no background tasks.
	DisconnectedState ConnState = iota
	// ConnectingState indicates the port is being opened and tasks started.
	ConnectingState
	// ConnectedState indicates the port is open and the reading task runs.
	ConnectedState
	// DisconnectingState indicates a close sequence is in progress.
	DisconnectingState
)

// String returns a string representation of the connection state.
func (cs ConnState) String() string {
	switch cs {
	case DisconnectedState:
		return "disconnected"
	case ConnectingState:
		return "connecting"
	case ConnectedState:
		return "connected"
	case DisconnectingState:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// StateChangeHandler is invoked on connection state transitions.
//
// Handlers run synchronously on the goroutine driving the transition;
// take care with long-running implementations.
type StateChangeHandler func(prev ConnState, next ConnState)

// atomicConnState holds the connection state with CAS-guarded transitions,
// so concurrent Open/Close calls resolve to exactly one winner.
type atomicConnState struct {
	state atomic.Uint32
}

func (st *atomicConnState) Get() ConnState {
	return ConnState(st.state.Load())
}

func (st *atomicConnState) set(state ConnState) {
	st.state.Store(uint32(state))
}

func (st *atomicConnState) String() string {
	return st.Get().String()
}

func (st *atomicConnState) IsConnected() bool {
	return st.Get() == ConnectedState
}

func (st *atomicConnState) IsDisconnected() bool {
	return st.Get() == DisconnectedState
}

func (st *atomicConnState) toConnecting() bool {
	return st.state.CompareAndSwap(uint32(DisconnectedState), uint32(ConnectingState))
}

func (st *atomicConnState) toConnected() bool {
	return st.state.CompareAndSwap(uint32(ConnectingState), uint32(ConnectedState))
}

func (st *atomicConnState) toDisconnecting() bool {
	if st.state.CompareAndSwap(uint32(ConnectedState), uint32(DisconnectingState)) {
		return true
	}

	return st.state.CompareAndSwap(uint32(ConnectingState), uint32(DisconnectingState))
}
