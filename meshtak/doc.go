// Package meshtak provides a client for LoRa mesh TAK devices attached over
// a serial (USB) link speaking SLIP-framed envelopes.
//
// # Architecture
//
// One Client owns the physical port and runs exactly one background reading
// task. The reading task reassembles SLIP frames, decodes the carried
// envelope, and resolves each inbound envelope structurally: an envelope
// whose request ID names a pending request completes that request; any
// other envelope carrying an event payload is handed to the event
// dispatcher; everything else is dropped.
//
// Commands are correlated to responses by a wrapping 32-bit packet ID.
// An ID backing an in-flight request is never reallocated until that
// request completes or times out, so correlation cannot alias under
// sustained load.
//
// # Concurrency
//
// Any number of goroutines may issue commands concurrently; port writes are
// mutually exclusive so frames never interleave on the wire. Each command
// blocks its caller until the matching response arrives or the reply
// timeout elapses; completions are independent across outstanding commands.
// User event handlers run on a dedicated dispatcher goroutine fed through a
// bounded queue, never on the reading task, so a slow handler cannot stall
// frame processing.
//
// # Failure Handling
//
// Line noise is absorbed locally: frames with malformed escape sequences
// and envelopes that fail to decode are dropped silently and the stream
// continues. Validation, timeout, and connection failures are returned
// synchronously to the caller as sentinel errors (ErrTextTooLong,
// ErrReplyTimeout, ErrNotConnected, ErrConnClosed). Closing the connection
// fails all still-pending requests with ErrConnClosed so no caller blocks
// forever.
package meshtak
