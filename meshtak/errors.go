package meshtak

import "errors"

var (
	// ErrNotConnected indicates an operation was attempted while the client
	// is not in the Connected state. No I/O is performed.
	ErrNotConnected = errors.New("meshtak: not connected")

	// ErrReplyTimeout indicates no matching response arrived within the
	// reply timeout. The pending request is deregistered; a reply arriving
	// later is dropped as unrecognized.
	ErrReplyTimeout = errors.New("meshtak: reply timeout")

	// ErrConnClosed indicates the connection was closed while a request was
	// still waiting for its reply.
	ErrConnClosed = errors.New("meshtak: connection closed")

	// ErrCloseTimeout indicates the background tasks did not terminate
	// within the close timeout.
	ErrCloseTimeout = errors.New("meshtak: close timeout")

	// ErrTextTooLong indicates a message text over the single-send limit
	// with auto-split disabled. Surfaced before any I/O.
	ErrTextTooLong = errors.New("meshtak: message text exceeds single-send limit")

	// ErrCommandFailed indicates the device acknowledged a command with a
	// failure result.
	ErrCommandFailed = errors.New("meshtak: device reported command failure")

	// ErrUnexpectedReply indicates the device answered a command with a
	// payload of the wrong kind.
	ErrUnexpectedReply = errors.New("meshtak: unexpected reply payload")
)
