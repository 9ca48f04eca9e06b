// Package slip implements RFC 1055 (SLIP) byte framing.
//
// Each frame on the wire is delimited by END (0xC0) bytes. Occurrences of
// END and ESC (0xDB) inside the payload are replaced by the two-byte escape
// sequences ESC+EscEnd and ESC+EscEsc respectively.
//
// Encode and Decode are stateless and operate on one frame at a time.
// Reader reassembles frames incrementally from an arbitrarily fragmented
// byte stream, as delivered by a serial port.
package slip

import (
	"errors"
	"fmt"
)

// SLIP special byte values per RFC 1055.
const (
	END    = 0xC0 // frame delimiter
	ESC    = 0xDB // escape introducer
	EscEnd = 0xDC // escaped END literal
	EscEsc = 0xDD // escaped ESC literal
)

// Framing errors returned by Decode.
var (
	// ErrTruncatedEscape indicates an ESC byte with no following byte.
	ErrTruncatedEscape = errors.New("slip: incomplete escape sequence at end of frame")

	// ErrInvalidEscape indicates an ESC byte followed by a byte other than
	// EscEnd or EscEsc.
	ErrInvalidEscape = errors.New("slip: invalid escape sequence")
)

// Encode wraps data in a SLIP frame: a leading END delimiter, the payload
// with END and ESC bytes escaped, and a trailing END delimiter.
func Encode(data []byte) []byte {
	// Sized for mostly-unescaped payloads; append grows the buffer when a
	// frame is escape-heavy.
	out := make([]byte, 0, len(data)+len(data)/2+2)
	out = append(out, END)

	for _, b := range data {
		switch b {
		case END:
			out = append(out, ESC, EscEnd)
		case ESC:
			out = append(out, ESC, EscEsc)
		default:
			out = append(out, b)
		}
	}

	return append(out, END)
}

// Decode strips END delimiters from data and resolves escape sequences,
// returning the raw payload.
//
// It fails with ErrTruncatedEscape when an ESC byte is the last byte of
// data, and with ErrInvalidEscape when an ESC byte is followed by anything
// other than EscEnd or EscEsc.
func Decode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data))

	for i := 0; i < len(data); i++ {
		b := data[i]
		switch b {
		case END:
			// Delimiters carry no payload.
		case ESC:
			i++
			if i >= len(data) {
				return nil, ErrTruncatedEscape
			}
			switch data[i] {
			case EscEnd:
				out = append(out, END)
			case EscEsc:
				out = append(out, ESC)
			default:
				return nil, fmt.Errorf("%w: 0xDB 0x%02X", ErrInvalidEscape, data[i])
			}
		default:
			out = append(out, b)
		}
	}

	return out, nil
}
