package wire

import (
	"errors"
	"fmt"

	cbor "github.com/fxamacker/cbor/v2"
)

// ErrEmptyEnvelope indicates a packet that carries neither a ToDevice
// command nor a FromDevice payload.
var ErrEmptyEnvelope = errors.New("wire: packet has no payload")

// Deterministic CBOR modes (RFC 8949 core deterministic profile), so the
// same envelope always serializes to the same bytes across nodes.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: cbor enc mode: %v", err))
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("wire: cbor dec mode: %v", err))
	}
}

// Marshal serializes a Packet to its canonical CBOR representation.
func Marshal(p *Packet) ([]byte, error) {
	if p.ToDevice == nil && p.FromDevice == nil {
		return nil, ErrEmptyEnvelope
	}

	data, err := encMode.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal packet: %w", err)
	}

	return data, nil
}

// Unmarshal deserializes one CBOR-encoded Packet.
func Unmarshal(data []byte) (*Packet, error) {
	var p Packet
	if err := decMode.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("wire: unmarshal packet: %w", err)
	}

	if p.ToDevice == nil && p.FromDevice == nil {
		return nil, ErrEmptyEnvelope
	}

	return &p, nil
}
