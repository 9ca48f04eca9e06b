package slip

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func popAll(r *Reader) [][]byte {
	var frames [][]byte
	for r.HasFrame() {
		frames = append(frames, r.PopFrame())
	}

	return frames
}

func TestReaderExtractsFramesInOrder(t *testing.T) {
	require := require.New(t)

	reader := NewReader()
	stream := append(Encode([]byte{0x01}), Encode([]byte{0x02, 0xC0})...)
	stream = append(stream, Encode([]byte{0xDB, 0x03})...)

	reader.Feed(stream)

	require.Equal(3, reader.Len())
	require.Equal([][]byte{{0x01}, {0x02, 0xC0}, {0xDB, 0x03}}, popAll(reader))
	require.False(reader.HasFrame())
	require.Nil(reader.PopFrame())
}

func TestReaderFragmentationEquivalence(t *testing.T) {
	require := require.New(t)

	payloads := [][]byte{
		{0x10, 0x20, 0x30},
		{END, ESC, END},
		{0xFF},
	}

	var stream []byte
	for _, p := range payloads {
		stream = append(stream, Encode(p)...)
	}

	whole := NewReader()
	whole.Feed(stream)

	byteWise := NewReader()
	for i := range stream {
		byteWise.Feed(stream[i : i+1])
	}

	require.Equal(payloads, popAll(whole))
	require.Equal(payloads, popAll(byteWise))
}

func TestReaderDiscardsBytesBeforeFirstDelimiter(t *testing.T) {
	require := require.New(t)

	reader := NewReader()
	// Line noise from before the host attached, then a valid frame.
	reader.Feed([]byte{0x55, 0xAA, 0x55})
	require.False(reader.HasFrame())

	reader.Feed(Encode([]byte{0x42}))
	require.Equal([][]byte{{0x42}}, popAll(reader))
}

func TestReaderIgnoresEmptyFrames(t *testing.T) {
	require := require.New(t)

	reader := NewReader()
	// Adjacent and leading delimiters produce no frames.
	reader.Feed([]byte{END, END, END})
	require.False(reader.HasFrame())

	reader.Feed(Encode([]byte{0x01}))
	reader.Feed([]byte{END, END})
	require.Equal([][]byte{{0x01}}, popAll(reader))
}

func TestReaderDropsCorruptFrameAndContinues(t *testing.T) {
	require := require.New(t)

	reader := NewReader()
	// Invalid escape inside the first frame; the second frame is intact.
	reader.Feed([]byte{END, 0x01, ESC, 0x42, 0x02, END})
	reader.Feed(Encode([]byte{0x07, 0x08}))

	require.Equal([][]byte{{0x07, 0x08}}, popAll(reader))
}

func TestReaderClear(t *testing.T) {
	require := require.New(t)

	reader := NewReader()
	reader.Feed(Encode([]byte{0x01}))
	// Partial frame still in progress.
	reader.Feed([]byte{END, 0x02, 0x03})

	reader.Clear()
	require.False(reader.HasFrame())

	// The partial frame must not leak into the next session: the trailing
	// delimiter of the pre-Clear frame only starts a fresh one.
	reader.Feed([]byte{END})
	require.False(reader.HasFrame())

	reader.Feed(Encode([]byte{0x09}))
	require.Equal([][]byte{{0x09}}, popAll(reader))
}
