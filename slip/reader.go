package slip

import (
	"github.com/lorameshtak/go-meshtak/internal/queue"
)

// defaultFramePrealloc is the initial capacity of the in-progress frame buffer.
const defaultFramePrealloc = 256

// Reader is a stateful SLIP frame reassembler for streaming input.
//
// It buffers incoming bytes and extracts complete, decoded frames in FIFO
// order. The extracted frame sequence is identical whether the stream is
// fed one byte at a time or in arbitrary chunks.
//
// Reader is NOT goroutine-safe. In this library it is owned by the single
// background reading task; Clear is only called after that task has stopped.
type Reader struct {
	buf     []byte
	inFrame bool
	frames  *queue.FIFO[[]byte]
}

// NewReader creates an empty Reader.
func NewReader() *Reader {
	return &Reader{
		buf:    make([]byte, 0, defaultFramePrealloc),
		frames: queue.New[[]byte](4),
	}
}

// Feed consumes raw bytes from the stream.
//
// Bytes seen before the first END delimiter are discarded. Each END that
// terminates a non-empty in-progress buffer completes a frame: the buffer
// is decoded and enqueued on success, or discarded silently on a framing
// error. The stream remains usable after a corrupt frame.
func (r *Reader) Feed(data []byte) {
	for _, b := range data {
		if b == END {
			if r.inFrame && len(r.buf) > 0 {
				if decoded, err := Decode(r.buf); err == nil {
					r.frames.Push(decoded)
				}
			}
			// Every delimiter (re)starts a fresh frame.
			r.inFrame = true
			r.buf = r.buf[:0]

			continue
		}

		if r.inFrame {
			r.buf = append(r.buf, b)
		}
	}
}

// HasFrame reports whether at least one complete frame is ready.
func (r *Reader) HasFrame() bool {
	return r.frames.Len() > 0
}

// PopFrame removes and returns the oldest complete frame, or nil if none
// is ready.
func (r *Reader) PopFrame() []byte {
	frame, ok := r.frames.Pop()
	if !ok {
		return nil
	}
	return frame
}

// Len returns the number of complete frames ready to be popped.
func (r *Reader) Len() int {
	return r.frames.Len()
}

// Clear discards the in-progress buffer and all queued frames.
// Used on reconnect so no partially-decoded frame survives the boundary.
func (r *Reader) Clear() {
	r.buf = r.buf[:0]
	r.inFrame = false
	r.frames.Reset()
}
