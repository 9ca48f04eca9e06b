package meshtak

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/jacobsa/go-serial/serial"
)

// readBufSize is the read chunk size of the background reading task.
const readBufSize = 256

// openSerialPort is the default PortOpener. It opens the configured serial
// port in 8N1 mode.
func openSerialPort(cfg *Config) (io.ReadWriteCloser, error) {
	return serial.Open(serial.OpenOptions{
		PortName: cfg.port,
		BaudRate: uint(cfg.baudRate),
		DataBits: 8,
		StopBits: 1,
		// A zero MinimumReadSize with a non-zero InterCharacterTimeout makes
		// Read return within the poll interval, so the reading task observes
		// shutdown signals promptly.
		MinimumReadSize:       0,
		InterCharacterTimeout: uint(cfg.pollInterval / time.Millisecond),
	})
}

// --- Port resource management ---

func (c *Client) setPort(port io.ReadWriteCloser) {
	c.portMu.Lock()
	defer c.portMu.Unlock()

	c.port = port
}

func (c *Client) getPort() io.ReadWriteCloser {
	c.portMu.RLock()
	defer c.portMu.RUnlock()

	return c.port
}

// closePort closes the port handle and nils the reference so subsequent
// calls are no-ops.
func (c *Client) closePort() error {
	c.portMu.Lock()
	port := c.port
	c.port = nil
	c.portMu.Unlock()

	if port == nil {
		return nil
	}

	return port.Close()
}

// write sends one framed unit to the port. Writes from concurrent callers
// are mutually exclusive so frames are never interleaved on the wire.
//
// Fails with ErrNotConnected when the client is not in the Connected state.
func (c *Client) write(frame []byte) error {
	if !c.state.IsConnected() {
		return ErrNotConnected
	}

	port := c.getPort()
	if port == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	for written := 0; written < len(frame); {
		n, err := port.Write(frame[written:])
		written += n

		if err != nil {
			return err
		}
	}

	return nil
}

// --- Background reading task ---

// readLoopTask builds the TaskFunc of the single background reading task.
func (c *Client) readLoopTask() TaskFunc {
	ctx := c.context()
	buf := make([]byte, readBufSize)

	return func() bool {
		return c.readLoopIteration(ctx, buf)
	}
}

// readLoopIteration performs one poll-read of the port, feeds any received
// bytes to the frame reader, and hands every completed frame to the
// correlation engine.
//
// Read errors are not fatal while still connected: the serial driver
// reports poll timeouts as errors too, and transient I/O failures take the
// same brief pause-and-retry path.
func (c *Client) readLoopIteration(ctx context.Context, buf []byte) bool {
	port := c.getPort()
	if port == nil {
		return false
	}

	n, err := port.Read(buf)
	if n > 0 {
		c.reader.Feed(buf[:n])
		for c.reader.HasFrame() {
			c.handleFrame(c.reader.PopFrame())
		}
	}

	if err != nil {
		if ctx.Err() != nil || !c.state.IsConnected() {
			return false
		}

		if !errors.Is(err, io.EOF) {
			c.logger.Debug("meshtak: port read error, retrying", "error", err)
		}

		return c.pause(ctx, c.cfg.readRetryDelay)
	}

	return true
}
