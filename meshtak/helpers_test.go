package meshtak

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lorameshtak/go-meshtak/slip"
	"github.com/lorameshtak/go-meshtak/wire"
)

// fakePort is an in-memory stand-in for the serial port. Read behaves like
// the poll-mode serial driver: it returns io.EOF when no data arrives within
// a short window.
type fakePort struct {
	readCh  chan []byte
	writeCh chan []byte
	closed  chan struct{}

	closeOnce sync.Once

	mu       sync.Mutex
	pending  []byte // carry-over from a partially consumed read chunk
	writeErr error
}

func newFakePort() *fakePort {
	return &fakePort{
		readCh:  make(chan []byte, 64),
		writeCh: make(chan []byte, 64),
		closed:  make(chan struct{}),
	}
}

func (p *fakePort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	if len(p.pending) > 0 {
		n := copy(buf, p.pending)
		p.pending = p.pending[n:]
		p.mu.Unlock()

		return n, nil
	}
	p.mu.Unlock()

	select {
	case <-p.closed:
		return 0, io.ErrClosedPipe
	case data := <-p.readCh:
		n := copy(buf, data)
		if n < len(data) {
			p.mu.Lock()
			p.pending = append(p.pending, data[n:]...)
			p.mu.Unlock()
		}

		return n, nil
	case <-time.After(5 * time.Millisecond):
		// Poll timeout, reported the way the serial driver reports it.
		return 0, io.EOF
	}
}

func (p *fakePort) Write(b []byte) (int, error) {
	select {
	case <-p.closed:
		return 0, io.ErrClosedPipe
	default:
	}

	p.mu.Lock()
	werr := p.writeErr
	p.mu.Unlock()
	if werr != nil {
		return 0, werr
	}

	data := make([]byte, len(b))
	copy(data, b)

	select {
	case p.writeCh <- data:
	case <-p.closed:
		return 0, io.ErrClosedPipe
	}

	return len(b), nil
}

func (p *fakePort) Close() error {
	p.closeOnce.Do(func() { close(p.closed) })

	return nil
}

// inject queues raw bytes for the client's reading task to pick up.
func (p *fakePort) inject(data []byte) {
	select {
	case p.readCh <- data:
	case <-p.closed:
	}
}

func (p *fakePort) setWriteErr(err error) {
	p.mu.Lock()
	p.writeErr = err
	p.mu.Unlock()
}

// deviceHandler builds the reply payload for one command the device
// received. Returning nil sends no reply.
type deviceHandler func(pkt *wire.Packet) *wire.FromDevice

// ackHandler acknowledges every command with a successful Result.
func ackHandler(pkt *wire.Packet) *wire.FromDevice {
	return &wire.FromDevice{
		RequestID: pkt.PacketID,
		Result:    &wire.Result{Success: true},
	}
}

// fakeDevice decodes the frames the client writes to the port and answers
// them through the configured handler, mimicking the radio firmware.
type fakeDevice struct {
	port *fakePort

	mu       sync.Mutex
	received []*wire.Packet
}

func newFakeDevice(port *fakePort, handler deviceHandler) *fakeDevice {
	d := &fakeDevice{port: port}
	go d.run(handler)

	return d
}

func (d *fakeDevice) run(handler deviceHandler) {
	reader := slip.NewReader()

	for {
		select {
		case <-d.port.closed:
			return
		case data := <-d.port.writeCh:
			reader.Feed(data)
			for reader.HasFrame() {
				pkt, err := wire.Unmarshal(reader.PopFrame())
				if err != nil {
					continue
				}

				d.mu.Lock()
				d.received = append(d.received, pkt)
				d.mu.Unlock()

				if handler == nil {
					continue
				}

				if rsp := handler(pkt); rsp != nil {
					d.reply(rsp)
				}
			}
		}
	}
}

// reply frames and injects one device-to-host envelope.
func (d *fakeDevice) reply(fd *wire.FromDevice) {
	raw, err := wire.Marshal(&wire.Packet{FromDevice: fd})
	if err != nil {
		return
	}

	d.port.inject(slip.Encode(raw))
}

// commands returns a snapshot of the commands received so far.
func (d *fakeDevice) commands() []*wire.Packet {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmds := make([]*wire.Packet, len(d.received))
	copy(cmds, d.received)

	return cmds
}

// sentTexts extracts the text of every send-message command received so far.
func (d *fakeDevice) sentTexts() []string {
	var texts []string
	for _, pkt := range d.commands() {
		if pkt.ToDevice != nil && pkt.ToDevice.SendMessage != nil {
			texts = append(texts, pkt.ToDevice.SendMessage.Text)
		}
	}

	return texts
}

// newTestClient creates a client wired to an in-memory device. The client is
// not opened; call Open (or use openTestClient) in the test body.
func newTestClient(t *testing.T, handler deviceHandler, opts ...Option) (*Client, *fakeDevice) {
	t.Helper()

	port := newFakePort()
	device := newFakeDevice(port, handler)

	defaults := []Option{
		WithReplyTimeout(300 * time.Millisecond),
		WithCloseTimeout(2 * time.Second),
		WithReadRetryDelay(5 * time.Millisecond),
		WithChunkDelay(40 * time.Millisecond),
		WithPortOpener(func(cfg *Config) (io.ReadWriteCloser, error) {
			return port, nil
		}),
	}

	cfg, err := NewConfig("fake0", append(defaults, opts...)...)
	require.NoError(t, err)

	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return client, device
}

func openTestClient(t *testing.T, handler deviceHandler, opts ...Option) (*Client, *fakeDevice) {
	t.Helper()

	client, device := newTestClient(t, handler, opts...)
	require.NoError(t, client.Open())

	return client, device
}
