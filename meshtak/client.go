package meshtak

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/lorameshtak/go-meshtak/internal/pool"
	"github.com/lorameshtak/go-meshtak/logger"
	"github.com/lorameshtak/go-meshtak/slip"
	"github.com/lorameshtak/go-meshtak/wire"
)

// Client is a high-level client for LoRa mesh TAK devices attached over a
// serial (USB) link.
//
// It owns the physical port, runs exactly one background reading task that
// reassembles and decodes SLIP frames, correlates responses to in-flight
// commands by packet ID, and dispatches unsolicited device events to
// registered handlers through a bounded queue.
//
// All exported methods are safe for concurrent use. Any number of callers
// may issue commands concurrently; writes to the port are serialized.
type Client struct {
	pctx   context.Context
	cfg    *Config
	logger logger.Logger

	state atomicConnState

	handlersMu    sync.Mutex
	stateHandlers []StateChangeHandler

	// Per-connection context, recreated on every Open and canceled on Close.
	ctxMu     sync.RWMutex
	ctx       context.Context
	ctxCancel context.CancelFunc

	portMu  sync.RWMutex
	port    io.ReadWriteCloser
	writeMu sync.Mutex // serializes frame writes from concurrent callers

	// reader is owned by the reading task; Clear is only called while the
	// task is stopped (during Open and after task join in Close).
	reader  *slip.Reader
	taskMgr *TaskManager

	// Correlation state: packet ID counter and pending-request table.
	packetID   atomic.Uint32
	replyChans *xsync.MapOf[uint32, chan *wire.FromDevice]

	// Event dispatch: one callback slot per event kind, bounded handoff
	// queue between the reading task and the dispatcher task.
	callbacks callbackSet
	eventMu   sync.RWMutex
	eventChan chan *wire.FromDevice

	metrics ClientMetrics
}

// NewClient creates a new Client with the given context and configuration.
//
// The context bounds the lifetime of all background tasks; canceling it is
// equivalent to Close for the running tasks, but Close should still be
// called to release the port.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("meshtak: config is nil")
	}

	c := &Client{
		pctx:       ctx,
		cfg:        cfg,
		logger:     cfg.logger,
		reader:     slip.NewReader(),
		taskMgr:    NewTaskManager(ctx, cfg.logger),
		replyChans: xsync.NewMapOf[uint32, chan *wire.FromDevice](),
	}
	c.state.set(DisconnectedState)

	return c, nil
}

// IsConnected reports whether the client is in the Connected state.
func (c *Client) IsConnected() bool {
	return c.state.IsConnected()
}

// State returns the current connection state.
func (c *Client) State() ConnState {
	return c.state.Get()
}

// GetLogger returns the logger associated with the client.
func (c *Client) GetLogger() logger.Logger {
	return c.logger
}

// Metrics returns the metrics associated with the client.
func (c *Client) Metrics() *ClientMetrics {
	return &c.metrics
}

// OnStateChange registers a handler invoked on connection state transitions.
func (c *Client) OnStateChange(handler StateChangeHandler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	c.stateHandlers = append(c.stateHandlers, handler)
}

// Open opens the serial port, resets the frame reader, and starts the
// background reading and dispatching tasks.
//
// Returns nil without side effects when already connected.
func (c *Client) Open() error {
	if !c.state.toConnecting() {
		if c.state.IsConnected() {
			return nil
		}

		return fmt.Errorf("meshtak: cannot connect from %s state", c.state.String())
	}

	c.notifyStateChange(DisconnectedState, ConnectingState)
	c.logger.Debug("meshtak: opening port", "port", c.cfg.port, "baud", c.cfg.baudRate)

	port, err := c.cfg.opener(c.cfg)
	if err != nil {
		c.state.set(DisconnectedState)
		c.notifyStateChange(ConnectingState, DisconnectedState)

		return fmt.Errorf("meshtak: open port %s: %w", c.cfg.port, err)
	}

	c.setPort(port)
	c.reader.Clear()

	c.ctxMu.Lock()
	c.ctx, c.ctxCancel = context.WithCancel(c.pctx)
	c.ctxMu.Unlock()

	c.eventMu.Lock()
	c.eventChan = make(chan *wire.FromDevice, c.cfg.eventQueueSize)
	c.eventMu.Unlock()

	if err := c.startTasks(); err != nil {
		c.teardown()
		c.state.set(DisconnectedState)
		c.notifyStateChange(ConnectingState, DisconnectedState)

		return err
	}

	c.state.toConnected()
	c.notifyStateChange(ConnectingState, ConnectedState)
	c.logger.Info("meshtak: connected", "port", c.cfg.port)

	return nil
}

// Close signals the background tasks to stop, waits for them within the
// close timeout, closes the port, fails all pending requests with
// ErrConnClosed, and clears the frame reader.
//
// Close is idempotent: it returns nil when already disconnected.
func (c *Client) Close() error {
	prev := c.state.Get()
	if !c.state.toDisconnecting() {
		// Already disconnected, or another Close is in progress.
		return nil
	}

	c.notifyStateChange(prev, DisconnectingState)
	c.logger.Debug("meshtak: closing connection", "port", c.cfg.port)

	closeErr := c.teardown()

	c.failAllPending()
	c.reader.Clear()

	c.state.set(DisconnectedState)
	c.notifyStateChange(DisconnectingState, DisconnectedState)
	c.logger.Info("meshtak: disconnected", "port", c.cfg.port)

	return closeErr
}

// startTasks starts the reading and event dispatching tasks.
func (c *Client) startTasks() error {
	if err := c.taskMgr.Start("readLoop", c.readLoopTask()); err != nil {
		return err
	}

	return c.taskMgr.Start("dispatchLoop", c.dispatchLoopTask())
}

// teardown cancels the per-connection context, closes the port to unblock
// any in-flight read, and waits for task termination within closeTimeout.
func (c *Client) teardown() error {
	c.ctxMu.RLock()
	cancel := c.ctxCancel
	c.ctxMu.RUnlock()

	if cancel != nil {
		cancel()
	}

	c.taskMgr.Stop()

	portErr := c.closePort()

	waitDone := make(chan struct{})
	go func() {
		c.taskMgr.Wait()
		close(waitDone)
	}()

	timer := pool.GetTimer(c.cfg.closeTimeout)
	defer pool.PutTimer(timer)

	select {
	case <-waitDone:
	case <-timer.C:
		c.logger.Error("meshtak: tasks did not terminate before close timeout",
			"timeout", c.cfg.closeTimeout,
			"task_count", c.taskMgr.TaskCount())

		return ErrCloseTimeout
	}

	if portErr != nil {
		c.logger.Error("meshtak: failed to close port", "error", portErr)

		return fmt.Errorf("meshtak: close port: %w", portErr)
	}

	return nil
}

// context returns the current per-connection context.
func (c *Client) context() context.Context {
	c.ctxMu.RLock()
	defer c.ctxMu.RUnlock()

	if c.ctx != nil {
		return c.ctx
	}

	return c.pctx
}

func (c *Client) notifyStateChange(prev, next ConnState) {
	c.handlersMu.Lock()
	handlers := make([]StateChangeHandler, len(c.stateHandlers))
	copy(handlers, c.stateHandlers)
	c.handlersMu.Unlock()

	for _, handler := range handlers {
		handler(prev, next)
	}
}

// pause sleeps for d or until ctx is done. Returns false when interrupted.
func (c *Client) pause(ctx context.Context, d time.Duration) bool {
	timer := pool.GetTimer(d)
	defer pool.PutTimer(timer)

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
