package meshtak

import (
	"sync"

	"github.com/lorameshtak/go-meshtak/wire"
)

// Handler types for unsolicited device events, one per event kind.
type (
	// MessageHandler is invoked for each received text message.
	MessageHandler func(*wire.MessageReceivedEvent)
	// GPSHandler is invoked for each GPS broadcast from another node.
	GPSHandler func(*wire.GPSReceivedEvent)
	// NeighborHandler is invoked when a neighbor joins or leaves.
	NeighborHandler func(*wire.NeighborChangedEvent)
	// EmergencyHandler is invoked for each emergency alert.
	EmergencyHandler func(*wire.EmergencyReceivedEvent)
	// LogHandler is invoked for each device log line.
	LogHandler func(*wire.LogEvent)
)

// callbackSet holds the single active handler per event kind.
// Last registration wins; a nil handler clears the slot.
type callbackSet struct {
	mu          sync.RWMutex
	onMessage   MessageHandler
	onGPS       GPSHandler
	onNeighbor  NeighborHandler
	onEmergency EmergencyHandler
	onLog       LogHandler
}

// OnMessage replaces the handler for received text messages. Pass nil to clear.
func (c *Client) OnMessage(handler MessageHandler) {
	c.callbacks.mu.Lock()
	defer c.callbacks.mu.Unlock()
	c.callbacks.onMessage = handler
}

// OnGPS replaces the handler for GPS broadcasts. Pass nil to clear.
func (c *Client) OnGPS(handler GPSHandler) {
	c.callbacks.mu.Lock()
	defer c.callbacks.mu.Unlock()
	c.callbacks.onGPS = handler
}

// OnNeighbor replaces the handler for neighbor changes. Pass nil to clear.
func (c *Client) OnNeighbor(handler NeighborHandler) {
	c.callbacks.mu.Lock()
	defer c.callbacks.mu.Unlock()
	c.callbacks.onNeighbor = handler
}

// OnEmergency replaces the handler for emergency alerts. Pass nil to clear.
func (c *Client) OnEmergency(handler EmergencyHandler) {
	c.callbacks.mu.Lock()
	defer c.callbacks.mu.Unlock()
	c.callbacks.onEmergency = handler
}

// OnLog replaces the handler for device log lines. Pass nil to clear.
func (c *Client) OnLog(handler LogHandler) {
	c.callbacks.mu.Lock()
	defer c.callbacks.mu.Unlock()
	c.callbacks.onLog = handler
}

// eventQueue returns the current event handoff channel.
func (c *Client) eventQueue() chan *wire.FromDevice {
	c.eventMu.RLock()
	defer c.eventMu.RUnlock()

	return c.eventChan
}

// queueEvent hands an event from the reading task to the dispatcher task.
//
// The handoff is non-blocking: a full queue drops the event rather than
// stalling frame processing behind a slow handler.
func (c *Client) queueEvent(fd *wire.FromDevice) {
	select {
	case c.eventQueue() <- fd:
		c.metrics.incEventRecvCount()
	default:
		c.metrics.incEventDropCount()
		c.logger.Warn("meshtak: event queue full, dropping event", "kind", fd.Kind().String())
	}
}

// dispatchLoopTask builds the TaskFunc of the event dispatcher task, which
// consumes the bounded queue and invokes user handlers off the reading task.
func (c *Client) dispatchLoopTask() TaskFunc {
	ctx := c.context()
	events := c.eventQueue()

	return func() bool {
		select {
		case <-ctx.Done():
			return false
		case fd := <-events:
			c.dispatchEvent(fd)

			return true
		}
	}
}

// dispatchEvent invokes the registered handler for the event's kind, if
// any. Events with no registered handler are dropped without error.
func (c *Client) dispatchEvent(fd *wire.FromDevice) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("meshtak: panic in event handler", "kind", fd.Kind().String(), "panic", r)
		}
	}()

	c.callbacks.mu.RLock()
	onMessage := c.callbacks.onMessage
	onGPS := c.callbacks.onGPS
	onNeighbor := c.callbacks.onNeighbor
	onEmergency := c.callbacks.onEmergency
	onLog := c.callbacks.onLog
	c.callbacks.mu.RUnlock()

	switch fd.Kind() {
	case wire.KindMessageEvent:
		if onMessage != nil {
			onMessage(fd.MessageReceived)
		}
	case wire.KindGPSEvent:
		if onGPS != nil {
			onGPS(fd.GPSReceived)
		}
	case wire.KindNeighborEvent:
		if onNeighbor != nil {
			onNeighbor(fd.NeighborChanged)
		}
	case wire.KindEmergencyEvent:
		if onEmergency != nil {
			onEmergency(fd.EmergencyReceived)
		}
	case wire.KindLogEvent:
		if onLog != nil {
			onLog(fd.Log)
		}
	default:
		// Non-event kinds never reach the dispatcher; see handleFrame.
	}
}
