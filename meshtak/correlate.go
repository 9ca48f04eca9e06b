package meshtak

import (
	"context"
	"fmt"

	"github.com/lorameshtak/go-meshtak/internal/pool"
	"github.com/lorameshtak/go-meshtak/slip"
	"github.com/lorameshtak/go-meshtak/wire"
)

// nextPacketID returns the next packet ID not currently backing a pending
// request. The counter wraps at the 32-bit boundary; IDs with a live
// pending entry are skipped so a long-lived request is never aliased by a
// wrapped-around allocation. Zero is reserved so an unset request_id field
// never matches.
func (c *Client) nextPacketID() uint32 {
	for {
		id := c.packetID.Add(1)
		if id == 0 {
			continue
		}

		if _, pending := c.replyChans.Load(id); !pending {
			return id
		}
	}
}

// sendCommand sends one command and blocks until its response arrives, the
// reply timeout elapses, ctx is done, or the connection closes.
//
// The pending request is registered before the frame is written, so a fast
// response cannot race the registration. On timeout the request is
// deregistered and a reply arriving later finds no matching entry; it is
// then dropped as unrecognized by handleFrame.
func (c *Client) sendCommand(ctx context.Context, cmd *wire.ToDevice) (*wire.FromDevice, error) {
	if !c.state.IsConnected() {
		return nil, ErrNotConnected
	}

	id := c.nextPacketID()

	replyChan := make(chan *wire.FromDevice, 1)
	c.replyChans.Store(id, replyChan)

	raw, err := wire.Marshal(&wire.Packet{PacketID: id, ToDevice: cmd})
	if err != nil {
		c.replyChans.Delete(id)

		return nil, fmt.Errorf("meshtak: marshal command: %w", err)
	}

	if err := c.write(slip.Encode(raw)); err != nil {
		c.replyChans.Delete(id)

		return nil, err
	}

	c.metrics.incCmdSendCount()
	c.metrics.incCmdInflightCount()
	defer c.metrics.decCmdInflightCount()

	connCtx := c.context()

	timer := pool.GetTimer(c.cfg.replyTimeout)
	defer pool.PutTimer(timer)

	select {
	case <-ctx.Done():
		c.replyChans.Delete(id)

		return nil, ctx.Err()

	case <-connCtx.Done():
		c.replyChans.Delete(id)

		return nil, ErrConnClosed

	case <-timer.C:
		c.replyChans.Delete(id)
		c.metrics.incReplyTimeoutCount()

		c.logger.Warn("meshtak: reply timeout",
			"packetID", id,
			"timeout", c.cfg.replyTimeout)

		return nil, fmt.Errorf("%w after %v", ErrReplyTimeout, c.cfg.replyTimeout)

	case rsp, ok := <-replyChan:
		c.replyChans.Delete(id)
		if !ok || rsp == nil {
			return nil, ErrConnClosed
		}

		c.metrics.incReplyRecvCount()

		return rsp, nil
	}
}

// handleFrame is invoked by the reading task for each complete frame.
//
// It deserializes the envelope (dropping it silently on failure), matches
// it to the pending request with the same request ID, and otherwise routes
// event payloads to the dispatcher. A response whose ID matches no pending
// request is a late arrival and is dropped.
func (c *Client) handleFrame(raw []byte) {
	pkt, err := wire.Unmarshal(raw)
	if err != nil {
		c.metrics.incFrameDropCount()
		c.logger.Debug("meshtak: dropping malformed envelope", "error", err)

		return
	}

	fd := pkt.FromDevice
	if fd == nil {
		// A ToDevice command echoed back to the host is not meaningful.
		c.metrics.incFrameDropCount()
		c.logger.Debug("meshtak: dropping non-device envelope", "packetID", pkt.PacketID)

		return
	}

	c.metrics.incFrameRecvCount()

	if replyChan, loaded := c.replyChans.Load(fd.RequestID); loaded {
		select {
		case replyChan <- fd:
		default:
			// The slot already holds a reply; a duplicate is dropped.
			c.metrics.incLateReplyCount()
		}

		return
	}

	if fd.Kind().IsEvent() {
		c.queueEvent(fd)

		return
	}

	c.metrics.incLateReplyCount()
	c.logger.Debug("meshtak: reply has no waiting sender, dropping",
		"requestID", fd.RequestID,
		"kind", fd.Kind().String())
}

// failAllPending closes every pending reply channel so the waiting senders
// fail with ErrConnClosed. Called only after the reading task has stopped.
func (c *Client) failAllPending() {
	c.replyChans.Range(func(id uint32, replyChan chan *wire.FromDevice) bool {
		if replyChan != nil {
			close(replyChan)
		}

		return true
	})

	c.replyChans.Clear()
}
