package meshtak

import (
	"context"
	"fmt"

	"github.com/lorameshtak/go-meshtak/wire"
)

// SendText sends a text message to the mesh network. All messages are
// broadcast; the mesh protocol handles routing and delivery.
//
// The length limits count characters, not bytes. Texts up to
// MaxSingleTextLen characters are sent as a single command. Longer texts
// fail with ErrTextTooLong before any I/O unless auto-split is enabled
// (see WithAutoSplit), in which case the text is split into consecutive
// TextChunkSize-character chunks sent as separate "[i/N] "-labeled
// commands, pausing the chunk delay between consecutive sends. The first
// chunk failure aborts the sequence and is propagated; remaining chunks
// are not sent.
func (c *Client) SendText(ctx context.Context, text string) error {
	// Rune-wise so multi-byte characters count once and never split.
	runes := []rune(text)

	if len(runes) <= MaxSingleTextLen {
		return c.sendTextCommand(ctx, text)
	}

	if !c.cfg.autoSplit {
		return fmt.Errorf("%w: %d > %d characters; enable auto-split or split manually",
			ErrTextTooLong, len(runes), MaxSingleTextLen)
	}

	return c.sendSplitText(ctx, runes)
}

// Broadcast sends a text message to the mesh network.
//
// Alias for SendText; all messages are broadcast to the mesh.
func (c *Client) Broadcast(ctx context.Context, text string) error {
	return c.SendText(ctx, text)
}

// sendSplitText splits the text into TextChunkSize-character chunks and
// sends each as a separate labeled command.
func (c *Client) sendSplitText(ctx context.Context, runes []rune) error {
	total := (len(runes) + TextChunkSize - 1) / TextChunkSize

	c.logger.Debug("meshtak: splitting long message", "length", len(runes), "chunks", total)

	for i := 0; i < total; i++ {
		end := (i + 1) * TextChunkSize
		if end > len(runes) {
			end = len(runes)
		}

		part := fmt.Sprintf("[%d/%d] %s", i+1, total, string(runes[i*TextChunkSize:end]))

		if err := c.sendTextCommand(ctx, part); err != nil {
			return fmt.Errorf("meshtak: chunk %d/%d: %w", i+1, total, err)
		}

		// Pace the firmware between parts; no delay after the last.
		if i < total-1 {
			if !c.pause(ctx, c.cfg.chunkDelay) {
				return ctx.Err()
			}
		}
	}

	return nil
}

// sendTextCommand issues one send-message command and surfaces a failure
// result reported by the device.
func (c *Client) sendTextCommand(ctx context.Context, text string) error {
	cmd := &wire.ToDevice{
		SendMessage: &wire.SendMessageRequest{
			Text:     text,
			Priority: c.cfg.defaultPriority,
		},
	}

	rsp, err := c.sendCommand(ctx, cmd)
	if err != nil {
		return err
	}

	return resultErr(rsp)
}
