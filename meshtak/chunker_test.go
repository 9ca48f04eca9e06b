package meshtak

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/lorameshtak/go-meshtak/wire"
)

// patternText builds a deterministic text of length n so chunk boundaries
// are verifiable.
func patternText(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(byte('a' + i%26))
	}

	return sb.String()
}

func TestSendTextSingleMessage(t *testing.T) {
	require := require.New(t)

	client, device := openTestClient(t, ackHandler)

	text := patternText(MaxSingleTextLen)
	require.NoError(client.SendText(context.Background(), text))

	require.Equal([]string{text}, device.sentTexts())

	cmds := device.commands()
	require.Len(cmds, 1)
	require.Equal(wire.PriorityNormal, cmds[0].ToDevice.SendMessage.Priority)
}

func TestSendTextConfiguredPriority(t *testing.T) {
	require := require.New(t)

	client, device := openTestClient(t, ackHandler, WithMessagePriority(wire.PriorityCritical))

	require.NoError(client.SendText(context.Background(), "flash traffic"))

	cmds := device.commands()
	require.Len(cmds, 1)
	require.Equal(wire.PriorityCritical, cmds[0].ToDevice.SendMessage.Priority)
}

func TestSendTextTooLongWithoutAutoSplit(t *testing.T) {
	require := require.New(t)

	client, device := openTestClient(t, ackHandler)

	err := client.SendText(context.Background(), patternText(MaxSingleTextLen+1))
	require.ErrorIs(err, ErrTextTooLong)

	// Rejected before any I/O.
	require.Equal(uint64(0), client.Metrics().CmdSendCount.Load())
	time.Sleep(20 * time.Millisecond)
	require.Empty(device.commands())
}

func TestSendTextAutoSplit(t *testing.T) {
	require := require.New(t)

	var mu sync.Mutex
	var recvTimes []time.Time
	handler := func(pkt *wire.Packet) *wire.FromDevice {
		mu.Lock()
		recvTimes = append(recvTimes, time.Now())
		mu.Unlock()

		return ackHandler(pkt)
	}

	chunkDelay := 40 * time.Millisecond
	client, device := openTestClient(t, handler,
		WithAutoSplit(true), WithChunkDelay(chunkDelay))

	text := patternText(400)
	require.NoError(client.SendText(context.Background(), text))

	require.Equal([]string{
		"[1/3] " + text[0:160],
		"[2/3] " + text[160:320],
		"[3/3] " + text[320:400],
	}, device.sentTexts())

	mu.Lock()
	defer mu.Unlock()
	require.Len(recvTimes, 3)
	// The configured pause separates consecutive chunks; allow scheduling
	// jitter in the measurement.
	minGap := chunkDelay - 10*time.Millisecond
	require.GreaterOrEqual(recvTimes[1].Sub(recvTimes[0]), minGap)
	require.GreaterOrEqual(recvTimes[2].Sub(recvTimes[1]), minGap)
}

func TestSendTextChunkFailureAborts(t *testing.T) {
	require := require.New(t)

	var count atomic.Int32
	handler := func(pkt *wire.Packet) *wire.FromDevice {
		if count.Add(1) == 2 {
			return &wire.FromDevice{
				RequestID: pkt.PacketID,
				Result:    &wire.Result{Success: false, Error: "tx queue full"},
			}
		}

		return ackHandler(pkt)
	}

	client, device := openTestClient(t, handler, WithAutoSplit(true))

	err := client.SendText(context.Background(), patternText(400))
	require.ErrorIs(err, ErrCommandFailed)
	require.ErrorContains(err, "chunk 2/3")
	require.ErrorContains(err, "tx queue full")

	// The third chunk is never sent.
	time.Sleep(100 * time.Millisecond)
	require.Len(device.sentTexts(), 2)
}

func TestSendTextCountsCharactersNotBytes(t *testing.T) {
	require := require.New(t)

	client, device := openTestClient(t, ackHandler)

	// 170 characters but 340 bytes; counted per character it fits a single
	// send even with auto-split disabled.
	text := strings.Repeat("ü", 170)
	require.NoError(client.SendText(context.Background(), text))
	require.Equal([]string{text}, device.sentTexts())
}

func TestSendTextAutoSplitMultibyte(t *testing.T) {
	require := require.New(t)

	client, device := openTestClient(t, ackHandler,
		WithAutoSplit(true), WithChunkDelay(time.Millisecond))

	// 200 three-byte characters split on character boundaries, never
	// mid-rune.
	text := strings.Repeat("€", 200)
	require.NoError(client.SendText(context.Background(), text))

	sent := device.sentTexts()
	require.Equal([]string{
		"[1/2] " + strings.Repeat("€", 160),
		"[2/2] " + strings.Repeat("€", 40),
	}, sent)

	for _, chunk := range sent {
		require.True(utf8.ValidString(chunk))
	}
}

func TestBroadcastAliasesSendText(t *testing.T) {
	require := require.New(t)

	client, device := openTestClient(t, ackHandler)

	require.NoError(client.Broadcast(context.Background(), "all stations radio check"))

	cmds := device.commands()
	require.Len(cmds, 1)
	sendMsg := cmds[0].ToDevice.SendMessage
	require.Equal("all stations radio check", sendMsg.Text)
	require.Empty(sendMsg.Destination)
}

func TestSendTextChunkLabelArithmetic(t *testing.T) {
	require := require.New(t)

	client, device := openTestClient(t, ackHandler,
		WithAutoSplit(true), WithChunkDelay(time.Millisecond))

	// An exact multiple of the chunk size must not produce an empty tail.
	text := patternText(2 * TextChunkSize)
	require.NoError(client.SendText(context.Background(), text))

	require.Equal([]string{
		fmt.Sprintf("[1/2] %s", text[0:160]),
		fmt.Sprintf("[2/2] %s", text[160:320]),
	}, device.sentTexts())
}
