package meshtak

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/lorameshtak/go-meshtak/logger"
	"github.com/lorameshtak/go-meshtak/wire"
)

// Default configuration values.
const (
	// DefaultBaudRate is the serial baud rate used by LoRa mesh TAK firmware.
	DefaultBaudRate = 115200

	// DefaultReplyTimeout is the default wait for a command's response.
	DefaultReplyTimeout = 5 * time.Second

	// DefaultCloseTimeout bounds the wait for background task termination.
	DefaultCloseTimeout = 3 * time.Second

	// DefaultPollInterval is the read poll interval of the background reading
	// task. It must be short enough that shutdown signals are observed promptly.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultReadRetryDelay is the pause after a failed port read before the
	// reading task retries.
	DefaultReadRetryDelay = 100 * time.Millisecond

	// DefaultEventQueueSize is the capacity of the bounded event handoff
	// queue between the reading task and the dispatcher task.
	DefaultEventQueueSize = 32

	// DefaultChunkDelay is the pause between consecutive chunk sends of a
	// split message.
	DefaultChunkDelay = 300 * time.Millisecond
)

// Firmware wire constraints for text messages. These mirror the device's
// 256-byte serial buffer and are not configurable. Both are counted in
// characters, not bytes.
const (
	// MaxSingleTextLen is the longest text accepted as a single send.
	MaxSingleTextLen = 180

	// TextChunkSize is the number of characters per chunk of a split
	// message, leaving room for the "[i/N] " part label.
	TextChunkSize = 160
)

// MinPollInterval is the smallest accepted poll interval; the serial driver
// requires an inter-character timeout of at least 100ms for bounded reads.
const MinPollInterval = 100 * time.Millisecond

// PortOpener opens the physical byte link for a client. The default opener
// opens the configured serial port; tests inject in-memory ports.
type PortOpener func(cfg *Config) (io.ReadWriteCloser, error)

// Config holds all configuration for a Client.
type Config struct {
	port     string
	baudRate int

	replyTimeout   time.Duration
	closeTimeout   time.Duration
	pollInterval   time.Duration
	readRetryDelay time.Duration
	chunkDelay     time.Duration

	eventQueueSize int

	// autoSplit enables chunking of texts over MaxSingleTextLen.
	autoSplit bool

	// defaultPriority is attached to outbound text messages.
	defaultPriority wire.MessagePriority

	opener PortOpener
	logger logger.Logger
}

// NewConfig creates a client configuration for the given serial port path
// (e.g. "/dev/ttyUSB0" or "COM3").
//
// opts are functional options applied in order; see With* functions.
func NewConfig(port string, opts ...Option) (*Config, error) {
	if port == "" {
		return nil, errors.New("meshtak: port path is empty")
	}

	cfg := &Config{
		port:            port,
		baudRate:        DefaultBaudRate,
		replyTimeout:    DefaultReplyTimeout,
		closeTimeout:    DefaultCloseTimeout,
		pollInterval:    DefaultPollInterval,
		readRetryDelay:  DefaultReadRetryDelay,
		chunkDelay:      DefaultChunkDelay,
		eventQueueSize:  DefaultEventQueueSize,
		defaultPriority: wire.PriorityNormal,
		opener:          openSerialPort,
		logger:          logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// --- Getters ---

// Port returns the configured serial port path.
func (cfg *Config) Port() string { return cfg.port }

// BaudRate returns the configured baud rate.
func (cfg *Config) BaudRate() int { return cfg.baudRate }

// ReplyTimeout returns the default command reply timeout.
func (cfg *Config) ReplyTimeout() time.Duration { return cfg.replyTimeout }

// CloseTimeout returns the bounded wait for task termination on close.
func (cfg *Config) CloseTimeout() time.Duration { return cfg.closeTimeout }

// AutoSplit returns whether oversized texts are chunked automatically.
func (cfg *Config) AutoSplit() bool { return cfg.autoSplit }

// ChunkDelay returns the pause between consecutive chunk sends.
func (cfg *Config) ChunkDelay() time.Duration { return cfg.chunkDelay }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// --- Option ---

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithBaudRate sets the serial baud rate.
func WithBaudRate(baud int) Option {
	return optFunc(func(cfg *Config) error {
		if baud <= 0 {
			return fmt.Errorf("meshtak: invalid baud rate %d", baud)
		}
		cfg.baudRate = baud

		return nil
	})
}

// WithReplyTimeout sets the default wait for a command's response.
// Individual calls can shorten it via their context deadline.
func WithReplyTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("meshtak: reply timeout must be positive")
		}
		cfg.replyTimeout = d

		return nil
	})
}

// WithCloseTimeout sets the bounded wait for background task termination
// during Close.
func WithCloseTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("meshtak: close timeout must be positive")
		}
		cfg.closeTimeout = d

		return nil
	})
}

// WithPollInterval sets the read poll interval of the background reading task.
// Must be at least MinPollInterval.
func WithPollInterval(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinPollInterval {
			return fmt.Errorf("meshtak: poll interval %v below minimum %v", d, MinPollInterval)
		}
		cfg.pollInterval = d

		return nil
	})
}

// WithReadRetryDelay sets the pause after a failed port read.
func WithReadRetryDelay(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("meshtak: read retry delay must be positive")
		}
		cfg.readRetryDelay = d

		return nil
	})
}

// WithEventQueueSize sets the capacity of the bounded event handoff queue.
func WithEventQueueSize(size int) Option {
	return optFunc(func(cfg *Config) error {
		if size < 1 {
			return errors.New("meshtak: event queue size must be >= 1")
		}
		cfg.eventQueueSize = size

		return nil
	})
}

// WithAutoSplit enables or disables automatic chunking of texts over
// MaxSingleTextLen. Disabled by default; when disabled, oversized texts
// fail with ErrTextTooLong before any I/O.
func WithAutoSplit(enabled bool) Option {
	return optFunc(func(cfg *Config) error {
		cfg.autoSplit = enabled

		return nil
	})
}

// WithChunkDelay sets the pause between consecutive chunk sends of a split
// message.
func WithChunkDelay(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < 0 {
			return errors.New("meshtak: chunk delay must not be negative")
		}
		cfg.chunkDelay = d

		return nil
	})
}

// WithMessagePriority sets the priority attached to outbound text messages.
func WithMessagePriority(p wire.MessagePriority) Option {
	return optFunc(func(cfg *Config) error {
		cfg.defaultPriority = p

		return nil
	})
}

// WithPortOpener overrides how the physical port is opened. Intended for
// tests and alternative byte links (e.g. TCP-attached radios).
func WithPortOpener(opener PortOpener) Option {
	return optFunc(func(cfg *Config) error {
		if opener == nil {
			return errors.New("meshtak: port opener must not be nil")
		}
		cfg.opener = opener

		return nil
	})
}

// WithLogger sets the logger for the client.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("meshtak: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
