package scpi

import (
	"fmt"
	"time"

	"github.com/scottschoenjr/hardware/logger"
)

// Defaults per IEEE 488.2 message framing over raw sockets.
const (
	DefaultTxTerminator = "\n"
	DefaultRxTerminator = byte('\n')

	DefaultQueryTimeout   = 3 * time.Second
	DefaultConnectTimeout = 3 * time.Second
)

// Config holds framing and deadline settings for a Client.
type Config struct {
	// txTerminator is appended to every outgoing message.
	txTerminator string

	// rxTerminator ends every incoming message.
	rxTerminator byte

	// queryTimeout is the per-operation I/O deadline, applied when the
	// underlying stream supports deadlines.
	queryTimeout time.Duration

	// connectTimeout bounds Dial.
	connectTimeout time.Duration

	logger logger.Logger
}

// NewConfig creates a client configuration.
//
// opts are functional options applied in order; see With* functions.
func NewConfig(opts ...ClientOption) (*Config, error) {
	cfg := &Config{
		txTerminator:   DefaultTxTerminator,
		rxTerminator:   DefaultRxTerminator,
		queryTimeout:   DefaultQueryTimeout,
		connectTimeout: DefaultConnectTimeout,
		logger:         logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// TxTerminator returns the outgoing message terminator.
func (cfg *Config) TxTerminator() string { return cfg.txTerminator }

// RxTerminator returns the incoming message terminator.
func (cfg *Config) RxTerminator() byte { return cfg.rxTerminator }

// QueryTimeout returns the per-operation I/O deadline.
func (cfg *Config) QueryTimeout() time.Duration { return cfg.queryTimeout }

// ConnectTimeout returns the dial deadline.
func (cfg *Config) ConnectTimeout() time.Duration { return cfg.connectTimeout }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// --- ClientOption ---

// ClientOption is a functional option for configuring a Config.
type ClientOption interface {
	apply(*Config) error
}

type clientOptFunc func(*Config) error

func (f clientOptFunc) apply(cfg *Config) error { return f(cfg) }

// WithTxTerminator sets the terminator appended to outgoing messages.
func WithTxTerminator(term string) ClientOption {
	return clientOptFunc(func(cfg *Config) error {
		if term == "" {
			return fmt.Errorf("scpi: tx terminator cannot be empty")
		}
		cfg.txTerminator = term

		return nil
	})
}

// WithRxTerminator sets the byte that ends incoming messages.
func WithRxTerminator(term byte) ClientOption {
	return clientOptFunc(func(cfg *Config) error {
		cfg.rxTerminator = term

		return nil
	})
}

// WithQueryTimeout sets the per-operation I/O deadline.
func WithQueryTimeout(d time.Duration) ClientOption {
	return clientOptFunc(func(cfg *Config) error {
		if d <= 0 {
			return fmt.Errorf("scpi: query timeout must be positive, got %v", d)
		}
		cfg.queryTimeout = d

		return nil
	})
}

// WithConnectTimeout sets the dial deadline.
func WithConnectTimeout(d time.Duration) ClientOption {
	return clientOptFunc(func(cfg *Config) error {
		if d <= 0 {
			return fmt.Errorf("scpi: connect timeout must be positive, got %v", d)
		}
		cfg.connectTimeout = d

		return nil
	})
}

// WithClientLogger sets the logger used by the client.
func WithClientLogger(l logger.Logger) ClientOption {
	return clientOptFunc(func(cfg *Config) error {
		if l == nil {
			return fmt.Errorf("scpi: logger cannot be nil")
		}
		cfg.logger = l

		return nil
	})
}
