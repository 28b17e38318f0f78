package serial

import (
	"fmt"

	bugst "go.bug.st/serial"

	"github.com/scottschoenjr/hardware/logger"
)

// Default line settings, matching the factory configuration of the serial
// instruments this module drives (9600 8N1, CR-terminated commands).
const (
	DefaultBaudRate     = 9600
	DefaultDataBits     = 8
	DefaultTxTerminator = "\r"
)

// Parity is the parity discipline of the line.
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

// StopBits is the number of stop bits on the line.
type StopBits int

const (
	StopBitsOne StopBits = iota
	StopBitsTwo
)

// Config holds the line settings for a Port.
type Config struct {
	baudRate int
	dataBits int
	parity   Parity
	stopBits StopBits

	// txTerminator is appended to every Send. May be empty for controllers
	// that act on bytes as they arrive.
	txTerminator string

	logger logger.Logger
}

// NewConfig creates a port configuration.
//
// opts are functional options applied in order; see With* functions.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		baudRate:     DefaultBaudRate,
		dataBits:     DefaultDataBits,
		parity:       ParityNone,
		stopBits:     StopBitsOne,
		txTerminator: DefaultTxTerminator,
		logger:       logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// BaudRate returns the configured baud rate.
func (cfg *Config) BaudRate() int { return cfg.baudRate }

// DataBits returns the configured number of data bits.
func (cfg *Config) DataBits() int { return cfg.dataBits }

// Parity returns the configured parity discipline.
func (cfg *Config) Parity() Parity { return cfg.parity }

// StopBits returns the configured number of stop bits.
func (cfg *Config) StopBits() StopBits { return cfg.stopBits }

// TxTerminator returns the terminator appended to every Send.
func (cfg *Config) TxTerminator() string { return cfg.txTerminator }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// mode translates the configuration into go.bug.st/serial line settings.
func (cfg *Config) mode() *bugst.Mode {
	mode := &bugst.Mode{
		BaudRate: cfg.baudRate,
		DataBits: cfg.dataBits,
	}

	switch cfg.parity {
	case ParityOdd:
		mode.Parity = bugst.OddParity
	case ParityEven:
		mode.Parity = bugst.EvenParity
	default:
		mode.Parity = bugst.NoParity
	}

	switch cfg.stopBits {
	case StopBitsTwo:
		mode.StopBits = bugst.TwoStopBits
	default:
		mode.StopBits = bugst.OneStopBit
	}

	return mode
}

// --- Option ---

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithBaudRate sets the line baud rate.
func WithBaudRate(rate int) Option {
	return optFunc(func(cfg *Config) error {
		if rate <= 0 {
			return fmt.Errorf("serial: baud rate must be positive, got %d", rate)
		}
		cfg.baudRate = rate

		return nil
	})
}

// WithDataBits sets the number of data bits per character.
func WithDataBits(bits int) Option {
	return optFunc(func(cfg *Config) error {
		if bits < 5 || bits > 8 {
			return fmt.Errorf("serial: data bits %d out of range [5, 8]", bits)
		}
		cfg.dataBits = bits

		return nil
	})
}

// WithParity sets the parity discipline.
func WithParity(parity Parity) Option {
	return optFunc(func(cfg *Config) error {
		if parity < ParityNone || parity > ParityEven {
			return fmt.Errorf("serial: invalid parity %d", parity)
		}
		cfg.parity = parity

		return nil
	})
}

// WithStopBits sets the number of stop bits.
func WithStopBits(bits StopBits) Option {
	return optFunc(func(cfg *Config) error {
		if bits < StopBitsOne || bits > StopBitsTwo {
			return fmt.Errorf("serial: invalid stop bits %d", bits)
		}
		cfg.stopBits = bits

		return nil
	})
}

// WithTxTerminator sets the terminator appended to every Send. An empty
// terminator sends commands exactly as given.
func WithTxTerminator(term string) Option {
	return optFunc(func(cfg *Config) error {
		cfg.txTerminator = term

		return nil
	})
}

// WithLogger sets the logger used by the port.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return fmt.Errorf("serial: logger cannot be nil")
		}
		cfg.logger = l

		return nil
	})
}
