package pump

import (
	"fmt"
	"time"

	"github.com/scottschoenjr/hardware/logger"
)

const (
	// DefaultTimeout bounds one command/reply exchange. Pumps answer
	// within tens of milliseconds; anything past this is a wiring or
	// addressing problem.
	DefaultTimeout = 2 * time.Second
	// DefaultPollInterval is the receive polling and re-send cadence.
	DefaultPollInterval = 100 * time.Millisecond
	// NoAddress disables the address prefix for a pump wired alone.
	NoAddress = -1
)

// Config carries a pump's addressing, timing and logging settings.
type Config struct {
	address      int
	timeout      time.Duration
	pollInterval time.Duration
	logger       logger.Logger
}

// NewConfig creates a Config with default values and applies opts in
// order.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		address:      NoAddress,
		timeout:      DefaultTimeout,
		pollInterval: DefaultPollInterval,
		logger:       logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Address returns the configured network address, or NoAddress.
func (c *Config) Address() int { return c.address }

// Timeout returns the exchange deadline.
func (c *Config) Timeout() time.Duration { return c.timeout }

// PollInterval returns the receive polling cadence.
func (c *Config) PollInterval() time.Duration { return c.pollInterval }

// GetLogger returns the configured logger.
func (c *Config) GetLogger() logger.Logger { return c.logger }

// Option configures a Pump.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(c *Config) error { return f(c) }

// WithAddress sets the pump's network address, 0 to 99. Pumps daisy-chained
// on one serial line each need a distinct address; a pump wired alone can
// skip addressing entirely.
func WithAddress(addr int) Option {
	return optFunc(func(c *Config) error {
		if addr < 0 || addr > 99 {
			return fmt.Errorf("pump: address must be 0..99, got %d", addr)
		}
		c.address = addr

		return nil
	})
}

// WithTimeout sets the exchange deadline.
func WithTimeout(d time.Duration) Option {
	return optFunc(func(c *Config) error {
		if d <= 0 {
			return fmt.Errorf("pump: timeout must be positive, got %v", d)
		}
		c.timeout = d

		return nil
	})
}

// WithPollInterval sets the receive polling cadence.
func WithPollInterval(d time.Duration) Option {
	return optFunc(func(c *Config) error {
		if d <= 0 {
			return fmt.Errorf("pump: poll interval must be positive, got %v", d)
		}
		c.pollInterval = d

		return nil
	})
}

// WithLogger sets the logger for pump operations.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(c *Config) error {
		if l == nil {
			return fmt.Errorf("pump: logger cannot be nil")
		}
		c.logger = l

		return nil
	})
}
