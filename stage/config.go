package stage

import (
	"fmt"
	"time"

	"github.com/scottschoenjr/hardware/logger"
)

const (
	// DefaultQueryTimeout bounds position and status exchanges.
	DefaultQueryTimeout = 5 * time.Second
	// DefaultMoveTimeout bounds motion programs. Long travels at low
	// speed legitimately take tens of seconds.
	DefaultMoveTimeout = 2 * time.Minute
	// DefaultPollInterval is the receive-buffer polling cadence, and the
	// re-send cadence for idempotent queries.
	DefaultPollInterval = 100 * time.Millisecond
)

// Config carries the stage's timing and logging settings.
type Config struct {
	queryTimeout time.Duration
	moveTimeout  time.Duration
	pollInterval time.Duration
	logger       logger.Logger
}

// NewConfig creates a Config with default values and applies opts in
// order.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		queryTimeout: DefaultQueryTimeout,
		moveTimeout:  DefaultMoveTimeout,
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

// QueryTimeout returns the deadline for position and status exchanges.
func (c *Config) QueryTimeout() time.Duration { return c.queryTimeout }

// MoveTimeout returns the deadline for motion programs.
func (c *Config) MoveTimeout() time.Duration { return c.moveTimeout }

// PollInterval returns the receive polling cadence.
func (c *Config) PollInterval() time.Duration { return c.pollInterval }

// GetLogger returns the configured logger.
func (c *Config) GetLogger() logger.Logger { return c.logger }

// Option configures a Stage.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(c *Config) error { return f(c) }

// WithQueryTimeout sets the deadline for position and status exchanges.
func WithQueryTimeout(d time.Duration) Option {
	return optFunc(func(c *Config) error {
		if d <= 0 {
			return fmt.Errorf("stage: query timeout must be positive, got %v", d)
		}
		c.queryTimeout = d

		return nil
	})
}

// WithMoveTimeout sets the deadline for motion programs.
func WithMoveTimeout(d time.Duration) Option {
	return optFunc(func(c *Config) error {
		if d <= 0 {
			return fmt.Errorf("stage: move timeout must be positive, got %v", d)
		}
		c.moveTimeout = d

		return nil
	})
}

// WithPollInterval sets the receive polling cadence.
func WithPollInterval(d time.Duration) Option {
	return optFunc(func(c *Config) error {
		if d <= 0 {
			return fmt.Errorf("stage: poll interval must be positive, got %v", d)
		}
		c.pollInterval = d

		return nil
	})
}

// WithLogger sets the logger for stage operations.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(c *Config) error {
		if l == nil {
			return fmt.Errorf("stage: logger cannot be nil")
		}
		c.logger = l

		return nil
	})
}
