package comm

import (
	"fmt"
	"time"

	"github.com/scottschoenjr/hardware/logger"
)

// Default exchange cadence. The retry interval doubles as the poll interval
// unless WithPollInterval decouples them.
const (
	DefaultRetryInterval = 100 * time.Millisecond
	DefaultTimeout       = 5 * time.Second
)

// Config holds the cadence and deadline settings for a Transceiver.
type Config struct {
	// retryInterval is how long an unanswered command waits before being
	// written again.
	retryInterval time.Duration

	// pollInterval is the sleep between input polls. Zero means "track the
	// retry interval", the coupled default: one tick both re-sends and
	// polls.
	pollInterval time.Duration

	// timeout bounds the whole exchange.
	timeout time.Duration

	logger logger.Logger
}

// NewConfig creates an exchange configuration.
//
// opts are functional options applied in order; see With* functions.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		retryInterval: DefaultRetryInterval,
		timeout:       DefaultTimeout,
		logger:        logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// RetryInterval returns the configured re-send interval.
func (cfg *Config) RetryInterval() time.Duration { return cfg.retryInterval }

// PollInterval returns the input poll interval. Unless explicitly
// decoupled with WithPollInterval it equals the retry interval.
func (cfg *Config) PollInterval() time.Duration {
	if cfg.pollInterval > 0 {
		return cfg.pollInterval
	}

	return cfg.retryInterval
}

// Timeout returns the overall exchange deadline.
func (cfg *Config) Timeout() time.Duration { return cfg.timeout }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// --- Option ---

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithRetryInterval sets how long an unanswered command waits before being
// re-sent. It also drives the poll cadence unless WithPollInterval is given.
func WithRetryInterval(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return fmt.Errorf("comm: retry interval must be positive, got %v", d)
		}
		cfg.retryInterval = d

		return nil
	})
}

// WithPollInterval decouples the input poll cadence from the retry
// interval. Use it to poll faster than the device should be re-commanded.
func WithPollInterval(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return fmt.Errorf("comm: poll interval must be positive, got %v", d)
		}
		cfg.pollInterval = d

		return nil
	})
}

// WithTimeout sets the overall deadline for one exchange.
func WithTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return fmt.Errorf("comm: timeout must be positive, got %v", d)
		}
		cfg.timeout = d

		return nil
	})
}

// WithLogger sets the logger used by the exchange loop.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return fmt.Errorf("comm: logger cannot be nil")
		}
		cfg.logger = l

		return nil
	})
}
