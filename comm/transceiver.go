package comm

import (
	"context"
	"fmt"
	"time"

	"github.com/scottschoenjr/hardware/internal/pool"
	"github.com/scottschoenjr/hardware/logger"
)

// Outcome is the result of one exchange.
//
// When TimedOut is false, Response satisfies the predicate the exchange was
// run with. When TimedOut is true, Response holds whatever text was last
// read before the deadline, possibly empty or malformed; it is preserved so
// callers can log exactly what the device said.
type Outcome struct {
	Response string
	TimedOut bool
}

// Transceiver binds a Channel to a retry cadence and deadline and runs the
// blocking poll loop for synchronous command/response exchanges.
//
// A Transceiver is not goroutine-safe: exchanges on one channel must not
// overlap. The instrument drivers serialize access with one mutex per
// instrument.
type Transceiver struct {
	ch      Channel
	cfg     *Config
	logger  logger.Logger
	metrics ExchangeMetrics
}

// NewTransceiver creates a Transceiver over ch.
//
// opts are functional options applied in order; see With* functions.
func NewTransceiver(ch Channel, opts ...Option) (*Transceiver, error) {
	if ch == nil {
		return nil, fmt.Errorf("comm: channel cannot be nil")
	}

	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Transceiver{
		ch:     ch,
		cfg:    cfg,
		logger: cfg.GetLogger(),
	}, nil
}

// Config returns the cadence and deadline settings of this transceiver.
func (t *Transceiver) Config() *Config { return t.cfg }

// Metrics returns the exchange counters of this transceiver.
func (t *Transceiver) Metrics() *ExchangeMetrics { return &t.metrics }

// Exchange writes command to the channel and polls until pred accepts the
// accumulated reply, the configured timeout elapses, or ctx is canceled.
//
// The command is written again each time a full retry interval passes
// without an accepted reply, so callers must use command forms the device
// either treats idempotently or discards while busy.
//
// A nil pred is treated as None(): the command is written once and the
// exchange returns immediately with the NoReply sentinel.
//
// On timeout Exchange returns ErrTimeout together with an Outcome whose
// TimedOut flag is set and whose Response preserves the last partial read.
// On cancellation it returns ctx.Err() the same way. Both leave the channel
// usable; a later exchange starts fresh.
func (t *Transceiver) Exchange(ctx context.Context, command string, pred Predicate) (Outcome, error) {
	if !t.ch.IsOpen() {
		return Outcome{}, ErrNotConnected
	}
	if command == "" {
		return Outcome{}, ErrInvalidCommand
	}
	if pred == nil {
		pred = None()
	}

	if err := t.ch.Send(command); err != nil {
		return Outcome{}, fmt.Errorf("comm: send %q: %w", command, err)
	}
	t.metrics.incSendCount()

	if _, ok := pred.(noReplyPredicate); ok {
		return Outcome{Response: NoReply}, nil
	}

	var (
		retry   = t.cfg.RetryInterval()
		poll    = t.cfg.PollInterval()
		timeout = t.cfg.Timeout()
	)

	start := time.Now()
	lastSend := start

	var outcome Outcome
	for {
		// Write the command again once a full retry interval has passed
		// since the last write. With the default coupled cadence this is
		// every tick.
		if time.Since(lastSend) >= retry {
			if err := t.ch.Send(command); err != nil {
				return outcome, fmt.Errorf("comm: re-send %q: %w", command, err)
			}
			lastSend = time.Now()
			t.metrics.incSendCount()
			t.metrics.incRetryCount()
		}

		if err := t.sleep(ctx, poll); err != nil {
			return outcome, err
		}

		if t.ch.BytesPending() > 0 {
			text, err := t.ch.ReadAvailable()
			if err != nil {
				return outcome, fmt.Errorf("comm: read: %w", err)
			}
			// Only a poll that yielded data replaces the reply text. An
			// empty poll must never clobber a reply read on an earlier
			// tick.
			outcome.Response = text

			if pred.Accept(outcome.Response) {
				t.metrics.incReplyCount()
				t.logger.Debug("reply accepted",
					"command", command,
					"predicate", pred.String(),
					"response", outcome.Response,
					"elapsed", time.Since(start),
				)

				return outcome, nil
			}
		}

		if time.Since(start) > timeout {
			outcome.TimedOut = true
			t.metrics.incTimeoutCount()
			t.logger.Debug("reply timeout",
				"command", command,
				"predicate", pred.String(),
				"partial", outcome.Response,
				"timeout", timeout,
			)

			return outcome, ErrTimeout
		}
	}
}

// sleep blocks for one poll interval or until ctx is canceled.
func (t *Transceiver) sleep(ctx context.Context, d time.Duration) error {
	timer := pool.AcquireTimer(d)
	defer pool.ReleaseTimer(timer)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
