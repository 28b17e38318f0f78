// Package stage drives a three-axis stepper positioning controller of
// the VXM family over a serial comm channel.
//
// The controller is programmed rather than conversed with: a command
// string like "C,I2M-400,R" clears the program buffer, loads one motion
// command and runs it, and the controller prints its "^" prompt when the
// program finishes. Waiting for that prompt is how Translate and friends
// detect completion; the prompt predicate plus a generous move deadline
// take the place of a busy flag.
//
// Moves are expressed as Move values, built either from an explicit axis
// and signed step count (Along) or from a bench-relative direction name
// and magnitude (Toward). Both collapse to the same motor index and
// signed steps before any bytes leave the host.
package stage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/scottschoenjr/hardware/comm"
	"github.com/scottschoenjr/hardware/logger"
	"github.com/scottschoenjr/hardware/serial"
)

// readyPrompt is what the controller prints when a program completes.
const readyPrompt = "^"

// positionReply accepts a complete position report: a sign rune followed
// by at least seven digits. Anything shorter is a partial report still
// in flight; rejecting it lets the query's re-send fetch a whole one.
type positionReply struct{}

func (positionReply) Accept(data string) bool {
	if len(data) < 8 {
		return false
	}
	if data[0] != '+' && data[0] != '-' {
		return false
	}
	for _, r := range data[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

func (positionReply) String() string { return "signed position report" }

// Stage is one positioning controller. A mutex serializes operations, so
// a position query can never interleave with a running move's prompt.
type Stage struct {
	mu     sync.Mutex
	ch     comm.Channel
	query  *comm.Transceiver
	run    *comm.Transceiver
	logger logger.Logger
}

// New creates a Stage over an open channel.
//
// opts are functional options applied in order; see With* functions.
func New(ch comm.Channel, opts ...Option) (*Stage, error) {
	if ch == nil {
		return nil, fmt.Errorf("stage: channel cannot be nil")
	}

	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	log := cfg.GetLogger().With("driver", "stage")

	query, err := comm.NewTransceiver(ch,
		comm.WithRetryInterval(cfg.PollInterval()),
		comm.WithTimeout(cfg.QueryTimeout()),
		comm.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	// A motion program must reach the controller exactly once. Re-running
	// "C,I1M400,R" after the first completes would move again, so the run
	// transceiver's retry never comes due inside the move deadline while
	// polling continues at the query cadence.
	run, err := comm.NewTransceiver(ch,
		comm.WithRetryInterval(2*cfg.MoveTimeout()),
		comm.WithPollInterval(cfg.PollInterval()),
		comm.WithTimeout(cfg.MoveTimeout()),
		comm.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	return &Stage{ch: ch, query: query, run: run, logger: log}, nil
}

// Open dials the controller's serial device with the settings the
// controller ships with: 9600 8N1 and no transmit terminator, since
// command strings carry their own framing.
func Open(device string, opts ...Option) (*Stage, error) {
	port, err := serial.Open(device, serial.WithTxTerminator(""))
	if err != nil {
		return nil, err
	}

	st, err := New(port, opts...)
	if err != nil {
		_ = port.Close()
		return nil, err
	}

	return st, nil
}

// Close closes the underlying channel when it can be closed.
func (s *Stage) Close() error {
	if c, ok := s.ch.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

// Online puts the controller in remote mode with echo off and clears any
// stale program.
func (s *Stage) Online(ctx context.Context) error {
	if _, err := s.exchange(ctx, s.query, "F", comm.None()); err != nil {
		return err
	}

	_, err := s.exchange(ctx, s.query, "C", comm.None())

	return err
}

// Offline returns the controller to front-panel control.
func (s *Stage) Offline(ctx context.Context) error {
	_, err := s.exchange(ctx, s.query, "Q", comm.None())

	return err
}

// Translate runs a relative move and waits for the completion prompt.
func (s *Stage) Translate(ctx context.Context, mv Move) error {
	if err := validAxis(mv.axis); err != nil {
		return err
	}
	if mv.steps == 0 {
		// M0 is the controller's limit-seek form, not a no-op.
		return nil
	}

	cmd := fmt.Sprintf("C,I%dM%d,R", mv.axis, mv.steps)
	_, err := s.exchange(ctx, s.run, cmd, comm.EndsWithAny(readyPrompt))

	return err
}

// TranslateAbsolute moves an axis to an absolute step position and waits
// for the completion prompt.
func (s *Stage) TranslateAbsolute(ctx context.Context, axis Axis, position int) error {
	if err := validAxis(axis); err != nil {
		return err
	}

	cmd := fmt.Sprintf("C,IA%dM%d,R", axis, position)
	_, err := s.exchange(ctx, s.run, cmd, comm.EndsWithAny(readyPrompt))

	return err
}

// Home drives an axis to its negative limit switch. Follow with Zero to
// make that spot the origin.
func (s *Stage) Home(ctx context.Context, axis Axis) error {
	if err := validAxis(axis); err != nil {
		return err
	}

	cmd := fmt.Sprintf("C,I%dM-0,R", axis)
	_, err := s.exchange(ctx, s.run, cmd, comm.EndsWithAny(readyPrompt))

	return err
}

// SetSpeed sets an axis speed in steps per second, 1 to 6000.
func (s *Stage) SetSpeed(ctx context.Context, axis Axis, stepsPerSec int) error {
	if err := validAxis(axis); err != nil {
		return err
	}
	if stepsPerSec < 1 || stepsPerSec > 6000 {
		return fmt.Errorf("stage: speed must be 1..6000 steps/s, got %d", stepsPerSec)
	}

	cmd := fmt.Sprintf("C,S%dM%d,R", axis, stepsPerSec)
	_, err := s.exchange(ctx, s.query, cmd, comm.EndsWithAny(readyPrompt))

	return err
}

// Position reads an axis position in steps from the controller's
// position register.
func (s *Stage) Position(ctx context.Context, axis Axis) (int, error) {
	if err := validAxis(axis); err != nil {
		return 0, err
	}

	resp, err := s.exchange(ctx, s.query, axis.String(), positionReply{})
	if err != nil {
		return 0, err
	}

	steps, err := strconv.Atoi(resp)
	if err != nil {
		return 0, fmt.Errorf("stage: position reply %q: %w", resp, err)
	}

	return steps, nil
}

// Ready reports whether the controller is idle. The verify command
// answers "R" when ready and "B" while a program runs.
func (s *Stage) Ready(ctx context.Context) (bool, error) {
	resp, err := s.exchange(ctx, s.query, "V", comm.EndsWithAny("RB"))
	if err != nil {
		return false, err
	}

	return strings.HasSuffix(resp, "R"), nil
}

// Zero nulls all position registers, making the current spot the origin.
func (s *Stage) Zero(ctx context.Context) error {
	_, err := s.exchange(ctx, s.query, "N", comm.None())

	return err
}

// Kill aborts any running program immediately. It does not wait; the
// next operation's stale-input drain eats whatever prompt the aborted
// program leaves behind.
func (s *Stage) Kill(ctx context.Context) error {
	_, err := s.exchange(ctx, s.query, "K", comm.None())

	return err
}

// exchange runs one command through tr after discarding stale input.
func (s *Stage) exchange(ctx context.Context, tr *comm.Transceiver, cmd string, pred comm.Predicate) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drainStale()

	outcome, err := tr.Exchange(ctx, cmd, pred)
	if err != nil {
		if errors.Is(err, comm.ErrTimeout) && outcome.Response != "" {
			return "", fmt.Errorf("stage: %s: %w (last reply %q)", cmd, err, outcome.Response)
		}
		return "", fmt.Errorf("stage: %s: %w", cmd, err)
	}

	return outcome.Response, nil
}

// drainStale throws away bytes left over from an interrupted exchange,
// so an old prompt cannot satisfy the next command's predicate.
func (s *Stage) drainStale() {
	if s.ch.BytesPending() == 0 {
		return
	}

	stale, err := s.ch.ReadAvailable()
	if err != nil || stale == "" {
		return
	}

	s.logger.Debug("discarded stale input", "data", stale)
}
