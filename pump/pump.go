// Package pump drives a laboratory syringe pump over a serial comm
// channel.
//
// The pump speaks a carriage-return framed ASCII protocol designed for
// multi-drop wiring: several pumps share one serial line, commands carry
// a numeric unit address ("3 RUN") and replies echo it back ("3:OK.").
// The address in every reply is checked against the configured one, so a
// chatty neighbor on the line cannot be mistaken for an acknowledgment.
//
// Every command is an absolute setpoint or a state request, acknowledged
// with OK even when the pump is already in the requested state. The
// channel's re-send on a lost reply is therefore harmless.
package pump

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

var (
	// ErrCommandRefused reports the pump answered "NA.", meaning the
	// command does not apply in its current state.
	ErrCommandRefused = errors.New("pump: command not applicable")

	// ErrCrosstalk reports a reply carrying the wrong unit address.
	ErrCrosstalk = errors.New("pump: reply address mismatch")
)

// Direction is the pumping direction.
type Direction int

const (
	Infuse Direction = iota
	Withdraw
)

// String returns the protocol code for the direction.
func (d Direction) String() string {
	switch d {
	case Infuse:
		return "INF"
	case Withdraw:
		return "WDR"
	default:
		return "UNKNOWN"
	}
}

// RateUnit is the unit a flow rate is expressed in.
type RateUnit int

const (
	MLPerMin RateUnit = iota
	ULPerMin
	MLPerHour
	ULPerHour
)

// String returns the protocol code for the unit.
func (u RateUnit) String() string {
	switch u {
	case MLPerMin:
		return "MM"
	case ULPerMin:
		return "UM"
	case MLPerHour:
		return "MH"
	case ULPerHour:
		return "UH"
	default:
		return "UNKNOWN"
	}
}

// Status is the pump's reported operating state.
type Status int

const (
	Stopped Status = iota
	Infusing
	Withdrawing
	Paused
	Stalled
)

func (s Status) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Infusing:
		return "infusing"
	case Withdrawing:
		return "withdrawing"
	case Paused:
		return "paused"
	case Stalled:
		return "stalled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func parseStatus(payload string) (Status, error) {
	switch payload {
	case "STP.":
		return Stopped, nil
	case "INF.":
		return Infusing, nil
	case "WDR.":
		return Withdrawing, nil
	case "PAU.":
		return Paused, nil
	case "STL.":
		return Stalled, nil
	default:
		return 0, fmt.Errorf("pump: unknown status %q", payload)
	}
}

// Pump is one syringe pump on a serial line. A mutex serializes
// operations so replies stay paired with their commands.
type Pump struct {
	mu     sync.Mutex
	ch     comm.Channel
	tr     *comm.Transceiver
	addr   int
	logger logger.Logger
}

// New creates a Pump over an open channel.
//
// opts are functional options applied in order; see With* functions.
func New(ch comm.Channel, opts ...Option) (*Pump, error) {
	if ch == nil {
		return nil, fmt.Errorf("pump: channel cannot be nil")
	}

	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	log := cfg.GetLogger().With("driver", "pump")

	tr, err := comm.NewTransceiver(ch,
		comm.WithRetryInterval(cfg.PollInterval()),
		comm.WithTimeout(cfg.Timeout()),
		comm.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	return &Pump{ch: ch, tr: tr, addr: cfg.Address(), logger: log}, nil
}

// Open dials the pump's serial device at the factory settings, 19200 8N1
// with carriage-return framing.
func Open(device string, opts ...Option) (*Pump, error) {
	port, err := serial.Open(device, serial.WithBaudRate(19200))
	if err != nil {
		return nil, err
	}

	p, err := New(port, opts...)
	if err != nil {
		_ = port.Close()
		return nil, err
	}

	return p, nil
}

// Close closes the underlying channel when it can be closed.
func (p *Pump) Close() error {
	if c, ok := p.ch.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

// Address returns the configured network address, or NoAddress.
func (p *Pump) Address() int { return p.addr }

// Version reports the pump's model and firmware revision word, such as
// "NE500V3.9". Callers telling pump generations apart should branch on
// this rather than on which commands happen to fail.
func (p *Pump) Version(ctx context.Context) (string, error) {
	payload, err := p.exchange(ctx, "VER")
	if err != nil {
		return "", err
	}

	return payload, nil
}

// SetDiameter sets the syringe inner diameter in millimeters, which
// fixes the volume-per-step calibration.
func (p *Pump) SetDiameter(ctx context.Context, mm float64) error {
	if mm <= 0 || mm > 50 {
		return fmt.Errorf("pump: diameter must be in (0, 50] mm, got %G", mm)
	}

	body := fmt.Sprintf("DIA %.2f", mm)
	payload, err := p.exchange(ctx, body)
	if err != nil {
		return err
	}

	return checkOK(body, payload)
}

// SetRate sets the flow rate in the given unit.
func (p *Pump) SetRate(ctx context.Context, rate float64, unit RateUnit) error {
	if rate <= 0 {
		return fmt.Errorf("pump: rate must be positive, got %G", rate)
	}
	if unit < MLPerMin || unit > ULPerHour {
		return fmt.Errorf("pump: invalid rate unit %d", unit)
	}

	body := fmt.Sprintf("RAT %.3f %s", rate, unit)
	payload, err := p.exchange(ctx, body)
	if err != nil {
		return err
	}

	return checkOK(body, payload)
}

// SetVolume sets the target volume in milliliters; the pump stops on its
// own once that much has been dispensed.
func (p *Pump) SetVolume(ctx context.Context, ml float64) error {
	if ml <= 0 {
		return fmt.Errorf("pump: volume must be positive, got %G", ml)
	}

	body := fmt.Sprintf("VOL %.3f", ml)
	payload, err := p.exchange(ctx, body)
	if err != nil {
		return err
	}

	return checkOK(body, payload)
}

// SetDirection sets the pumping direction.
func (p *Pump) SetDirection(ctx context.Context, dir Direction) error {
	if dir != Infuse && dir != Withdraw {
		return fmt.Errorf("pump: invalid direction %d", dir)
	}

	body := "DIR " + dir.String()
	payload, err := p.exchange(ctx, body)
	if err != nil {
		return err
	}

	return checkOK(body, payload)
}

// Run starts the pump with the current settings.
func (p *Pump) Run(ctx context.Context) error {
	payload, err := p.exchange(ctx, "RUN")
	if err != nil {
		return err
	}

	return checkOK("RUN", payload)
}

// Stop halts the pump.
func (p *Pump) Stop(ctx context.Context) error {
	payload, err := p.exchange(ctx, "STP")
	if err != nil {
		return err
	}

	return checkOK("STP", payload)
}

// Status reports the pump's operating state.
func (p *Pump) Status(ctx context.Context) (Status, error) {
	payload, err := p.exchange(ctx, "STA")
	if err != nil {
		return 0, err
	}

	return parseStatus(payload)
}

// Dispensed reports the volume pumped since the counter was last
// cleared, in milliliters.
func (p *Pump) Dispensed(ctx context.Context) (float64, error) {
	payload, err := p.exchange(ctx, "DIS")
	if err != nil {
		return 0, err
	}

	return parseVolume(payload)
}

// ClearDispensed zeroes the dispensed-volume counter for one direction.
func (p *Pump) ClearDispensed(ctx context.Context, dir Direction) error {
	if dir != Infuse && dir != Withdraw {
		return fmt.Errorf("pump: invalid direction %d", dir)
	}

	body := "CLD " + dir.String()
	payload, err := p.exchange(ctx, body)
	if err != nil {
		return err
	}

	return checkOK(body, payload)
}

// exchange runs one command through the channel after discarding stale
// input, then unwraps and address-checks the reply.
func (p *Pump) exchange(ctx context.Context, body string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.drainStale()

	cmd := body
	if p.addr != NoAddress {
		cmd = fmt.Sprintf("%d %s", p.addr, body)
	}

	outcome, err := p.tr.Exchange(ctx, cmd, comm.EndsWithAny("\r"))
	if err != nil {
		if errors.Is(err, comm.ErrTimeout) && outcome.Response != "" {
			return "", fmt.Errorf("pump: %s: %w (last reply %q)", body, err, outcome.Response)
		}
		return "", fmt.Errorf("pump: %s: %w", body, err)
	}

	frame, err := comm.ParseReply(strings.TrimRight(outcome.Response, "\r\n"))
	if err != nil {
		return "", fmt.Errorf("pump: %s: %w", body, err)
	}
	if frame.Addr != p.addr {
		return "", fmt.Errorf("pump: %s: %w: unit %d answered, expected %d",
			body, ErrCrosstalk, frame.Addr, p.addr)
	}

	return frame.Payload, nil
}

// drainStale throws away bytes left over from an interrupted exchange.
func (p *Pump) drainStale() {
	if p.ch.BytesPending() == 0 {
		return
	}

	stale, err := p.ch.ReadAvailable()
	if err != nil || stale == "" {
		return
	}

	p.logger.Debug("discarded stale input", "data", stale)
}

// checkOK interprets an acknowledgment payload.
func checkOK(body, payload string) error {
	switch payload {
	case "OK.":
		return nil
	case "NA.":
		return fmt.Errorf("pump: %s: %w", body, ErrCommandRefused)
	default:
		return fmt.Errorf("pump: %s: unit answered %q", body, payload)
	}
}

// parseVolume decodes a dispensed-volume payload such as "1.500 ML.".
func parseVolume(payload string) (float64, error) {
	fields := strings.Fields(payload)
	if len(fields) != 2 {
		return 0, fmt.Errorf("pump: unparseable volume report %q", payload)
	}

	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("pump: unparseable volume report %q: %w", payload, err)
	}

	switch fields[1] {
	case "ML.":
		return v, nil
	case "UL.":
		return v / 1000, nil
	default:
		return 0, fmt.Errorf("pump: unknown volume unit in %q", payload)
	}
}
