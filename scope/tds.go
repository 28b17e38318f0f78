package scope

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/scottschoenjr/hardware/internal/pool"
	"github.com/scottschoenjr/hardware/scpi"
)

// busyPollInterval paces WaitAcquisition's BUSY? polling.
const busyPollInterval = 100 * time.Millisecond

// TDS drives a TDS-family oscilloscope. Unlike the DSO dialect, vertical
// and horizontal settings are per-division, and records download as
// signed big-endian words calibrated by the WFMPre preamble.
type TDS struct {
	mu  sync.Mutex
	bus scpi.Bus
}

// NewTDS creates a TDS driver over bus.
func NewTDS(bus scpi.Bus) *TDS {
	return &TDS{bus: bus}
}

// Identify returns the scope's *IDN? string.
func (t *TDS) Identify() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return scpi.Identify(t.bus)
}

// SetVerticalScale sets a channel's sensitivity in volts per division.
func (t *TDS) SetVerticalScale(channel int, voltsPerDiv float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := validChannel(channel); err != nil {
		return err
	}
	if voltsPerDiv <= 0 {
		return fmt.Errorf("scope: vertical scale must be positive, got %G", voltsPerDiv)
	}

	return t.bus.Command(fmt.Sprintf("CH%d:SCA %G", channel, voltsPerDiv))
}

// VerticalScale returns a channel's sensitivity in volts per division.
func (t *TDS) VerticalScale(channel int) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := validChannel(channel); err != nil {
		return 0, err
	}

	return scpi.QueryFloat(t.bus, fmt.Sprintf("CH%d:SCA?", channel))
}

// SetVerticalPosition moves a channel's trace by divisions from center.
func (t *TDS) SetVerticalPosition(channel int, divisions float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := validChannel(channel); err != nil {
		return err
	}

	return t.bus.Command(fmt.Sprintf("CH%d:POS %G", channel, divisions))
}

// SetHorizontalScale sets the sweep speed in seconds per division.
func (t *TDS) SetHorizontalScale(secPerDiv float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if secPerDiv <= 0 {
		return fmt.Errorf("scope: horizontal scale must be positive, got %G", secPerDiv)
	}

	return t.bus.Command(fmt.Sprintf("HOR:MAI:SCA %G", secPerDiv))
}

// HorizontalScale returns the sweep speed in seconds per division.
func (t *TDS) HorizontalScale() (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return scpi.QueryFloat(t.bus, "HOR:MAI:SCA?")
}

// SingleSequence arms the scope to capture exactly one acquisition and
// stop. Poll WaitAcquisition to learn when the capture lands.
func (t *TDS) SingleSequence() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.bus.Command("ACQ:STOPA SEQ"); err != nil {
		return err
	}

	return t.bus.Command("ACQ:STATE RUN")
}

// Run restarts continuous acquisition.
func (t *TDS) Run() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.bus.Command("ACQ:STOPA RUNST"); err != nil {
		return err
	}

	return t.bus.Command("ACQ:STATE RUN")
}

// Stop halts acquisition.
func (t *TDS) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.bus.Command("ACQ:STATE STOP")
}

// Busy reports whether an acquisition or other overlapped operation is
// still in progress.
func (t *TDS) Busy() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return scpi.QueryBool(t.bus, "BUSY?")
}

// WaitAcquisition polls BUSY? until the scope reports idle, typically
// after SingleSequence when the trigger arrives. ctx bounds the wait.
func (t *TDS) WaitAcquisition(ctx context.Context) error {
	for {
		busy, err := t.Busy()
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}

		timer := pool.AcquireTimer(busyPollInterval)
		select {
		case <-ctx.Done():
			pool.ReleaseTimer(timer)
			return fmt.Errorf("scope: wait acquisition: %w", ctx.Err())
		case <-timer.C:
		}
		pool.ReleaseTimer(timer)
	}
}

// AcquireWaveform downloads the given channels' records. Samples arrive
// as signed big-endian words ("RIBinary"); the WFMPre preamble supplies
// the affine calibration and sample interval.
//
// The bus must implement scpi.BlockBus; otherwise the call fails with
// scpi.ErrBlockUnsupported.
func (t *TDS) AcquireWaveform(channels ...int) (*Waveform, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bb, ok := t.bus.(scpi.BlockBus)
	if !ok {
		return nil, fmt.Errorf("scope: acquire waveform: %w", scpi.ErrBlockUnsupported)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("scope: acquire waveform needs at least one channel")
	}
	for _, ch := range channels {
		if err := validChannel(ch); err != nil {
			return nil, err
		}
	}

	setup := []string{
		"DAT:ENC RIB",
		"DAT:WID 2",
	}
	for _, cmd := range setup {
		if err := t.bus.Command(cmd); err != nil {
			return nil, err
		}
	}

	wf := &Waveform{Channels: make(map[int]Trace, len(channels))}
	for _, ch := range channels {
		if err := t.bus.Command(fmt.Sprintf("DAT:SOU CH%d", ch)); err != nil {
			return nil, err
		}

		scale, err := scpi.QueryFloat(t.bus, "WFMP:YMU?")
		if err != nil {
			return nil, err
		}
		ref, err := scpi.QueryFloat(t.bus, "WFMP:YOF?")
		if err != nil {
			return nil, err
		}
		offset, err := scpi.QueryFloat(t.bus, "WFMP:YZE?")
		if err != nil {
			return nil, err
		}

		raw, err := bb.QueryBlock("CURV?")
		if err != nil {
			return nil, err
		}
		counts, err := decodeCounts(raw, binary.BigEndian)
		if err != nil {
			return nil, err
		}

		wf.Channels[ch] = Trace{Scale: scale, Offset: offset, Reference: ref, Data: counts}
	}

	dt, err := scpi.QueryFloat(t.bus, "WFMP:XIN?")
	if err != nil {
		return nil, err
	}
	wf.DT = dt

	return wf, nil
}
