package scope

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/scottschoenjr/hardware/scpi"
)

// DSO drives an Infiniium-class digital storage oscilloscope. Vertical
// settings are full-scale volts, the timebase is the full capture window
// in seconds.
//
// A mutex serializes operations; a waveform transfer is many commands and
// queries and must not interleave with another caller's.
type DSO struct {
	mu  sync.Mutex
	bus scpi.Bus
}

// NewDSO creates a DSO driver over bus.
func NewDSO(bus scpi.Bus) *DSO {
	return &DSO{bus: bus}
}

// Identify returns the scope's *IDN? string.
func (d *DSO) Identify() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return scpi.Identify(d.bus)
}

// SetRange sets a channel's full-scale vertical range in volts.
func (d *DSO) SetRange(channel int, fullScaleV float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := validChannel(channel); err != nil {
		return err
	}

	return d.bus.Command(fmt.Sprintf(":CHAN%d:RANG %G", channel, fullScaleV))
}

// Range returns a channel's full-scale vertical range in volts.
func (d *DSO) Range(channel int) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := validChannel(channel); err != nil {
		return 0, err
	}

	return scpi.QueryFloat(d.bus, fmt.Sprintf(":CHAN%d:RANG?", channel))
}

// SetOffset sets a channel's vertical center in volts.
func (d *DSO) SetOffset(channel int, v float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := validChannel(channel); err != nil {
		return err
	}

	return d.bus.Command(fmt.Sprintf(":CHAN%d:OFFS %G", channel, v))
}

// Offset returns a channel's vertical center in volts.
func (d *DSO) Offset(channel int) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := validChannel(channel); err != nil {
		return 0, err
	}

	return scpi.QueryFloat(d.bus, fmt.Sprintf(":CHAN%d:OFFS?", channel))
}

// SetTimebase sets the full horizontal capture window in seconds.
func (d *DSO) SetTimebase(fullWidthSec float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if fullWidthSec <= 0 {
		return fmt.Errorf("scope: timebase must be positive, got %G", fullWidthSec)
	}

	return d.bus.Command(fmt.Sprintf(":TIM:RANG %G", fullWidthSec))
}

// Timebase returns the full horizontal capture window in seconds.
func (d *DSO) Timebase() (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return scpi.QueryFloat(d.bus, ":TIM:RANG?")
}

// SetSampleRate sets the analog sample rate in samples per second.
func (d *DSO) SetSampleRate(hz float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if hz <= 0 {
		return fmt.Errorf("scope: sample rate must be positive, got %G", hz)
	}

	return d.bus.Command(fmt.Sprintf(":ACQ:SRAT:ANAL %G", hz))
}

// SampleRate returns the analog sample rate in samples per second.
func (d *DSO) SampleRate() (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return scpi.QueryFloat(d.bus, ":ACQ:SRAT:ANAL?")
}

// SetRecordLength sets the number of points a waveform transfer returns.
func (d *DSO) SetRecordLength(points int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if points < 1 {
		return fmt.Errorf("scope: record length must be at least 1, got %d", points)
	}

	return d.bus.Command(fmt.Sprintf(":WAV:POIN %d", points))
}

// RecordLength returns the number of points a waveform transfer returns.
func (d *DSO) RecordLength() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return scpi.QueryInt(d.bus, ":WAV:POIN?")
}

// Digitize triggers an acquisition on the given channels and blocks the
// instrument's parser until it completes. With no channels it digitizes
// whatever is displayed.
func (d *DSO) Digitize(channels ...int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, ch := range channels {
		if err := validChannel(ch); err != nil {
			return err
		}
	}

	return d.digitize(channels)
}

// digitize issues :DIG. Callers hold d.mu.
func (d *DSO) digitize(channels []int) error {
	cmd := ":DIG"
	if len(channels) > 0 {
		args := make([]string, len(channels))
		for i, ch := range channels {
			args[i] = fmt.Sprintf("CHAN%d", ch)
		}
		cmd += " " + strings.Join(args, ",")
	}

	return d.bus.Command(cmd)
}

// AcquireWaveform digitizes the given channels and downloads their
// records. Samples transfer as signed 16-bit words in the host's byte
// order, negotiated with the instrument before the first download.
//
// The bus must implement scpi.BlockBus; otherwise the call fails with
// scpi.ErrBlockUnsupported.
func (d *DSO) AcquireWaveform(channels ...int) (*Waveform, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	bb, ok := d.bus.(scpi.BlockBus)
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

	order, mnemonic := hostOrder()
	setup := []string{
		":WAV:FORM WORD",
		":WAV:BYT " + mnemonic,
		":WAV:UNS 0",
	}
	for _, cmd := range setup {
		if err := d.bus.Command(cmd); err != nil {
			return nil, err
		}
	}

	if err := d.digitize(channels); err != nil {
		return nil, err
	}

	wf := &Waveform{Channels: make(map[int]Trace, len(channels))}
	for _, ch := range channels {
		if err := d.bus.Command(fmt.Sprintf(":WAV:SOUR CHAN%d", ch)); err != nil {
			return nil, err
		}

		scale, err := scpi.QueryFloat(d.bus, ":WAV:YINC?")
		if err != nil {
			return nil, err
		}
		offset, err := scpi.QueryFloat(d.bus, ":WAV:YOR?")
		if err != nil {
			return nil, err
		}
		ref, err := scpi.QueryFloat(d.bus, ":WAV:YREF?")
		if err != nil {
			return nil, err
		}

		raw, err := bb.QueryBlock(":WAV:DATA?")
		if err != nil {
			return nil, err
		}
		counts, err := decodeCounts(raw, order)
		if err != nil {
			return nil, err
		}

		wf.Channels[ch] = Trace{Scale: scale, Offset: offset, Reference: ref, Data: counts}
	}

	dt, err := scpi.QueryFloat(d.bus, ":WAV:XINC?")
	if err != nil {
		return nil, err
	}
	wf.DT = dt

	return wf, nil
}

// hostOrder returns the CPU byte order and the instrument mnemonic that
// asks for it, so downloaded words need no swap.
func hostOrder() (binary.ByteOrder, string) {
	if binary.NativeEndian.Uint16([]byte{0x01, 0x00}) == 1 {
		return binary.LittleEndian, "LSBF"
	}

	return binary.BigEndian, "MSBF"
}
