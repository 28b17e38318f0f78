// Package awg drives a 33220A-class arbitrary waveform generator through
// the scpi message layer. All voltages are peak-to-peak unless a method
// says otherwise; frequencies are Hz.
//
// The driver works over any scpi.Bus, so the same code talks to a
// generator on a LAN socket (scpi.Dial) or behind a Prologix GPIB adapter.
package awg

import (
	"fmt"
	"sync"

	"github.com/scottschoenjr/hardware/scpi"
)

// Shape is the output function shape, a closed set matching the
// generator's FUNC vocabulary.
type Shape int

const (
	Sine Shape = iota
	Square
	Ramp
	Pulse
	Noise
	DC
)

// String returns the SCPI mnemonic for the shape.
func (s Shape) String() string {
	switch s {
	case Sine:
		return "SIN"
	case Square:
		return "SQU"
	case Ramp:
		return "RAMP"
	case Pulse:
		return "PULS"
	case Noise:
		return "NOIS"
	case DC:
		return "DC"
	default:
		return "UNKNOWN"
	}
}

// parseShape maps a FUNC? reply back onto the Shape set.
func parseShape(resp string) (Shape, error) {
	switch resp {
	case "SIN":
		return Sine, nil
	case "SQU":
		return Square, nil
	case "RAMP":
		return Ramp, nil
	case "PULS":
		return Pulse, nil
	case "NOIS":
		return Noise, nil
	case "DC":
		return DC, nil
	default:
		return 0, fmt.Errorf("awg: unknown function shape %q", resp)
	}
}

// TriggerSource selects what initiates a burst.
type TriggerSource int

const (
	TriggerImmediate TriggerSource = iota
	TriggerExternal
	TriggerBus
)

func (t TriggerSource) String() string {
	switch t {
	case TriggerImmediate:
		return "IMM"
	case TriggerExternal:
		return "EXT"
	case TriggerBus:
		return "BUS"
	default:
		return "UNKNOWN"
	}
}

// Generator is one waveform generator. A mutex serializes operations so
// concurrent callers cannot interleave command/reply cycles.
type Generator struct {
	mu  sync.Mutex
	bus scpi.Bus
}

// New creates a Generator over bus.
func New(bus scpi.Bus) *Generator {
	return &Generator{bus: bus}
}

// Identify returns the generator's *IDN? string.
func (g *Generator) Identify() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return scpi.Identify(g.bus)
}

// Reset returns the generator to power-on defaults.
func (g *Generator) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return scpi.Reset(g.bus)
}

// Apply configures shape, frequency, amplitude and offset in one command,
// the generator's atomic "set everything" form.
func (g *Generator) Apply(shape Shape, freqHz, amplitudeVpp, offsetV float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.bus.Command(fmt.Sprintf("APPL:%s %G,%G,%G", shape, freqHz, amplitudeVpp, offsetV))
}

// SetShape selects the output function shape.
func (g *Generator) SetShape(shape Shape) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.bus.Command(fmt.Sprintf("FUNC %s", shape))
}

// Shape returns the current output function shape.
func (g *Generator) Shape() (Shape, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	resp, err := g.bus.Query("FUNC?")
	if err != nil {
		return 0, err
	}

	return parseShape(resp)
}

// SetFrequency sets the output frequency in Hz.
func (g *Generator) SetFrequency(hz float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if hz <= 0 {
		return fmt.Errorf("awg: frequency must be positive, got %G", hz)
	}

	return g.bus.Command(fmt.Sprintf("FREQ %G", hz))
}

// Frequency returns the output frequency in Hz.
func (g *Generator) Frequency() (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return scpi.QueryFloat(g.bus, "FREQ?")
}

// SetAmplitude sets the output amplitude in volts peak-to-peak.
func (g *Generator) SetAmplitude(vpp float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if vpp <= 0 {
		return fmt.Errorf("awg: amplitude must be positive, got %G", vpp)
	}

	return g.bus.Command(fmt.Sprintf("VOLT %G", vpp))
}

// Amplitude returns the output amplitude in volts peak-to-peak.
func (g *Generator) Amplitude() (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return scpi.QueryFloat(g.bus, "VOLT?")
}

// SetOffset sets the DC offset in volts.
func (g *Generator) SetOffset(v float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.bus.Command(fmt.Sprintf("VOLT:OFFS %G", v))
}

// Offset returns the DC offset in volts.
func (g *Generator) Offset() (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return scpi.QueryFloat(g.bus, "VOLT:OFFS?")
}

// SetOutputLoad tells the generator the load impedance in ohms so its
// amplitude calibration matches the circuit.
func (g *Generator) SetOutputLoad(ohms float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ohms <= 0 {
		return fmt.Errorf("awg: load impedance must be positive, got %G", ohms)
	}

	return g.bus.Command(fmt.Sprintf("OUTP:LOAD %G", ohms))
}

// SetOutputLoadHighZ configures the amplitude calibration for an open
// (high-impedance) load.
func (g *Generator) SetOutputLoadHighZ() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.bus.Command("OUTP:LOAD INF")
}

// EnableOutput switches the front-panel output on.
func (g *Generator) EnableOutput() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.bus.Command("OUTP ON")
}

// DisableOutput switches the front-panel output off.
func (g *Generator) DisableOutput() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.bus.Command("OUTP OFF")
}

// Output reports whether the front-panel output is on.
func (g *Generator) Output() (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return scpi.QueryBool(g.bus, "OUTP?")
}

// ConfigureBurst sets up a triggered burst of cycles repetitions with the
// given internal trigger period in seconds. Call EnableBurst to arm it.
func (g *Generator) ConfigureBurst(cycles int, periodSec float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cycles < 1 {
		return fmt.Errorf("awg: burst cycle count must be at least 1, got %d", cycles)
	}
	if periodSec <= 0 {
		return fmt.Errorf("awg: burst period must be positive, got %G", periodSec)
	}

	cmds := []string{
		"BURS:MODE TRIG",
		fmt.Sprintf("BURS:NCYC %d", cycles),
		fmt.Sprintf("BURS:INT:PER %G", periodSec),
	}
	for _, cmd := range cmds {
		if err := g.bus.Command(cmd); err != nil {
			return err
		}
	}

	return nil
}

// SetBurstPhase sets the burst start phase in degrees.
func (g *Generator) SetBurstPhase(deg float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.bus.Command(fmt.Sprintf("BURS:PHAS %G", deg))
}

// EnableBurst arms burst mode.
func (g *Generator) EnableBurst() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.bus.Command("BURS:STAT ON")
}

// DisableBurst disarms burst mode.
func (g *Generator) DisableBurst() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.bus.Command("BURS:STAT OFF")
}

// SetTriggerSource selects what initiates a triggered burst.
func (g *Generator) SetTriggerSource(src TriggerSource) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if src < TriggerImmediate || src > TriggerBus {
		return fmt.Errorf("awg: invalid trigger source %d", src)
	}

	return g.bus.Command(fmt.Sprintf("TRIG:SOUR %s", src))
}

// Trigger fires one software trigger (*TRG), for use with TriggerBus.
func (g *Generator) Trigger() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.bus.Command("*TRG")
}

// PopError pops one entry from the generator's error queue; nil means the
// queue is empty.
func (g *Generator) PopError() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return scpi.PopError(g.bus)
}
