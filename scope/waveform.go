package scope

import (
	"encoding/binary"
	"fmt"
)

// Trace is one channel's digitized record together with the affine
// calibration needed to recover volts:
//
//	v = (count - Reference)*Scale + Offset
type Trace struct {
	Scale     float64 // volts per count
	Offset    float64 // volts at the reference count
	Reference float64 // count level the offset is measured at
	Data      []int16 // raw ADC counts
}

// Volts converts the raw record to calibrated volts.
func (t Trace) Volts() []float64 {
	out := make([]float64, len(t.Data))
	for i, c := range t.Data {
		out[i] = (float64(c)-t.Reference)*t.Scale + t.Offset
	}

	return out
}

// Waveform is one acquisition across one or more channels sharing a
// common sample clock.
type Waveform struct {
	DT       float64       // seconds between consecutive samples
	Channels map[int]Trace // keyed by channel number
}

// Times returns the sample instants in seconds, starting at zero, sized
// to the longest channel record.
func (w Waveform) Times() []float64 {
	n := 0
	for _, tr := range w.Channels {
		if len(tr.Data) > n {
			n = len(tr.Data)
		}
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * w.DT
	}

	return out
}

// decodeCounts reinterprets a raw block payload as 16-bit samples in the
// given byte order.
func decodeCounts(raw []byte, order binary.ByteOrder) ([]int16, error) {
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("scope: waveform block has odd length %d", len(raw))
	}

	out := make([]int16, len(raw)/2)
	for i := range out {
		out[i] = int16(order.Uint16(raw[2*i:]))
	}

	return out, nil
}

// validChannel guards the channel numbers accepted by both drivers.
func validChannel(ch int) error {
	if ch < 1 || ch > 4 {
		return fmt.Errorf("scope: channel must be 1..4, got %d", ch)
	}

	return nil
}
