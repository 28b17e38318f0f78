package scope

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceVolts(t *testing.T) {
	assert := assert.New(t)

	// 8-bit style calibration: mid-scale reference, 10 mV per count.
	tr := Trace{
		Scale:     0.01,
		Offset:    1.5,
		Reference: 128,
		Data:      []int16{128, 228, 28, 0},
	}

	v := tr.Volts()
	assert.Len(v, 4)
	assert.InDelta(1.5, v[0], 1e-12)
	assert.InDelta(2.5, v[1], 1e-12)
	assert.InDelta(0.5, v[2], 1e-12)
	assert.InDelta(0.22, v[3], 1e-12)
}

func TestWaveformTimes(t *testing.T) {
	assert := assert.New(t)

	wf := Waveform{
		DT: 0.25,
		Channels: map[int]Trace{
			1: {Data: []int16{0, 1}},
			2: {Data: []int16{0, 1, 2, 3}},
		},
	}

	times := wf.Times()
	assert.Equal([]float64{0, 0.25, 0.5, 0.75}, times)

	assert.Empty(Waveform{DT: 0.25}.Times())
}

func TestDecodeCounts(t *testing.T) {
	t.Run("Little Endian", func(t *testing.T) {
		assert := assert.New(t)

		raw := []byte{0x34, 0x12, 0xff, 0xff}
		counts, err := decodeCounts(raw, binary.LittleEndian)
		assert.NoError(err)
		assert.Equal([]int16{0x1234, -1}, counts)
	})

	t.Run("Big Endian", func(t *testing.T) {
		assert := assert.New(t)

		raw := []byte{0x12, 0x34, 0x80, 0x00}
		counts, err := decodeCounts(raw, binary.BigEndian)
		assert.NoError(err)
		assert.Equal([]int16{0x1234, -32768}, counts)
	})

	t.Run("Odd Length", func(t *testing.T) {
		assert := assert.New(t)

		_, err := decodeCounts([]byte{0x01, 0x02, 0x03}, binary.BigEndian)
		assert.ErrorContains(err, "odd length")
	})

	t.Run("Empty", func(t *testing.T) {
		assert := assert.New(t)

		counts, err := decodeCounts(nil, binary.BigEndian)
		assert.NoError(err)
		assert.Empty(counts)
	})
}
