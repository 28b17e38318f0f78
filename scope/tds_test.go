package scope

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/scottschoenjr/hardware/scpi"
)

func TestTDSSettings(t *testing.T) {
	assert := assert.New(t)

	bus := newFakeBus()
	bus.replies["CH1:SCA?"] = "2.0E-1"
	bus.replies["HOR:MAI:SCA?"] = "1.0E-4"
	tds := NewTDS(bus)

	assert.NoError(tds.SetVerticalScale(1, 0.2))
	assert.Equal("CH1:SCA 0.2", bus.lastCommand())
	assert.Error(tds.SetVerticalScale(1, 0))
	assert.Error(tds.SetVerticalScale(9, 0.2))

	vdiv, err := tds.VerticalScale(1)
	assert.NoError(err)
	assert.InDelta(0.2, vdiv, 1e-9)

	assert.NoError(tds.SetVerticalPosition(1, -1.5))
	assert.Equal("CH1:POS -1.5", bus.lastCommand())

	assert.NoError(tds.SetHorizontalScale(1e-4))
	assert.Equal("HOR:MAI:SCA 0.0001", bus.lastCommand())
	assert.Error(tds.SetHorizontalScale(-1))

	hdiv, err := tds.HorizontalScale()
	assert.NoError(err)
	assert.InDelta(1e-4, hdiv, 1e-12)
}

func TestTDSAcquisitionControl(t *testing.T) {
	assert := assert.New(t)

	bus := newFakeBus()
	tds := NewTDS(bus)

	assert.NoError(tds.SingleSequence())
	assert.Equal([]string{"ACQ:STOPA SEQ", "ACQ:STATE RUN"}, bus.commands)

	bus.commands = nil
	assert.NoError(tds.Run())
	assert.Equal([]string{"ACQ:STOPA RUNST", "ACQ:STATE RUN"}, bus.commands)

	assert.NoError(tds.Stop())
	assert.Equal("ACQ:STATE STOP", bus.lastCommand())
}

func TestTDSWaitAcquisition(t *testing.T) {
	t.Run("Completes When Idle", func(t *testing.T) {
		assert := assert.New(t)

		bus := newFakeBus()
		bus.seq["BUSY?"] = []string{"1", "1", "0"}
		tds := NewTDS(bus)

		start := time.Now()
		err := tds.WaitAcquisition(context.Background())
		assert.NoError(err)
		assert.GreaterOrEqual(time.Since(start), 2*busyPollInterval)
	})

	t.Run("Context Bounds The Wait", func(t *testing.T) {
		assert := assert.New(t)

		bus := newFakeBus()
		bus.replies["BUSY?"] = "1"
		tds := NewTDS(bus)

		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()

		err := tds.WaitAcquisition(ctx)
		assert.ErrorIs(err, context.DeadlineExceeded)
	})
}

func TestTDSAcquireWaveform(t *testing.T) {
	t.Run("Full Transfer", func(t *testing.T) {
		assert := assert.New(t)

		// RIBinary is big-endian regardless of host.
		raw := make([]byte, 4)
		pos, neg := int16(1000), int16(-1000)
		binary.BigEndian.PutUint16(raw[0:], uint16(pos))
		binary.BigEndian.PutUint16(raw[2:], uint16(neg))

		bus := newFakeBlockBus()
		bus.replies["WFMP:YMU?"] = "4.0E-4"
		bus.replies["WFMP:YOF?"] = "0.0E0"
		bus.replies["WFMP:YZE?"] = "0.0E0"
		bus.replies["WFMP:XIN?"] = "4.0E-9"
		bus.blocks["CURV?"] = raw
		tds := NewTDS(bus)

		wf, err := tds.AcquireWaveform(2)
		assert.NoError(err)
		assert.InDelta(4e-9, wf.DT, 1e-15)
		assert.Equal([]int16{1000, -1000}, wf.Channels[2].Data)

		v := wf.Channels[2].Volts()
		assert.InDelta(0.4, v[0], 1e-9)
		assert.InDelta(-0.4, v[1], 1e-9)

		assert.Equal([]string{
			"DAT:ENC RIB",
			"DAT:WID 2",
			"DAT:SOU CH2",
			"WFMP:YMU?",
			"WFMP:YOF?",
			"WFMP:YZE?",
			"CURV?",
			"WFMP:XIN?",
		}, bus.commands)
	})

	t.Run("Bus Without Blocks", func(t *testing.T) {
		assert := assert.New(t)

		tds := NewTDS(newFakeBus())

		_, err := tds.AcquireWaveform(1)
		assert.ErrorIs(err, scpi.ErrBlockUnsupported)
	})
}
