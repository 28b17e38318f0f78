package pump

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottschoenjr/hardware/comm"
)

func TestSetters(t *testing.T) {
	t.Run("Diameter", func(t *testing.T) {
		assert := assert.New(t)

		ch := newFakeChannel("", "0:OK.\r")
		p := newTestPump(t, ch)

		assert.NoError(p.SetDiameter(context.Background(), 14.57))
		assert.Equal([]string{"0 DIA 14.57"}, ch.sentCommands())
	})

	t.Run("Rate", func(t *testing.T) {
		assert := assert.New(t)

		ch := newFakeChannel("", "0:OK.\r")
		p := newTestPump(t, ch)

		assert.NoError(p.SetRate(context.Background(), 0.5, MLPerMin))
		assert.Equal([]string{"0 RAT 0.500 MM"}, ch.sentCommands())
	})

	t.Run("Volume", func(t *testing.T) {
		assert := assert.New(t)

		ch := newFakeChannel("", "0:OK.\r")
		p := newTestPump(t, ch)

		assert.NoError(p.SetVolume(context.Background(), 1.5))
		assert.Equal([]string{"0 VOL 1.500"}, ch.sentCommands())
	})

	t.Run("Direction", func(t *testing.T) {
		assert := assert.New(t)

		ch := newFakeChannel("", "0:OK.\r")
		p := newTestPump(t, ch)

		assert.NoError(p.SetDirection(context.Background(), Withdraw))
		assert.Equal([]string{"0 DIR WDR"}, ch.sentCommands())
	})

	t.Run("Rejected Settings Never Reach The Line", func(t *testing.T) {
		assert := assert.New(t)

		ch := newFakeChannel()
		p := newTestPump(t, ch)
		ctx := context.Background()

		assert.Error(p.SetDiameter(ctx, 0))
		assert.Error(p.SetDiameter(ctx, 51))
		assert.Error(p.SetRate(ctx, -1, MLPerMin))
		assert.Error(p.SetRate(ctx, 0.5, RateUnit(9)))
		assert.Error(p.SetVolume(ctx, 0))
		assert.Error(p.SetDirection(ctx, Direction(5)))
		assert.Error(p.ClearDispensed(ctx, Direction(5)))
		assert.Empty(ch.sentCommands())
	})
}

func TestRunAndStop(t *testing.T) {
	assert := assert.New(t)

	ch := newFakeChannel("", "0:OK.\r", "", "0:OK.\r")
	p := newTestPump(t, ch)
	ctx := context.Background()

	assert.NoError(p.Run(ctx))
	assert.NoError(p.Stop(ctx))
	assert.Equal([]string{"0 RUN", "0 STP"}, ch.sentCommands())
}

func TestVersion(t *testing.T) {
	assert := assert.New(t)

	ch := newFakeChannel("", "0:NE500V3.9\r")
	p := newTestPump(t, ch)

	ver, err := p.Version(context.Background())
	assert.NoError(err)
	assert.Equal("NE500V3.9", ver)
	assert.Equal([]string{"0 VER"}, ch.sentCommands())
}

func TestStatus(t *testing.T) {
	cases := []struct {
		reply string
		want  Status
	}{
		{"0:STP.\r", Stopped},
		{"0:INF.\r", Infusing},
		{"0:WDR.\r", Withdrawing},
		{"0:PAU.\r", Paused},
		{"0:STL.\r", Stalled},
	}
	for _, c := range cases {
		t.Run(c.want.String(), func(t *testing.T) {
			assert := assert.New(t)

			ch := newFakeChannel("", c.reply)
			p := newTestPump(t, ch)

			status, err := p.Status(context.Background())
			assert.NoError(err)
			assert.Equal(c.want, status)
			assert.Equal([]string{"0 STA"}, ch.sentCommands())
		})
	}

	t.Run("Unknown Word", func(t *testing.T) {
		assert := assert.New(t)

		ch := newFakeChannel("", "0:XXX.\r")
		p := newTestPump(t, ch)

		_, err := p.Status(context.Background())
		assert.ErrorContains(err, `"XXX."`)
	})
}

func TestDispensed(t *testing.T) {
	t.Run("Milliliters", func(t *testing.T) {
		assert := assert.New(t)

		ch := newFakeChannel("", "0:1.500 ML.\r")
		p := newTestPump(t, ch)

		ml, err := p.Dispensed(context.Background())
		assert.NoError(err)
		assert.InDelta(1.5, ml, 1e-9)
	})

	t.Run("Microliters Convert", func(t *testing.T) {
		assert := assert.New(t)

		ch := newFakeChannel("", "0:250.000 UL.\r")
		p := newTestPump(t, ch)

		ml, err := p.Dispensed(context.Background())
		assert.NoError(err)
		assert.InDelta(0.25, ml, 1e-9)
	})

	t.Run("Unparseable Report", func(t *testing.T) {
		assert := assert.New(t)

		ch := newFakeChannel("", "0:garbage.\r")
		p := newTestPump(t, ch)

		_, err := p.Dispensed(context.Background())
		assert.ErrorContains(err, `"garbage."`)
	})
}

func TestClearDispensed(t *testing.T) {
	assert := assert.New(t)

	ch := newFakeChannel("", "0:OK.\r")
	p := newTestPump(t, ch)

	assert.NoError(p.ClearDispensed(context.Background(), Infuse))
	assert.Equal([]string{"0 CLD INF"}, ch.sentCommands())
}

func TestCommandRefused(t *testing.T) {
	assert := assert.New(t)

	ch := newFakeChannel("", "0:NA.\r")
	p := newTestPump(t, ch)

	err := p.Run(context.Background())
	assert.ErrorIs(err, ErrCommandRefused)
}

func TestCrosstalk(t *testing.T) {
	assert := assert.New(t)

	// A neighbor at unit 3 answers; unit 0 must not accept it.
	ch := newFakeChannel("", "3:OK.\r")
	p := newTestPump(t, ch)

	err := p.Run(context.Background())
	assert.ErrorIs(err, ErrCrosstalk)
}

func TestUnaddressed(t *testing.T) {
	assert := assert.New(t)

	ch := newFakeChannel("", ":OK.\r")
	p, err := New(ch,
		WithPollInterval(20*time.Millisecond),
		WithTimeout(200*time.Millisecond),
	)
	require.NoError(t, err)

	assert.Equal(NoAddress, p.Address())
	assert.NoError(p.Run(context.Background()))
	assert.Equal([]string{"RUN"}, ch.sentCommands(),
		"no address prefix when addressing is disabled")
}

func TestUnparseableReply(t *testing.T) {
	assert := assert.New(t)

	ch := newFakeChannel("", "OK.\r")
	p := newTestPump(t, ch)

	err := p.Run(context.Background())
	assert.ErrorIs(err, comm.ErrUnparseableResponse)
}

func TestSilentPumpTimesOut(t *testing.T) {
	assert := assert.New(t)

	ch := newFakeChannel()
	p := newTestPump(t, ch)

	start := time.Now()
	err := p.Run(context.Background())
	assert.ErrorIs(err, comm.ErrTimeout)
	assert.GreaterOrEqual(time.Since(start), 200*time.Millisecond)
}

func TestNewPump(t *testing.T) {
	assert := assert.New(t)

	_, err := New(nil)
	assert.ErrorContains(err, "channel cannot be nil")

	_, err = New(newFakeChannel(), WithAddress(100))
	assert.Error(err)

	_, err = New(newFakeChannel(), WithAddress(-1))
	assert.Error(err)
}
