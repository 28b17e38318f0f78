package pump

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeChannel scripts the device side of an exchange. arrivals[i] lands
// in the receive buffer at the i-th buffer inspection, and the buffer
// accumulates until read. Every operation inspects the buffer once up
// front to drain stale input, so scripts usually start with an empty
// arrival.
type fakeChannel struct {
	mu      sync.Mutex
	open    bool
	script  []string
	pending string
	sends   []string
}

func newFakeChannel(script ...string) *fakeChannel {
	return &fakeChannel{open: true, script: script}
}

func (c *fakeChannel) Send(cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sends = append(c.sends, cmd)

	return nil
}

func (c *fakeChannel) BytesPending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.script) > 0 {
		c.pending += c.script[0]
		c.script = c.script[1:]
	}

	return len(c.pending)
}

func (c *fakeChannel) ReadAvailable() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data := c.pending
	c.pending = ""

	return data, nil
}

func (c *fakeChannel) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.open
}

func (c *fakeChannel) sentCommands() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.sends))
	copy(out, c.sends)

	return out
}

// newTestPump builds a Pump at unit address 0 with timing tight enough
// for unit tests.
func newTestPump(t *testing.T, ch *fakeChannel, opts ...Option) *Pump {
	t.Helper()

	base := []Option{
		WithAddress(0),
		WithPollInterval(20 * time.Millisecond),
		WithTimeout(200 * time.Millisecond),
	}
	p, err := New(ch, append(base, opts...)...)
	require.NoError(t, err)

	return p
}
