package comm

import (
	"sync"
	"testing"
	"time"
)

// fakeChannel is a scripted Channel for exercising the exchange loop without
// hardware. Each poll tick consumes one script entry: the entry's text is
// what that tick finds pending, and an empty entry models a tick where
// nothing arrived. Once the script is exhausted nothing further arrives.
type fakeChannel struct {
	mu      sync.Mutex
	open    bool
	script  []string
	idx     int
	pending string
	sends   []string
	sendErr error
	readErr error
}

func newFakeChannel(script ...string) *fakeChannel {
	return &fakeChannel{open: true, script: script}
}

func (c *fakeChannel) Send(cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sendErr != nil {
		return c.sendErr
	}
	c.sends = append(c.sends, cmd)

	return nil
}

func (c *fakeChannel) BytesPending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.idx < len(c.script) {
		c.pending = c.script[c.idx]
		c.idx++
	} else {
		c.pending = ""
	}

	return len(c.pending)
}

func (c *fakeChannel) ReadAvailable() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.readErr != nil {
		return "", c.readErr
	}
	text := c.pending
	c.pending = ""

	return text, nil
}

func (c *fakeChannel) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.open
}

func (c *fakeChannel) sendCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.sends)
}

// newTestTransceiver creates a Transceiver with short intervals suitable for
// tests: 20ms retry cadence, 200ms timeout unless overridden by opts.
func newTestTransceiver(t *testing.T, ch Channel, opts ...Option) *Transceiver {
	t.Helper()

	defaults := []Option{
		WithRetryInterval(20 * time.Millisecond),
		WithTimeout(200 * time.Millisecond),
	}

	tr, err := NewTransceiver(ch, append(defaults, opts...)...)
	if err != nil {
		t.Fatalf("newTestTransceiver: %v", err)
	}

	return tr
}
