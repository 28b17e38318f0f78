package serial

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	bugst "go.bug.st/serial"
)

// fakeOSPort implements bugst.Port in memory. Reads follow the real
// driver's timeout contract: a poll that sees no data returns (0, nil)
// after the configured read timeout, and a closed port fails the pending
// read.
type fakeOSPort struct {
	mu          sync.Mutex
	readTimeout time.Duration
	incoming    chan []byte
	done        chan struct{}
	closeOnce   sync.Once
	written     bytes.Buffer
	writeErr    error
	readErr     error
}

func newFakeOSPort() *fakeOSPort {
	return &fakeOSPort{
		readTimeout: pollTimeout,
		incoming:    make(chan []byte, 16),
		done:        make(chan struct{}),
	}
}

// push makes data arrive on the fake line.
func (f *fakeOSPort) push(data string) {
	f.incoming <- []byte(data)
}

// failReads makes every subsequent read fail with err.
func (f *fakeOSPort) failReads(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

func (f *fakeOSPort) writtenString() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.written.String()
}

func (f *fakeOSPort) Read(p []byte) (int, error) {
	f.mu.Lock()
	readErr := f.readErr
	timeout := f.readTimeout
	f.mu.Unlock()

	if readErr != nil {
		return 0, readErr
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case data := <-f.incoming:
		return copy(p, data), nil
	case <-f.done:
		return 0, errors.New("port closed")
	case <-timer.C:
		return 0, nil
	}
}

func (f *fakeOSPort) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.written.Write(p)

	return len(p), nil
}

func (f *fakeOSPort) Close() error {
	f.closeOnce.Do(func() { close(f.done) })
	return nil
}

func (f *fakeOSPort) SetReadTimeout(t time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readTimeout = t

	return nil
}

func (f *fakeOSPort) SetMode(*bugst.Mode) error  { return nil }
func (f *fakeOSPort) Drain() error               { return nil }
func (f *fakeOSPort) ResetInputBuffer() error    { return nil }
func (f *fakeOSPort) ResetOutputBuffer() error   { return nil }
func (f *fakeOSPort) SetDTR(bool) error          { return nil }
func (f *fakeOSPort) SetRTS(bool) error          { return nil }
func (f *fakeOSPort) Break(time.Duration) error  { return nil }
func (f *fakeOSPort) GetModemStatusBits() (*bugst.ModemStatusBits, error) {
	return &bugst.ModemStatusBits{}, nil
}

var _ bugst.Port = (*fakeOSPort)(nil)

// newTestPort assembles a Port over a fake device, closing both on cleanup.
func newTestPort(t *testing.T, opts ...Option) (*Port, *fakeOSPort) {
	t.Helper()

	cfg, err := NewConfig(opts...)
	if err != nil {
		t.Fatalf("newTestPort: %v", err)
	}

	fake := newFakeOSPort()
	port := newPort("fake0", fake, cfg)
	t.Cleanup(func() { _ = port.Close() })

	return port, fake
}
