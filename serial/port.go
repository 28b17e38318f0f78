package serial

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	bugst "go.bug.st/serial"

	"github.com/scottschoenjr/hardware/comm"
	"github.com/scottschoenjr/hardware/logger"
	"github.com/scottschoenjr/hardware/registry"
)

// pollTimeout is how long the reader blocks on the device per Read call.
// It bounds how quickly Close is noticed on an idle line.
const pollTimeout = 50 * time.Millisecond

// readBufSize is the reader's per-call scratch size. Instrument replies are
// short lines; waveform-size transfers go over scpi, not serial.
const readBufSize = 256

// Port is a serial device implementing comm.Channel.
//
// Send and the poll methods may be used from one exchange at a time, per
// the comm.Channel contract; the internal buffer itself is mutex-guarded
// against the reader goroutine.
type Port struct {
	cfg    *Config
	logger logger.Logger

	device string
	port   bugst.Port

	opState opState

	mu      sync.Mutex
	buf     bytes.Buffer
	readErr error

	wg sync.WaitGroup
}

var _ comm.Channel = (*Port)(nil)

// Open opens the serial device at the given path (e.g. "/dev/ttyUSB0" or
// "COM3") and starts the background reader.
//
// The device address is acquired through the process-wide resource
// registry: a stale handle from an earlier open of the same device is
// closed first. Close the returned Port directly, or release it via
// registry.Release(device).
func Open(device string, opts ...Option) (*Port, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	handle, err := registry.Acquire(device, func() (io.Closer, error) {
		return open(device, cfg)
	})
	if err != nil {
		return nil, err
	}

	port, ok := handle.(*Port)
	if !ok {
		return nil, fmt.Errorf("serial: registry returned foreign handle for %s", device)
	}

	return port, nil
}

// List returns the serial device paths present on this machine.
func List() ([]string, error) {
	return bugst.GetPortsList()
}

// open dials the OS device and hands it to a new Port.
func open(device string, cfg *Config) (*Port, error) {
	osPort, err := bugst.Open(device, cfg.mode())
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", device, err)
	}

	// A short read timeout keeps the reader responsive to Close on an
	// idle line; go.bug.st reports such a timeout as (0, nil).
	if err := osPort.SetReadTimeout(pollTimeout); err != nil {
		_ = osPort.Close()

		return nil, fmt.Errorf("serial: set read timeout on %s: %w", device, err)
	}

	return newPort(device, osPort, cfg), nil
}

// newPort assembles a Port around an already-open device and starts the
// reader goroutine.
func newPort(device string, osPort bugst.Port, cfg *Config) *Port {
	p := &Port{
		cfg:    cfg,
		logger: cfg.GetLogger().With("device", device),
		device: device,
		port:   osPort,
	}

	p.opState.toOpening()
	p.opState.toOpened()

	p.wg.Add(1)
	go p.readLoop()

	p.logger.Info("serial port opened", "baud", cfg.BaudRate())

	return p
}

// Device returns the device path this port was opened with.
func (p *Port) Device() string { return p.device }

// Send writes cmd plus the configured transmit terminator to the device.
func (p *Port) Send(cmd string) error {
	if !p.opState.isOpened() {
		return comm.ErrNotConnected
	}

	data := []byte(cmd + p.cfg.TxTerminator())
	for written := 0; written < len(data); {
		n, err := p.port.Write(data[written:])
		written += n

		if err != nil {
			return fmt.Errorf("serial: write %s: %w", p.device, err)
		}
	}

	p.logger.Debug("sent", "command", cmd)

	return nil
}

// BytesPending reports how many received bytes are buffered and unread.
func (p *Port) BytesPending() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.buf.Len()
}

// ReadAvailable drains the receive buffer and returns it as text. If the
// reader has failed, buffered text is still delivered first; the failure
// surfaces once the buffer is empty.
func (p *Port) ReadAvailable() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.buf.Len() == 0 && p.readErr != nil {
		return "", fmt.Errorf("serial: read %s: %w", p.device, p.readErr)
	}

	text := p.buf.String()
	p.buf.Reset()

	return text, nil
}

// Flush discards any received bytes that have not been read yet. Drivers
// call it before a fresh exchange when stale chatter may be buffered.
func (p *Port) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf.Reset()
}

// IsOpen reports whether the port is usable.
func (p *Port) IsOpen() bool {
	return p.opState.isOpened()
}

// Close stops the reader and closes the device. It is idempotent and safe
// to call concurrently; the registry's eviction path relies on that.
func (p *Port) Close() error {
	if !p.opState.toClosing() {
		return nil
	}

	// Closing the OS port unblocks the reader's pending Read.
	err := p.port.Close()
	p.wg.Wait()
	p.opState.toClosed()

	p.logger.Info("serial port closed")

	if err != nil {
		return fmt.Errorf("serial: close %s: %w", p.device, err)
	}

	return nil
}

// readLoop continuously drains the device into the internal buffer. It
// exits when the port shuts down or the device errors out.
func (p *Port) readLoop() {
	defer p.wg.Done()

	scratch := make([]byte, readBufSize)
	for {
		n, err := p.port.Read(scratch)
		if n > 0 {
			p.mu.Lock()
			p.buf.Write(scratch[:n])
			p.mu.Unlock()
		}

		if p.opState.isShuttingDown() {
			return
		}

		if err != nil {
			p.mu.Lock()
			p.readErr = err
			p.mu.Unlock()
			p.logger.Error("serial reader stopped", "error", err)

			return
		}
	}
}
