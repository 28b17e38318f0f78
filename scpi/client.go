package scpi

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/scottschoenjr/hardware/logger"
	"github.com/scottschoenjr/hardware/registry"
)

// Client is a Bus and BlockBus over a byte stream, typically the raw TCP
// socket of a LAN instrument. A mutex serializes round trips so one reply
// can never be attributed to another goroutine's command.
type Client struct {
	cfg    *Config
	logger logger.Logger

	mu     sync.Mutex
	conn   io.ReadWriteCloser
	reader *bufio.Reader
	closed bool

	addr string // set for Dial-created clients
}

var (
	_ Bus      = (*Client)(nil)
	_ BlockBus = (*Client)(nil)
)

// deadliner is the optional deadline surface of the underlying stream.
// net.Conn has it; an arbitrary io.ReadWriteCloser may not.
type deadliner interface {
	SetDeadline(t time.Time) error
}

// NewClient creates a Client over an already-connected stream.
//
// opts are functional options applied in order; see With* functions.
func NewClient(conn io.ReadWriteCloser, opts ...ClientOption) (*Client, error) {
	if conn == nil {
		return nil, fmt.Errorf("scpi: conn cannot be nil")
	}

	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return newClient(conn, cfg), nil
}

// Dial connects to the raw-socket SCPI endpoint at addr ("host:port").
//
// The address is acquired through the process-wide resource registry, so a
// stale client from an earlier connect to the same instrument is closed
// first.
func Dial(addr string, opts ...ClientOption) (*Client, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	handle, err := registry.Acquire(addr, func() (io.Closer, error) {
		conn, err := net.DialTimeout("tcp", addr, cfg.ConnectTimeout())
		if err != nil {
			return nil, err
		}

		c := newClient(conn, cfg)
		c.addr = addr

		return c, nil
	})
	if err != nil {
		return nil, err
	}

	client, ok := handle.(*Client)
	if !ok {
		return nil, fmt.Errorf("scpi: registry returned foreign handle for %s", addr)
	}

	client.logger.Info("instrument connected")

	return client, nil
}

func newClient(conn io.ReadWriteCloser, cfg *Config) *Client {
	return &Client{
		cfg:    cfg,
		logger: cfg.GetLogger().With("layer", "scpi"),
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

// Addr returns the dialed address, or "" for clients over a caller-supplied
// stream.
func (c *Client) Addr() string { return c.addr }

// Command writes cmd to the instrument. No reply is read; commands that do
// generate replies must go through Query or the reply will desynchronize
// the stream.
func (c *Client) Command(cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.write(cmd)
}

// Query writes cmd and returns the instrument's reply with trailing
// terminators stripped.
func (c *Client) Query(cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.write(cmd); err != nil {
		return "", err
	}

	return c.readReply()
}

// QueryFloat runs Query and parses the reply as a float, accepting the
// scientific notation instruments favor ("+1.00000E+03").
func (c *Client) QueryFloat(cmd string) (float64, error) {
	return QueryFloat(c, cmd)
}

// QueryInt runs Query and parses the reply as an integer. Instruments often
// report integers in float notation, so "1.0E+2" parses as 100.
func (c *Client) QueryInt(cmd string) (int, error) {
	return QueryInt(c, cmd)
}

// QueryBool runs Query and interprets "1"/"ON" as true and "0"/"OFF" as
// false.
func (c *Client) QueryBool(cmd string) (bool, error) {
	return QueryBool(c, cmd)
}

// Close closes the underlying stream. It is idempotent; the registry's
// eviction path relies on that.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("scpi: close: %w", err)
	}

	return nil
}

// write sends one terminated message. Callers hold c.mu.
func (c *Client) write(cmd string) error {
	if c.closed {
		return ErrClosed
	}
	if cmd == "" {
		return fmt.Errorf("scpi: empty command")
	}

	c.setDeadline()

	if _, err := c.conn.Write([]byte(cmd + c.cfg.TxTerminator())); err != nil {
		return fmt.Errorf("scpi: write %q: %w", cmd, err)
	}

	c.logger.Debug("sent", "command", cmd)

	return nil
}

// readReply reads one terminated message. Callers hold c.mu.
func (c *Client) readReply() (string, error) {
	line, err := c.reader.ReadString(c.cfg.RxTerminator())
	if err != nil {
		return "", fmt.Errorf("scpi: read reply: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// setDeadline arms the per-operation I/O deadline when the stream supports
// deadlines. Each operation re-arms it, so there is no need to clear.
func (c *Client) setDeadline() {
	if d, ok := c.conn.(deadliner); ok {
		_ = d.SetDeadline(time.Now().Add(c.cfg.QueryTimeout()))
	}
}
