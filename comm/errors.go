package comm

import "errors"

// Sentinel errors for command/response exchanges.
var (
	// ErrNotConnected indicates the channel's transport is not open.
	// The exchange fails before any bytes are written.
	ErrNotConnected = errors.New("comm: channel not connected")

	// ErrInvalidCommand indicates a command the exchange refuses to send,
	// currently an empty command string.
	ErrInvalidCommand = errors.New("comm: invalid command")

	// ErrTimeout indicates no accepted reply arrived within the configured
	// timeout. The Outcome returned alongside it still carries whatever
	// text was last read, for diagnostics.
	ErrTimeout = errors.New("comm: reply timeout")

	// ErrUnparseableResponse indicates reply text whose multi-drop framing
	// could not be decoded. The wrapped error text includes the raw reply.
	ErrUnparseableResponse = errors.New("comm: unparseable response")
)
