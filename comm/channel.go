package comm

// Channel is the duplex text connection an exchange borrows for the duration
// of one call. Implementations own the transport, its terminators and its
// input buffering; the exchange only writes commands and drains whatever has
// accumulated. See the serial package for the stock implementation.
//
// A Channel is borrowed, never retained: the Transceiver holds no state
// between exchanges beyond its counters.
type Channel interface {
	// Send transmits cmd verbatim, appending the channel's transmit
	// terminator if one is configured.
	Send(cmd string) error

	// BytesPending reports how many input bytes ReadAvailable would return
	// right now without blocking.
	BytesPending() int

	// ReadAvailable drains the input buffer and returns its contents as
	// text. It never blocks waiting for more data.
	ReadAvailable() (string, error)

	// IsOpen reports whether the underlying transport is usable.
	IsOpen() bool
}
