package scpi

import (
	"errors"
	"fmt"
)

// Sentinel errors for the SCPI message layer.
var (
	// ErrBlockUnsupported indicates the bus a driver was given cannot do
	// definite-length block transfers (it is not a BlockBus).
	ErrBlockUnsupported = errors.New("scpi: bus does not support block transfers")

	// ErrInvalidBlock indicates a reply that does not follow the IEEE
	// 488.2 block format.
	ErrInvalidBlock = errors.New("scpi: malformed definite-length block")

	// ErrClosed indicates an operation on a closed client.
	ErrClosed = errors.New("scpi: client closed")
)

// DeviceError is one entry popped from an instrument's own error queue
// (SYST:ERR?). Code 0 means "no error" and is never returned as a
// DeviceError.
type DeviceError struct {
	Code    int
	Message string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("scpi: device error %d: %s", e.Code, e.Message)
}
