// Package serial implements the comm.Channel contract over a local serial
// port (USB-serial adapters included), backed by go.bug.st/serial.
//
// # Reader Discipline
//
// The OS serial buffer is small and some instruments emit replies in bursts,
// so a Port runs one background reader goroutine that continuously drains
// the device into an internal buffer. BytesPending and ReadAvailable then
// observe that buffer without touching the device, which gives the exchange
// loop in package comm its non-blocking poll semantics.
//
// The reader wakes at a short poll timeout even when the line is idle so
// that Close can take effect promptly.
//
// # Terminators
//
// Send appends the configured transmit terminator (CR by default) to every
// command; received bytes are delivered exactly as they arrived, including
// any terminators, because each instrument driver knows best how its
// replies are framed.
//
// # Resource Registry
//
// Open routes through the process-wide resource registry, so opening a
// device node that is already held by this process closes the stale handle
// first instead of failing.
package serial
