// Package scpi provides the message layer for instruments that speak SCPI
// (the waveform generator and both oscilloscopes), independent of how the
// bytes travel.
//
// # Buses
//
// Instrument drivers program against the [Bus] interface: a command write
// and a query round trip. Two transports satisfy it out of the box:
//
//   - [Client], this package's implementation over any byte stream. Use
//     [Dial] for instruments exposing a raw TCP socket (VISA
//     "TCPIP::host::port::SOCKET" resources, LXI boxes).
//   - *prologix.Controller from github.com/gotmc/prologix, for instruments
//     on a GPIB bus behind a Prologix USB adapter.
//
// Drivers that download waveform data additionally need [BlockBus]. Whether
// a bus supports block transfers is discovered with a plain interface
// assertion; there is no probing by trial command.
//
// # Framing
//
// Client terminates outgoing messages with NL and reads replies up to NL,
// per IEEE 488.2. Binary data uses definite-length blocks ("#<n><len>...")
// with the indefinite form ("#0...") accepted on reads.
package scpi
