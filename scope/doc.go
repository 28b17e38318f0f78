// Package scope drives two families of digitizing oscilloscope through
// the scpi message layer.
//
// DSO targets the colon-prefixed dialect of Infiniium-class instruments,
// where records stream as 16-bit words in negotiated byte order through
// the WAVeform subsystem. TDS targets the older Tektronix dialect, where
// calibration comes from the WFMPre preamble and CURVe? streams signed
// big-endian samples.
//
// Both decode into the shared Waveform type, so analysis code does not
// care which scope captured a record.
//
// # Waveform Transfer
//
// Record transfer uses IEEE 488.2 definite-length blocks and needs the
// bus to implement scpi.BlockBus. A bus without block framing still
// supports every scalar setting; AcquireWaveform on such a bus reports
// scpi.ErrBlockUnsupported instead of guessing at framing.
package scope
