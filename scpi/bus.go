package scpi

// Bus is the minimal command surface an instrument driver needs: fire a
// command that produces no reply, or run one command/reply round trip.
//
// *Client satisfies Bus, as does *prologix.Controller for GPIB setups.
type Bus interface {
	// Command writes cmd to the instrument and expects no reply.
	Command(cmd string) error
	// Query writes cmd and returns the instrument's reply with message
	// terminators stripped.
	Query(cmd string) (string, error)
}

// BlockBus is a Bus that can also transfer IEEE 488.2 definite-length
// blocks, which the oscilloscope drivers need for waveform downloads.
//
// Support is checked with a type assertion:
//
//	bb, ok := bus.(scpi.BlockBus)
//	if !ok {
//		return scpi.ErrBlockUnsupported
//	}
type BlockBus interface {
	Bus
	// QueryBlock writes cmd and reads a definite-length block reply,
	// returning its payload.
	QueryBlock(cmd string) ([]byte, error)
}
