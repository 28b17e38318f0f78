package serial

import "sync/atomic"

// opState tracks the port lifecycle: Closed -> Opening -> Opened ->
// Closing -> Closed. Transitions are CAS-guarded so concurrent Close calls
// and the reader goroutine observe one consistent lifecycle.
type opState struct {
	state atomic.Uint32
}

const (
	stateClosed uint32 = iota
	stateClosing
	stateOpening
	stateOpened
)

func (st *opState) String() string {
	switch st.state.Load() {
	case stateClosed:
		return "Closed"
	case stateClosing:
		return "Closing"
	case stateOpening:
		return "Opening"
	case stateOpened:
		return "Opened"
	default:
		return "Unknown"
	}
}

func (st *opState) isOpened() bool {
	return st.state.Load() == stateOpened
}

func (st *opState) isShuttingDown() bool {
	s := st.state.Load()
	return s == stateClosing || s == stateClosed
}

func (st *opState) toOpening() bool {
	return st.state.CompareAndSwap(stateClosed, stateOpening)
}

func (st *opState) toOpened() bool {
	return st.state.CompareAndSwap(stateOpening, stateOpened)
}

func (st *opState) toClosing() bool {
	if st.state.CompareAndSwap(stateOpened, stateClosing) {
		return true
	}

	return st.state.CompareAndSwap(stateOpening, stateClosing)
}

func (st *opState) toClosed() bool {
	if st.state.Load() == stateClosed {
		return true
	}

	return st.state.CompareAndSwap(stateClosing, stateClosed)
}
