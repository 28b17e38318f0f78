package comm

import (
	"fmt"
	"regexp"
	"strconv"
)

// addressedReplyRe matches the multi-drop reply framing: optional address
// digits, a colon, then the payload. (?s) lets the payload span control
// characters left in place by the channel.
var addressedReplyRe = regexp.MustCompile(`(?s)^([0-9]*):(.*)$`)

// ReplyFrame is one decoded multi-drop reply.
type ReplyFrame struct {
	// Addr is the responding unit's address, or -1 when the reply carried
	// no address digits.
	Addr int

	// Payload is the reply text after the address prefix.
	Payload string
}

// ParseReply decodes reply text of the form "<addr>:<payload>" as produced
// by devices on a shared multi-drop bus. A device configured without
// addressing omits the digits but keeps the colon, so ":OK." and "3:OK."
// both decode to the payload "OK.".
//
// Text without the framing at all yields ErrUnparseableResponse with the
// raw reply preserved in the error text.
func ParseReply(raw string) (ReplyFrame, error) {
	m := addressedReplyRe.FindStringSubmatch(raw)
	if m == nil {
		return ReplyFrame{}, fmt.Errorf("%w: %q", ErrUnparseableResponse, raw)
	}

	frame := ReplyFrame{Addr: -1, Payload: m[2]}
	if m[1] != "" {
		addr, err := strconv.Atoi(m[1])
		if err != nil {
			return ReplyFrame{}, fmt.Errorf("%w: address %q in %q", ErrUnparseableResponse, m[1], raw)
		}
		frame.Addr = addr
	}

	return frame, nil
}
