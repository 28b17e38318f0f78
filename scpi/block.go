package scpi

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// QueryBlock writes cmd and reads an IEEE 488.2 block reply, returning its
// payload. Both the definite form ("#<n><len><payload>") and the
// indefinite form ("#0<payload><terminator>") are accepted.
func (c *Client) QueryBlock(cmd string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.write(cmd); err != nil {
		return nil, err
	}

	return c.readBlock()
}

// readBlock decodes one block. Callers hold c.mu.
func (c *Client) readBlock() ([]byte, error) {
	head, err := c.reader.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("scpi: read block header: %w", err)
	}
	if head != '#' {
		return nil, fmt.Errorf("%w: leading byte %q", ErrInvalidBlock, head)
	}

	nd, err := c.reader.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("scpi: read block digit count: %w", err)
	}
	if nd < '0' || nd > '9' {
		return nil, fmt.Errorf("%w: digit count %q", ErrInvalidBlock, nd)
	}

	if nd == '0' {
		// Indefinite form: the payload runs to the message terminator.
		data, err := c.reader.ReadBytes(c.cfg.RxTerminator())
		if err != nil {
			return nil, fmt.Errorf("scpi: read indefinite block: %w", err)
		}

		return bytes.TrimRight(data, "\r\n"), nil
	}

	digits := make([]byte, nd-'0')
	if _, err := io.ReadFull(c.reader, digits); err != nil {
		return nil, fmt.Errorf("scpi: read block length: %w", err)
	}

	length, err := strconv.Atoi(string(digits))
	if err != nil {
		return nil, fmt.Errorf("%w: length field %q", ErrInvalidBlock, digits)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(c.reader, data); err != nil {
		return nil, fmt.Errorf("scpi: read block payload: %w", err)
	}

	c.consumeTerminator()

	return data, nil
}

// consumeTerminator eats the response message terminator that follows a
// definite-length payload. Compliant instruments always send it; on a
// misbehaving one the read times out on the operation deadline and the
// stray state surfaces in the next reply.
func (c *Client) consumeTerminator() {
	for i := 0; i < 2; i++ {
		b, err := c.reader.ReadByte()
		if err != nil {
			return
		}
		if b == '\r' {
			continue
		}
		if b != c.cfg.RxTerminator() {
			_ = c.reader.UnreadByte()
		}

		return
	}
}
