package scpi

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"
)

// exchange is one scripted command/reply pair for the fake instrument end
// of a net.Pipe.
type exchange struct {
	want  string
	reply string
}

// serve plays the fake instrument: read one terminated command per script
// entry, check it, send the scripted reply bytes verbatim.
func serve(t *testing.T, conn net.Conn, script ...exchange) {
	t.Helper()

	go func() {
		r := bufio.NewReader(conn)
		for _, ex := range script {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if got := strings.TrimRight(line, "\r\n"); got != ex.want {
				t.Errorf("device got %q, want %q", got, ex.want)
				return
			}
			if ex.reply != "" {
				if _, err := conn.Write([]byte(ex.reply)); err != nil {
					return
				}
			}
		}
	}()
}

// newTestClient creates a Client over one end of a net.Pipe and returns
// the instrument end for scripting.
func newTestClient(t *testing.T, opts ...ClientOption) (*Client, net.Conn) {
	t.Helper()

	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	defaults := []ClientOption{WithQueryTimeout(2 * time.Second)}

	c, err := NewClient(local, append(defaults, opts...)...)
	if err != nil {
		t.Fatalf("newTestClient: %v", err)
	}

	return c, remote
}

// fakeBus is a scripted Bus for the common-operation helpers and the
// instrument drivers' formatting tests.
type fakeBus struct {
	commands []string
	replies  map[string]string
	err      error
}

func (b *fakeBus) Command(cmd string) error {
	if b.err != nil {
		return b.err
	}
	b.commands = append(b.commands, cmd)

	return nil
}

func (b *fakeBus) Query(cmd string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	b.commands = append(b.commands, cmd)

	return b.replies[cmd], nil
}
