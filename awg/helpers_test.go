package awg

import "fmt"

// fakeBus records every command and answers queries from a scripted map.
type fakeBus struct {
	commands []string
	replies  map[string]string
	err      error
}

func newFakeBus() *fakeBus {
	return &fakeBus{replies: make(map[string]string)}
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

	reply, ok := b.replies[cmd]
	if !ok {
		return "", fmt.Errorf("unscripted query %q", cmd)
	}

	return reply, nil
}

// lastCommand returns the most recent command, or "" when none were sent.
func (b *fakeBus) lastCommand() string {
	if len(b.commands) == 0 {
		return ""
	}

	return b.commands[len(b.commands)-1]
}
