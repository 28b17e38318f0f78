package scope

import "fmt"

// fakeBus records every command and answers queries from scripts. seq
// entries are consumed one per query, for replies that change across
// polls; replies entries answer any number of times.
type fakeBus struct {
	commands []string
	replies  map[string]string
	seq      map[string][]string
	err      error
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		replies: make(map[string]string),
		seq:     make(map[string][]string),
	}
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

	if queue, ok := b.seq[cmd]; ok && len(queue) > 0 {
		b.seq[cmd] = queue[1:]
		return queue[0], nil
	}

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

// fakeBlockBus extends fakeBus with scripted definite-length payloads.
type fakeBlockBus struct {
	fakeBus
	blocks map[string][]byte
}

func newFakeBlockBus() *fakeBlockBus {
	return &fakeBlockBus{
		fakeBus: fakeBus{
			replies: make(map[string]string),
			seq:     make(map[string][]string),
		},
		blocks: make(map[string][]byte),
	}
}

func (b *fakeBlockBus) QueryBlock(cmd string) ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.commands = append(b.commands, cmd)

	block, ok := b.blocks[cmd]
	if !ok {
		return nil, fmt.Errorf("unscripted block query %q", cmd)
	}

	return block, nil
}
