// Package mailbox provides bounded per-agent buffers of outbound text
// messages for inter-agent notices. It sits off the task-execution critical
// path: agents write to it out-of-band and the bound keeps memory flat.
package mailbox

import "sync"

// DefaultMaxMessages bounds each agent's mailbox when no size is given.
const DefaultMaxMessages = 20

// Buffer holds a bounded FIFO message sequence per agent. Once a mailbox is
// full the oldest entry is dropped to admit the new one. Safe for
// concurrent use.
type Buffer struct {
	mu    sync.Mutex
	max   int
	boxes map[string][]string
}

// New constructs a Buffer. A non-positive bound uses DefaultMaxMessages.
func New(maxMessages int) *Buffer {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &Buffer{
		max:   maxMessages,
		boxes: make(map[string][]string),
	}
}

// Add appends a message for the agent, dropping the oldest entry when the
// bound is exceeded.
func (b *Buffer) Add(agentID, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	box := append(b.boxes[agentID], text)
	if len(box) > b.max {
		box = box[len(box)-b.max:]
	}
	b.boxes[agentID] = box
}

// Messages returns a copy of the agent's current mailbox, oldest first.
func (b *Buffer) Messages(agentID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	box := b.boxes[agentID]
	out := make([]string, len(box))
	copy(out, box)
	return out
}

// Clear empties the agent's mailbox.
func (b *Buffer) Clear(agentID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.boxes, agentID)
}
