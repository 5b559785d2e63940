// Package transcript keeps the ordered, append-only conversation record and
// notifies observers of changes.
package transcript

import (
	"sync"
)

// Role identifies who produced a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn in the conversation. Text grows append-only via
// ExtendLast; messages are never removed or reordered.
type Message struct {
	Role Role
	Text string
}

// Update kinds delivered to subscribers
const (
	UpdateAppend = "append"
	UpdateExtend = "extend"
)

// Update describes one mutation of the log, in the order it was applied.
// For UpdateAppend, Text is the initial message text; for UpdateExtend it is
// the delta appended to the message at Index.
type Update struct {
	Kind  string
	Index int
	Role  Role
	Text  string
}

// Log is the conversation record. Mutated only by the protocol dispatcher
// and the vision loop; read by external observers via Snapshot or Subscribe.
type Log struct {
	mu       sync.RWMutex
	messages []Message
	subs     map[int]chan Update
	nextSub  int
	closed   bool
}

// NewLog creates an empty conversation log
func NewLog() *Log {
	return &Log{
		subs: make(map[int]chan Update),
	}
}

// Append adds a message and returns its index
func (l *Log) Append(role Role, text string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, Message{Role: role, Text: text})
	index := len(l.messages) - 1
	l.notify(Update{Kind: UpdateAppend, Index: index, Role: role, Text: text})
	return index
}

// ExtendLast appends delta to the most recent message, but only when that
// message is an assistant message — the single "open" turn. It reports
// whether the delta was applied; callers treat false as a protocol
// inconsistency, not an error.
func (l *Log) ExtendLast(delta string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.messages) == 0 {
		return false
	}
	index := len(l.messages) - 1
	if l.messages[index].Role != RoleAssistant {
		return false
	}

	l.messages[index].Text += delta
	l.notify(Update{Kind: UpdateExtend, Index: index, Role: RoleAssistant, Text: delta})
	return true
}

// Snapshot returns a copy of all messages in chronological order
func (l *Log) Snapshot() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := make([]Message, len(l.messages))
	copy(snapshot, l.messages)
	return snapshot
}

// Len returns the number of messages
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Subscribe registers an observer. Updates arrive in mutation order; a
// subscriber that falls behind its buffer drops updates rather than blocking
// the writers. The channel is closed when the log closes (session ended).
// The returned cancel function unregisters the subscriber.
func (l *Log) Subscribe(buffer int) (<-chan Update, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan Update, buffer)
	if l.closed {
		close(ch)
		return ch, func() {}
	}

	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch

	cancel := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if sub, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Close notifies all subscribers that no further updates will arrive.
// Safe to call more than once.
func (l *Log) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	for id, ch := range l.subs {
		delete(l.subs, id)
		close(ch)
	}
}

// notify fans an update out to subscribers. Callers hold l.mu.
func (l *Log) notify(update Update) {
	for _, ch := range l.subs {
		select {
		case ch <- update:
		default:
			// Subscriber buffer full, drop the update
		}
	}
}
