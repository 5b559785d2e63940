package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndExtend(t *testing.T) {
	l := NewLog()

	l.Append(RoleAssistant, "")
	require.True(t, l.ExtendLast("Hi"))
	require.True(t, l.ExtendLast(" there"))

	snapshot := l.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, Message{Role: RoleAssistant, Text: "Hi there"}, snapshot[0])
}

func TestExtendLastRequiresOpenAssistantMessage(t *testing.T) {
	l := NewLog()

	// Empty log: nothing to extend
	assert.False(t, l.ExtendLast("orphan"))

	// A trailing system message closes the assistant turn
	l.Append(RoleAssistant, "Hello")
	l.Append(RoleSystem, "Image Description: a desk")
	assert.False(t, l.ExtendLast("x"))

	snapshot := l.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "Hello", snapshot[0].Text)
	assert.Equal(t, "Image Description: a desk", snapshot[1].Text)
}

func TestSnapshotIsACopy(t *testing.T) {
	l := NewLog()
	l.Append(RoleUser, "hi")

	snapshot := l.Snapshot()
	snapshot[0].Text = "mutated"

	assert.Equal(t, "hi", l.Snapshot()[0].Text)
}

func TestSubscriberReceivesOrderedUpdates(t *testing.T) {
	l := NewLog()
	updates, cancel := l.Subscribe(8)
	defer cancel()

	index := l.Append(RoleAssistant, "")
	l.ExtendLast("Hi")
	l.ExtendLast(" there")

	u := <-updates
	assert.Equal(t, Update{Kind: UpdateAppend, Index: index, Role: RoleAssistant, Text: ""}, u)
	u = <-updates
	assert.Equal(t, Update{Kind: UpdateExtend, Index: index, Role: RoleAssistant, Text: "Hi"}, u)
	u = <-updates
	assert.Equal(t, Update{Kind: UpdateExtend, Index: index, Role: RoleAssistant, Text: " there"}, u)
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	l := NewLog()
	updates, cancel := l.Subscribe(1)
	defer cancel()

	// Second append must not block even though nobody is draining
	l.Append(RoleSystem, "first")
	l.Append(RoleSystem, "second")

	u := <-updates
	assert.Equal(t, "first", u.Text)
	assert.Equal(t, 2, l.Len())
}

func TestCloseNotifiesSubscribers(t *testing.T) {
	l := NewLog()
	updates, _ := l.Subscribe(1)

	l.Close()
	l.Close() // safe to repeat

	_, open := <-updates
	assert.False(t, open)

	// Subscribing after close yields a closed channel
	late, _ := l.Subscribe(1)
	_, open = <-late
	assert.False(t, open)
}

func TestCancelUnsubscribes(t *testing.T) {
	l := NewLog()
	updates, cancel := l.Subscribe(4)
	cancel()

	_, open := <-updates
	assert.False(t, open)

	// Appending after cancel must not panic
	l.Append(RoleUser, "hello")
}
