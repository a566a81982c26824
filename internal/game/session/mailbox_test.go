package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestMailbox_SendAndReceive(t *testing.T) {
	m := NewMailbox("c1", 4)
	assert.Equal(t, "c1", m.ID())

	require.NoError(t, m.Send("one"))
	require.NoError(t, m.Send("two"))
	assert.Equal(t, "one", <-m.Messages())
	assert.Equal(t, "two", <-m.Messages())
}

func TestMailbox_FullBufferRejects(t *testing.T) {
	m := NewMailbox("c1", 1)
	require.NoError(t, m.Send("one"))

	err := m.Send("two")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outbound buffer full")
	assert.Equal(t, "one", <-m.Messages())
}

func TestMailbox_DefaultSize(t *testing.T) {
	m := NewMailbox("c1", 0)
	for i := 0; i < 64; i++ {
		require.NoError(t, m.Send("x"))
	}
	assert.Error(t, m.Send("x"))
}

func TestMailbox_CloseIsIdempotent(t *testing.T) {
	m := NewMailbox("c1", 4)
	require.NoError(t, m.Send("pending"))
	m.Close()
	m.Close()

	assert.True(t, m.IsClosed())
	err := m.Send("late")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is closed")

	msg, ok := <-m.Messages()
	assert.True(t, ok, "buffered messages survive close")
	assert.Equal(t, "pending", msg)
	_, ok = <-m.Messages()
	assert.False(t, ok)
}

func TestMailbox_ConcurrentSendAndClose(t *testing.T) {
	m := NewMailbox("c1", 8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = m.Send("x")
			}
		}()
	}
	m.Close()
	wg.Wait()
	assert.True(t, m.IsClosed())
}

func TestProperty_MailboxNeverExceedsCapacity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(1, 32).Draw(t, "size")
		sends := rapid.IntRange(0, 64).Draw(t, "sends")
		m := NewMailbox("c1", size)

		accepted := 0
		for i := 0; i < sends; i++ {
			if m.Send("x") == nil {
				accepted++
			}
		}
		assert.Equal(t, min(size, sends), accepted)
		assert.Len(t, m.Messages(), accepted)
	})
}
