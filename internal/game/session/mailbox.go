// Package session tracks connected players: who they are and how to reach
// their connection.
package session

import (
	"fmt"
	"sync"
)

// Handle is the core's view of a live connection. Send enqueues exactly one
// rendered message and must never block; it returns an error if the
// connection is closed or cannot accept more output.
type Handle interface {
	ID() string
	Send(content string) error
}

// Mailbox is a channel-backed Handle. Transports drain Messages from a
// dedicated write goroutine so the game loop never waits on the network.
type Mailbox struct {
	id       string
	messages chan string
	mu       sync.Mutex
	closed   bool
}

// NewMailbox creates a Mailbox for the connection id.
//
// Precondition: id must be non-empty.
// Postcondition: Returns an open Mailbox buffering up to size messages (64 if size <= 0).
func NewMailbox(id string, size int) *Mailbox {
	if size <= 0 {
		size = 64
	}
	return &Mailbox{
		id:       id,
		messages: make(chan string, size),
	}
}

// ID returns the connection identifier.
func (m *Mailbox) ID() string {
	return m.id
}

// Send enqueues content without blocking.
//
// Postcondition: content is buffered, or an error is returned if the mailbox is closed or full.
func (m *Mailbox) Send(content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("connection %s is closed", m.id)
	}
	select {
	case m.messages <- content:
		return nil
	default:
		return fmt.Errorf("connection %s outbound buffer full", m.id)
	}
}

// Messages returns the outbound stream. It is closed by Close.
func (m *Mailbox) Messages() <-chan string {
	return m.messages
}

// Close stops accepting messages and closes the stream. Safe to call more
// than once.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.messages)
	}
}

// IsClosed reports whether the mailbox has been closed.
func (m *Mailbox) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
