package testutil

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cory-johannsen/wsmud/internal/protocol"
)

// WSClient is a WebSocket game client for integration tests.
type WSClient struct {
	conn *websocket.Conn
	t    testing.TB
}

// NewWSClient dials a game endpoint such as "ws://127.0.0.1:1234/game".
//
// Postcondition: Returns a connected WSClient or fails the test.
func NewWSClient(t testing.TB, url string) *WSClient {
	t.Helper()
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	t.Cleanup(func() {
		conn.Close()
	})
	return &WSClient{conn: conn, t: t}
}

// Send writes a command as a message envelope.
func (c *WSClient) Send(command string) {
	c.t.Helper()
	c.SendRaw(protocol.EncodeMessage(command))
}

// SendRaw writes data as a single text frame.
func (c *WSClient) SendRaw(data []byte) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.t.Fatalf("writing frame: %v", err)
	}
}

// Read returns the next envelope, or fails the test after timeout.
func (c *WSClient) Read(timeout time.Duration) protocol.Envelope {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		c.t.Fatalf("reading frame: %v", err)
	}
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.t.Fatalf("decoding frame %q: %v", data, err)
	}
	return env
}

// ReadUntil reads message envelopes until one contains substr and returns
// its content. Ping frames are skipped.
func (c *WSClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	deadline := time.Now().Add(timeout)
	var seen []string
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			c.t.Fatalf("no message containing %q; saw %q", substr, seen)
		}
		env := c.Read(remaining)
		if env.Type != protocol.TypeMessage {
			continue
		}
		if strings.Contains(env.Content, substr) {
			return env.Content
		}
		seen = append(seen, env.Content)
	}
}

// Close sends a normal close frame and closes the connection.
func (c *WSClient) Close() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.conn.Close()
}
