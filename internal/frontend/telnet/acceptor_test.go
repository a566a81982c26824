package telnet

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/wsmud/internal/config"
)

// echoHandler is a test SessionHandler that echoes lines back to the client.
type echoHandler struct {
	sessionCount atomic.Int32
}

func (h *echoHandler) HandleSession(_ context.Context, conn *Conn) error {
	h.sessionCount.Add(1)
	for {
		line, err := conn.ReadLine()
		if err != nil {
			return err
		}
		if line == "quit" {
			_ = conn.WriteLine("bye")
			return nil
		}
		_ = conn.WriteLine("echo: " + line)
	}
}

// blockingHandler holds each session open until its context is cancelled.
type blockingHandler struct {
	started chan struct{}
}

func (h *blockingHandler) HandleSession(ctx context.Context, _ *Conn) error {
	h.started <- struct{}{}
	<-ctx.Done()
	return ctx.Err()
}

func testTelnetConfig() config.TelnetConfig {
	return config.TelnetConfig{
		Enabled:      true,
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// startAcceptor runs acc in the background and waits for it to listen.
func startAcceptor(t *testing.T, acc *Acceptor) <-chan error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() {
		errCh <- acc.ListenAndServe()
	}()
	require.Eventually(t, func() bool {
		return acc.IsRunning() && acc.Addr() != ""
	}, 2*time.Second, 10*time.Millisecond, "acceptor did not start in time")
	return errCh
}

// dial connects and consumes the option negotiation.
func dial(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	buf := make([]byte, 256)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Positive(t, n)
	assert.Equal(t, byte(IAC), buf[0], "session opens with option negotiation")
	return conn
}

func TestAcceptor_EchoAndStop(t *testing.T) {
	handler := &echoHandler{}
	acc := NewAcceptor(testTelnetConfig(), handler, zaptest.NewLogger(t))
	errCh := startAcceptor(t, acc)

	conn := dial(t, acc.Addr())
	buf := make([]byte, 256)

	_, err := conn.Write([]byte("hello\r\n"))
	require.NoError(t, err)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "echo: hello\r\n", string(buf[:n]))

	_, _ = conn.Write([]byte("quit\r\n"))
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _ = conn.Read(buf)
	assert.Contains(t, string(buf[:n]), "bye")

	acc.Stop()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("acceptor did not stop in time")
	}
	assert.False(t, acc.IsRunning())
	assert.Equal(t, int32(1), handler.sessionCount.Load())
}

func TestAcceptor_MultipleClients(t *testing.T) {
	handler := &echoHandler{}
	acc := NewAcceptor(testTelnetConfig(), handler, zaptest.NewLogger(t))
	startAcceptor(t, acc)
	defer acc.Stop()

	const numClients = 3
	conns := make([]net.Conn, numClients)
	for i := range conns {
		conns[i] = dial(t, acc.Addr())
	}
	for _, conn := range conns {
		_, _ = conn.Write([]byte("quit\r\n"))
		buf := make([]byte, 256)
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _ = conn.Read(buf)
	}

	require.Eventually(t, func() bool {
		return handler.sessionCount.Load() == numClients
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAcceptor_StopCancelsSessions(t *testing.T) {
	handler := &blockingHandler{started: make(chan struct{}, 1)}
	acc := NewAcceptor(testTelnetConfig(), handler, zaptest.NewLogger(t))
	errCh := startAcceptor(t, acc)

	dial(t, acc.Addr())
	select {
	case <-handler.started:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not start")
	}

	stopped := make(chan struct{})
	go func() {
		acc.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not wait out the open session")
	}
	assert.NoError(t, <-errCh)

	// Stop is idempotent.
	acc.Stop()
}

func TestAcceptor_StopBeforeListen(t *testing.T) {
	acc := NewAcceptor(testTelnetConfig(), &echoHandler{}, zaptest.NewLogger(t))
	acc.Stop()

	assert.NoError(t, acc.ListenAndServe())
	assert.Empty(t, acc.Addr())
}

func TestAcceptor_ListenError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := testTelnetConfig()
	cfg.Port = busy.Addr().(*net.TCPAddr).Port
	acc := NewAcceptor(cfg, &echoHandler{}, zaptest.NewLogger(t))

	err = acc.ListenAndServe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listening on")
}
