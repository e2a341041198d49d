package testutil

import (
	"bytes"
	"net"
	"testing"
	"time"
)

// TelnetClient is a raw Telnet client for integration tests. Output read past
// a match is kept for the next ReadUntil.
type TelnetClient struct {
	t       *testing.T
	conn    net.Conn
	pending []byte
}

// NewTelnetClient dials addr and returns a connected client closed on test cleanup.
//
// Precondition: addr must be a "host:port" with a listening server.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &TelnetClient{t: t, conn: conn}
}

// ReadUntil reads until substr appears and returns everything up to and
// including it, or fails the test after timeout.
//
// Precondition: substr must be non-empty.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	want := []byte(substr)
	deadline := time.Now().Add(timeout)
	buf := make([]byte, 1024)
	var readErr error
	for {
		if i := bytes.Index(c.pending, want); i >= 0 {
			end := i + len(want)
			out := string(c.pending[:end])
			c.pending = append([]byte(nil), c.pending[end:]...)
			return out
		}
		if readErr != nil {
			c.t.Fatalf("waiting for %q: got %q: %v", substr, c.pending, readErr)
		}
		_ = c.conn.SetReadDeadline(deadline)
		var n int
		n, readErr = c.conn.Read(buf)
		c.pending = append(c.pending, buf[:n]...)
	}
}

// Send writes text followed by \r\n.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := c.conn.Write([]byte(text + "\r\n")); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close closes the connection.
func (c *TelnetClient) Close() {
	_ = c.conn.Close()
}
