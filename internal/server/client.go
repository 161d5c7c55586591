// Package server hosts the TCP front end: the listener, the
// per-connection read loop, and the dispatcher that routes decoded
// requests into the services.
package server

import (
	"net"
	"sync"

	"github.com/hmngo/wordchain/internal/protocol"
)

// Client wraps one accepted connection. Frames from the dispatcher and
// broadcast fan-out can race, so writes go through a mutex; everything
// else happens on the connection's own read goroutine.
type Client struct {
	conn net.Conn

	writeMu sync.Mutex

	mu   sync.Mutex
	name string
}

// NewClient wraps an accepted connection.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn}
}

// Send writes one frame to the peer.
func (c *Client) Send(msg *protocol.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return protocol.WriteFrame(c.conn, msg)
}

// Close tears the connection down, unblocking the read loop.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Name returns the player this connection is logged in as, or "".
func (c *Client) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

func (c *Client) setName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// RemoteAddr names the peer for logging.
func (c *Client) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
