package cli

import (
	"fmt"
	"net"
	"time"

	"github.com/hmngo/wordchain/internal/protocol"
)

const defaultTimeout = 30 * time.Second

// Client is a TCP client speaking the framed game protocol. One Client
// owns one connection; commands that need a login call Login first.
type Client struct {
	conn net.Conn
}

// Dial connects to the server.
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, defaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close tears the connection down.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Send writes one frame.
func (c *Client) Send(t protocol.MessageType, payload string) error {
	return protocol.WriteFrame(c.conn, &protocol.Message{Type: t, Payload: payload})
}

// Recv reads one frame, waiting up to the default timeout.
func (c *Client) Recv() (*protocol.Message, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(defaultTimeout)); err != nil {
		return nil, err
	}
	return protocol.ReadFrame(c.conn)
}

// RecvWait reads one frame without a deadline. Used in play mode where
// the next frame may be minutes away.
func (c *Client) RecvWait() (*protocol.Message, error) {
	if err := c.conn.SetReadDeadline(time.Time{}); err != nil {
		return nil, err
	}
	return protocol.ReadFrame(c.conn)
}

// Call sends a request and reads the single reply frame.
func (c *Client) Call(t protocol.MessageType, payload string) (*protocol.Message, error) {
	if err := c.Send(t, payload); err != nil {
		return nil, err
	}
	return c.Recv()
}

// APIError is a non-success reply surfaced as an error.
type APIError struct {
	Type    protocol.MessageType
	Status  protocol.StatusCode
	Payload string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.Type, e.Status, e.Payload)
}

// CallOK sends a request and requires a 2xx reply.
func (c *Client) CallOK(t protocol.MessageType, payload string) (*protocol.Message, error) {
	reply, err := c.Call(t, payload)
	if err != nil {
		return nil, err
	}
	if reply.Status >= 400 {
		return nil, &APIError{Type: t, Status: reply.Status, Payload: reply.Payload}
	}
	return reply, nil
}

// Login authenticates the connection.
func (c *Client) Login(username, password string) error {
	_, err := c.CallOK(protocol.LoginRequest, username+"|"+password)
	return err
}
