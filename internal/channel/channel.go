// Package channel implements the session-scoped message stream between one
// client and one service invocation. Messages are framed as JSON lines over a
// single connection, which gives in-order delivery without multiplexing: one
// request, one channel, one eventual terminal message.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/ilhambagus/pos-android-sdk/flow/appmessage"
)

var (
	// ErrProtocolViolation marks a send that breaks the channel contract:
	// a second terminal message, or any message after end of stream. These
	// fail fast and are never silently dropped.
	ErrProtocolViolation = errors.New("channel protocol violation")

	// ErrChannelClosed is returned when receiving on a channel whose peer
	// has ended the stream or dropped the connection.
	ErrChannelClosed = errors.New("channel closed")
)

// Conn is one end of a channel. It is owned by exactly one party for the
// duration of one request and released once, on the first terminal message.
type Conn struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder

	mu           sync.Mutex
	terminalSent bool
	streamEnded  bool
}

func newConn(conn net.Conn) *Conn {
	return &Conn{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
	}
}

// Dial opens a channel to the service listening on addr.
func Dial(ctx context.Context, addr string) (*Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing channel %s: %w", addr, err)
	}
	return newConn(conn), nil
}

// Send writes one message to the peer. Messages are delivered in send order.
// After a terminal message only the end-stream marker may follow; after the
// end-stream marker nothing may follow.
func (c *Conn) Send(msg appmessage.AppMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.streamEnded {
		return fmt.Errorf("%w: send of %s after end of stream", ErrProtocolViolation, msg.MessageType)
	}
	if c.terminalSent && msg.MessageType != appmessage.TypeEndStream {
		return fmt.Errorf("%w: %s after terminal message", ErrProtocolViolation, msg.MessageType)
	}
	if msg.IsTerminal() {
		c.terminalSent = true
	}
	if msg.MessageType == appmessage.TypeEndStream {
		c.streamEnded = true
	}
	if err := c.enc.Encode(msg); err != nil {
		return fmt.Errorf("sending %s: %w", msg.MessageType, err)
	}
	return nil
}

// SendEndStream emits the end-of-stream marker.
func (c *Conn) SendEndStream() error {
	return c.Send(appmessage.AppMessage{MessageType: appmessage.TypeEndStream})
}

// Receive blocks until the next message arrives. It returns ErrChannelClosed
// once the peer has ended the stream or the connection is gone.
func (c *Conn) Receive() (appmessage.AppMessage, error) {
	var msg appmessage.AppMessage
	if err := c.dec.Decode(&msg); err != nil {
		return appmessage.AppMessage{}, fmt.Errorf("%w: %v", ErrChannelClosed, err)
	}
	if msg.MessageType == appmessage.TypeEndStream {
		return msg, ErrChannelClosed
	}
	return msg, nil
}

// TerminalSent reports whether a terminal message has been sent on this end.
func (c *Conn) TerminalSent() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminalSent
}

// Close releases the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}
