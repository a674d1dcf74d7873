package dummy

import (
	"io"
	"net"

	"github.com/indigo-web/dockersock/transport"
)

var _ transport.Client = new(Client)

// Client returns the data it was initialised with, piece by piece, and io.EOF once
// it runs out of it (unless set to loop). It also tracks all the written data, making it
// thereby a universal mock suitable for most of the tests.
type Client struct {
	closed   bool
	loop     bool
	pointer  int
	pending  []byte
	written  []byte
	data     [][]byte
	readErr  error
	writeErr error
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{
		data:    data,
		readErr: io.EOF,
	}
}

// NewMockClientString is a shorthand for NewMockClient with string pieces.
func NewMockClientString(data ...string) *Client {
	pieces := make([][]byte, len(data))
	for i, piece := range data {
		pieces[i] = []byte(piece)
	}

	return NewMockClient(pieces...)
}

func (c *Client) Read() (data []byte, err error) {
	if c.closed {
		return nil, net.ErrClosed
	}

	if len(c.pending) > 0 {
		data, c.pending = c.pending, nil

		return data, nil
	}

	if c.pointer >= len(c.data) {
		if !c.loop || len(c.data) == 0 {
			return nil, c.readErr
		}

		c.pointer = 0
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Pushback(takeback []byte) {
	c.pending = takeback
}

func (c *Client) Write(p []byte) (int, error) {
	if c.closed {
		return 0, net.ErrClosed
	}

	if c.writeErr != nil {
		return 0, c.writeErr
	}

	c.written = append(c.written, p...)

	return len(p), nil
}

func (c *Client) Conn() net.Conn {
	return new(Conn).Nop()
}

func (*Client) Remote() net.Addr {
	return socketAddr
}

func (c *Client) Close() error {
	c.closed = true
	return nil
}

// Closed tells whether Close was called.
func (c *Client) Closed() bool {
	return c.closed
}

// LoopReads makes the client start over again once all the pieces are read.
func (c *Client) LoopReads() *Client {
	c.loop = true
	return c
}

// FailReads sets the error returned once the pieces are exhausted. It's io.EOF by default.
func (c *Client) FailReads(err error) *Client {
	c.readErr = err
	return c
}

// FailWrites makes every write fail with the error.
func (c *Client) FailWrites(err error) *Client {
	c.writeErr = err
	return c
}

func (c *Client) Written() string {
	return string(c.written)
}
