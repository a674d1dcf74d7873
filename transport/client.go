package transport

import (
	"net"
)

// Client is a bidirectional byte stream to the daemon. Read returns a piece of data,
// which is valid only until the next Read call. Data, that was read but not consumed
// yet, must be returned via Pushback, so the next Read returns it first.
type Client interface {
	Read() ([]byte, error)
	Pushback([]byte)
	Write([]byte) (int, error)
	Conn() net.Conn
	Remote() net.Addr
	Close() error
}

type client struct {
	conn    net.Conn
	buff    []byte
	pending []byte
}

func NewClient(conn net.Conn, buff []byte) Client {
	return &client{
		buff: buff,
		conn: conn,
	}
}

// Dial connects to the daemon socket located at the path.
func Dial(path string, readBuffSize int) (Client, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, err
	}

	return NewClient(conn, make([]byte, readBuffSize)), nil
}

// Read reads data into the internal buffer and returns a piece of it back. There are no
// deadlines: an unresponsive daemon blocks the call for as long as it stays silent.
func (c *client) Read() ([]byte, error) {
	if len(c.pending) > 0 {
		pending := c.pending
		c.pending = nil

		return pending, nil
	}

	n, err := c.conn.Read(c.buff)
	if n > 0 {
		// the data is still valid, the error (if any) is going to be returned on the next read.
		return c.buff[:n], nil
	}

	return nil, err
}

// Pushback preserves a chunk of data from previous read for the next read.
func (c *client) Pushback(b []byte) {
	c.pending = b
}

// Conn unwraps the underlying net.Conn.
func (c *client) Conn() net.Conn {
	return c.conn
}

// Write writes data into the underlying connection.
func (c *client) Write(b []byte) (int, error) {
	return c.conn.Write(b)
}

// Remote returns the remote address of the connection.
func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection.
func (c *client) Close() error {
	return c.conn.Close()
}
