package dummy

import (
	"io"
	"net"
	"time"
)

// Conn stands in for the socket behind a mock client. Reads always end, writes are
// either recorded or discarded.
type Conn struct {
	Data   []byte
	nop    bool
	closed bool
}

func (c *Conn) Read([]byte) (n int, err error) {
	if c.closed {
		return 0, net.ErrClosed
	}

	return 0, io.EOF
}

func (c *Conn) Write(b []byte) (n int, err error) {
	if c.closed {
		return 0, net.ErrClosed
	}

	if !c.nop {
		c.Data = append(c.Data, b...)
	}

	return len(b), nil
}

func (c *Conn) Close() error {
	c.closed = true
	return nil
}

func (c *Conn) LocalAddr() net.Addr {
	return socketAddr
}

func (c *Conn) RemoteAddr() net.Addr {
	return socketAddr
}

func (*Conn) SetDeadline(time.Time) error {
	return nil
}

func (*Conn) SetReadDeadline(time.Time) error {
	return nil
}

func (*Conn) SetWriteDeadline(time.Time) error {
	return nil
}

// Nop makes the connection discard everything written.
func (c *Conn) Nop() *Conn {
	c.nop = true
	return c
}

var socketAddr = &net.UnixAddr{Name: "/var/run/docker.sock", Net: "unix"}
