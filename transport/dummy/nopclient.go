package dummy

import (
	"io"
	"net"

	"github.com/indigo-web/dockersock/transport"
)

var _ transport.Client = NopClient{}

// NopClient is a daemon, which accepts every request and never answers.
type NopClient struct{}

func NewNopClient() NopClient {
	return NopClient{}
}

func (NopClient) Read() ([]byte, error) {
	return nil, io.EOF
}

func (NopClient) Pushback([]byte) {}

func (NopClient) Write(b []byte) (int, error) {
	return len(b), nil
}

func (NopClient) Conn() net.Conn {
	return new(Conn).Nop()
}

func (NopClient) Remote() net.Addr {
	return socketAddr
}

func (NopClient) Close() error {
	return nil
}
