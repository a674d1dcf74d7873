package client

import (
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/indigo-web/dockersock/config"
	"github.com/indigo-web/dockersock/errors"
	"github.com/indigo-web/dockersock/http/headers"
	"github.com/indigo-web/dockersock/http/method"
	"github.com/indigo-web/dockersock/internal/protocol/http1"
	"github.com/indigo-web/dockersock/transport"
)

// Client talks to the daemon over a single connection. Requests are strictly
// sequential: concurrent callers are served one by one, never interleaving on the wire.
type Client struct {
	mu         sync.Mutex
	cfg        *config.Config
	transport  transport.Client
	suit       *http1.Suit
	logger     Logger
	clock      clock.Clock
	version    string
	apiVersion string
	os         string
	// broken holds the failure, which left the connection in an unknown state.
	broken error
}

// New connects to the daemon socket and performs the handshake. On any failure the
// connection is closed and no client is returned.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	conn, err := transport.Dial(cfg.Socket.Path, cfg.NET.ReadBufferSize)
	if err != nil {
		return nil, errors.New(errors.Connect, "connect", err)
	}

	return NewWithTransport(conn, cfg, opts...)
}

// NewWithTransport performs the handshake over an already established connection.
func NewWithTransport(conn transport.Client, cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	c := &Client{
		cfg:        cfg,
		transport:  conn,
		suit:       http1.New(cfg, conn),
		logger:     nopLogger{},
		clock:      clock.New(),
		apiVersion: cfg.API.Bootstrap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.handshake(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return c, nil
}

// handshake asks the daemon for its version. Every following request is addressed
// to the API version the daemon reported.
func (c *Client) handshake() error {
	result, err := c.Get("/version")
	if err != nil {
		return err
	}

	data := result.Payload()
	keys := [...]string{"Version", "ApiVersion", "Os"}
	var values [len(keys)]string

	for i, key := range keys {
		value, ok := data.StrField(key)
		if !ok {
			return errors.Wrap(errors.MissingField, "handshake", errors.ErrMissingField, "key %q", key)
		}

		values[i] = value
	}

	c.mu.Lock()
	c.version, c.apiVersion, c.os = values[0], values[1], values[2]
	c.mu.Unlock()
	c.logger.Printf("connected to %s: daemon %s, API v%s, %s", c.cfg.Socket.Path, c.version, c.apiVersion, c.os)

	return nil
}

func (c *Client) Get(path string) (*Result, error) {
	return c.Do(method.GET, path, nil)
}

func (c *Client) Head(path string) (*Result, error) {
	return c.Do(method.HEAD, path, nil)
}

func (c *Client) Post(path string, body []byte) (*Result, error) {
	return c.Do(method.POST, path, body)
}

func (c *Client) Put(path string, body []byte) (*Result, error) {
	return c.Do(method.PUT, path, body)
}

func (c *Client) Delete(path string, body []byte) (*Result, error) {
	return c.Do(method.DELETE, path, body)
}

// Do makes a single round trip. The path must be percent-encoded and begin with a slash,
// it's prefixed with the negotiated API version. The body is sent verbatim, except for GET
// and HEAD requests, which never carry one.
//
// A failed write or read leaves an unknown part of the exchange on the wire, so the
// connection is closed and every following call fails with ErrBrokenConnection. Decode
// failures happen after the response is fully read and keep the client usable.
func (c *Client) Do(m method.Method, path string, body []byte) (*Result, error) {
	if m == method.Unknown || m > method.Count {
		return nil, errors.New(errors.Protocol, "write", errors.ErrUnknownMethod)
	}

	if !m.HasBody() {
		body = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken != nil {
		return nil, errors.Wrap(errors.IO, "write", errors.ErrBrokenConnection, "%s", c.broken)
	}

	start := c.clock.Now()
	resp, err := c.suit.RoundTrip(m, c.apiVersion, path, body)
	if err != nil {
		c.broken = err
		_ = c.transport.Close()
		c.logger.Printf("%s /v%s%s: %s", m, c.apiVersion, path, err)
		return nil, err
	}

	result, err := newResult(resp)
	if err != nil {
		c.logger.Printf("%s /v%s%s: %s", m, c.apiVersion, path, err)
		return nil, err
	}

	c.logger.Printf(
		"%s /v%s%s %s %s (%s)",
		m, c.apiVersion, path, result.headers.Value(headers.StatusCode), result.Reason(), c.clock.Since(start),
	)

	return result, nil
}

// Version returns the daemon version reported during the handshake.
func (c *Client) Version() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.version
}

// APIVersion returns the negotiated API version, without the "v" prefix.
func (c *Client) APIVersion() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.apiVersion
}

// OS returns the daemon's operating system.
func (c *Client) OS() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.os
}

func (c *Client) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return fmt.Sprintf("Docker Version: %s\nApi Version: v%s\nOs Version: %s\n", c.version, c.apiVersion, c.os)
}

// Close closes the connection. Any following call fails with an i/o error.
func (c *Client) Close() error {
	return c.transport.Close()
}
