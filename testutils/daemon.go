package testutils

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/nettest"
)

// Handler returns the raw response bytes to a request.
type Handler func(req *http.Request, body []byte) string

// Daemon is a fake daemon listening on a fresh unix socket. It answers every request with
// whatever the handler renders, so malformed responses can be served as well.
type Daemon struct {
	Path     string
	listener net.Listener
	handler  Handler
	wg       sync.WaitGroup
	mu       sync.Mutex
	conns    []net.Conn
	requests []string
	bodies   [][]byte
}

func NewDaemon(handler Handler) (*Daemon, error) {
	path, err := nettest.LocalPath()
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		Path:     path,
		listener: listener,
		handler:  handler,
	}
	d.wg.Add(1)
	go d.serve()

	return d, nil
}

func (d *Daemon) serve() {
	defer d.wg.Done()

	for {
		conn, err := d.listener.Accept()
		if err != nil {
			return
		}

		d.mu.Lock()
		d.conns = append(d.conns, conn)
		d.mu.Unlock()

		d.wg.Add(1)
		go d.handle(conn)
	}
}

func (d *Daemon) handle(conn net.Conn) {
	defer d.wg.Done()
	defer conn.Close()

	reader := bufio.NewReader(conn)

	for {
		req, err := http.ReadRequest(reader)
		if err != nil {
			return
		}

		body, err := io.ReadAll(req.Body)
		if err != nil {
			return
		}

		d.mu.Lock()
		d.requests = append(d.requests, req.Method+" "+req.RequestURI)
		d.bodies = append(d.bodies, body)
		d.mu.Unlock()

		if _, err = io.WriteString(conn, d.handler(req, body)); err != nil {
			return
		}
	}
}

// Requests returns the request lines received so far, formatted as "METHOD URI".
func (d *Daemon) Requests() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]string(nil), d.requests...)
}

// Bodies returns the bodies of the received requests.
func (d *Daemon) Bodies() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([][]byte(nil), d.bodies...)
}

// Close stops the listener, drops every connection and waits until all the goroutines exit.
func (d *Daemon) Close() error {
	err := d.listener.Close()

	d.mu.Lock()
	for _, conn := range d.conns {
		_ = conn.Close()
	}
	d.mu.Unlock()

	d.wg.Wait()

	return err
}

// Response renders a response with a Content-Length framed body. Extra headers are
// passed as "Key: value" strings.
func Response(code int, reason, contentType, body string, extra ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", code, reason)
	if len(contentType) > 0 {
		b.WriteString("Content-Type: " + contentType + "\r\n")
	}

	for _, header := range extra {
		b.WriteString(header + "\r\n")
	}

	b.WriteString("Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n")
	b.WriteString(body)

	return b.String()
}

// JSON is a 200 OK response with a JSON body.
func JSON(body string) string {
	return Response(http.StatusOK, "OK", "application/json", body)
}

// Chunked renders a 200 OK response with the body split into the chunks.
func Chunked(contentType string, chunks ...string) string {
	var b strings.Builder
	b.WriteString("HTTP/1.1 200 OK\r\nContent-Type: " + contentType + "\r\nTransfer-Encoding: chunked\r\n\r\n")
	for _, chunk := range chunks {
		fmt.Fprintf(&b, "%x\r\n%s\r\n", len(chunk), chunk)
	}

	b.WriteString("0\r\n\r\n")

	return b.String()
}

// VersionHandler answers the handshake with the given API version and delegates the rest.
func VersionHandler(apiVersion string, next Handler) Handler {
	return func(req *http.Request, body []byte) string {
		if strings.HasSuffix(req.URL.Path, "/version") {
			return JSON(fmt.Sprintf(`{"Version":"24.0.0","ApiVersion":%q,"Os":"linux"}`, apiVersion))
		}

		if next == nil {
			return Response(http.StatusNotFound, "Not Found", "application/json", `{"message":"page not found"}`)
		}

		return next(req, body)
	}
}
