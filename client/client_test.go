package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/indigo-web/dockersock/config"
	"github.com/indigo-web/dockersock/errors"
	"github.com/indigo-web/dockersock/http/method"
	"github.com/indigo-web/dockersock/http/status"
	"github.com/indigo-web/dockersock/payload"
	"github.com/indigo-web/dockersock/testutils"
	"github.com/indigo-web/dockersock/transport/dummy"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/net/nettest"
)

const versionResponse = `{"Version":"24.0.0","ApiVersion":"1.43","Os":"linux","GoVersion":"go1.20.7"}`

func startDaemon(t *testing.T, next testutils.Handler) *testutils.Daemon {
	d, err := testutils.NewDaemon(testutils.VersionHandler("1.43", next))
	require.NoError(t, err)

	return d
}

func getConfig(path string) *config.Config {
	cfg := config.Default()
	cfg.Socket.Path = path

	return cfg
}

type logRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (l *logRecorder) Printf(format string, v ...any) {
	l.mu.Lock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
	l.mu.Unlock()
}

func TestHandshake(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := startDaemon(t, func(*http.Request, []byte) string {
		return testutils.JSON(`{"Containers":3,"Name":"host"}`)
	})
	defer d.Close()

	c, err := New(getConfig(d.Path))
	require.NoError(t, err)
	defer c.Close()

	require.Equal(t, "24.0.0", c.Version())
	require.Equal(t, "1.43", c.APIVersion())
	require.Equal(t, "linux", c.OS())
	require.Equal(t, "Docker Version: 24.0.0\nApi Version: v1.43\nOs Version: linux\n", c.String())

	result, err := c.Get("/info")
	require.NoError(t, err)
	containers, ok := result.Payload().Get("Containers")
	require.True(t, ok)
	n, ok := containers.Int64()
	require.True(t, ok)
	require.Equal(t, int64(3), n)

	require.Equal(t, []string{"GET /v1.24/version", "GET /v1.43/info"}, d.Requests())
}

func TestConnectError(t *testing.T) {
	defer goleak.VerifyNone(t)

	path, err := nettest.LocalPath()
	require.NoError(t, err)

	_, err = New(getConfig(path))
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.Connect))

	var opErr *net.OpError
	require.ErrorAs(t, err, &opErr)
}

func TestHandshakeFailures(t *testing.T) {
	tcs := []struct {
		Name     string
		Response string
		Kind     errors.Kind
	}{
		{
			Name:     "missing os",
			Response: testutils.JSON(`{"Version":"24.0.0","ApiVersion":"1.43"}`),
			Kind:     errors.MissingField,
		},
		{
			Name:     "non-string api version",
			Response: testutils.JSON(`{"Version":"24.0.0","ApiVersion":1.43,"Os":"linux"}`),
			Kind:     errors.MissingField,
		},
		{
			Name:     "array payload",
			Response: testutils.JSON(`["24.0.0","1.43","linux"]`),
			Kind:     errors.MissingField,
		},
		{
			Name:     "malformed json",
			Response: testutils.JSON(`{"Version":`),
			Kind:     errors.Decode,
		},
		{
			Name:     "bad status line",
			Response: "HTTP/1.1\r\n\r\n",
			Kind:     errors.Protocol,
		},
		{
			Name:     "truncated",
			Response: "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n",
			Kind:     errors.IO,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			conn := dummy.NewMockClientString(tc.Response)
			_, err := NewWithTransport(conn, config.Default())
			require.Error(t, err)
			require.Equal(t, tc.Kind, errors.KindOf(err), err.Error())
			require.True(t, conn.Closed())
		})
	}

	t.Run("missing field is named", func(t *testing.T) {
		conn := dummy.NewMockClientString(testutils.JSON(`{"Version":"24.0.0","Os":"linux"}`))
		_, err := NewWithTransport(conn, config.Default())
		require.ErrorIs(t, err, errors.ErrMissingField)
		require.Contains(t, err.Error(), `"ApiVersion"`)
	})
}

func TestSilentDaemon(t *testing.T) {
	_, err := NewWithTransport(dummy.NewNopClient(), nil)
	require.True(t, errors.Is(err, errors.IO))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBootstrapRequest(t *testing.T) {
	conn := dummy.NewMockClientString(testutils.JSON(versionResponse))
	c, err := NewWithTransport(conn, config.Default())
	require.NoError(t, err)
	require.Equal(t, "GET /v1.24/version HTTP/1.1\r\nHost: localhost\r\nAccept: */*\r\n\r\n", conn.Written())
	require.Equal(t, "1.43", c.APIVersion())
}

func TestVerbs(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := startDaemon(t, func(req *http.Request, body []byte) string {
		switch req.Method {
		case http.MethodHead:
			return "HTTP/1.1 200 OK\r\nContent-Type: text/plain; charset=utf-8\r\nContent-Length: 2\r\n\r\n"
		case http.MethodGet:
			return testutils.Response(http.StatusOK, "OK", "text/plain; charset=utf-8", "OK")
		case http.MethodPost:
			return testutils.Response(http.StatusCreated, "Created", "application/json", `{"Id":"e90e34656806","Warnings":[]}`)
		case http.MethodPut:
			return testutils.JSON(fmt.Sprintf(`{"received":%d}`, len(body)))
		case http.MethodDelete:
			return "HTTP/1.1 204 No Content\r\n\r\n"
		default:
			return testutils.Response(http.StatusMethodNotAllowed, "Method Not Allowed", "", "")
		}
	})
	defer d.Close()

	c, err := New(getConfig(d.Path))
	require.NoError(t, err)
	defer c.Close()

	t.Run("HEAD", func(t *testing.T) {
		result, err := c.Head("/_ping")
		require.NoError(t, err)
		code, err := result.StatusCode()
		require.NoError(t, err)
		require.Equal(t, status.OK, code)
		require.Equal(t, payload.Object, result.Payload().Kind())
		require.Zero(t, result.Payload().Len())
	})

	t.Run("GET plain text", func(t *testing.T) {
		result, err := c.Get("/_ping")
		require.NoError(t, err)
		str, ok := result.Payload().Str()
		require.True(t, ok)
		require.Equal(t, "OK", str)
	})

	t.Run("POST", func(t *testing.T) {
		result, err := c.Post("/containers/create?name=web", []byte(`{"Image":"alpine"}`))
		require.NoError(t, err)
		code, err := result.StatusCode()
		require.NoError(t, err)
		require.Equal(t, status.Created, code)
		id, ok := result.Payload().StrField("Id")
		require.True(t, ok)
		require.Equal(t, "e90e34656806", id)
	})

	t.Run("PUT", func(t *testing.T) {
		result, err := c.Put("/containers/web/archive", []byte(`{}`))
		require.NoError(t, err)
		received, ok := result.Payload().Get("received")
		require.True(t, ok)
		literal, _ := received.Literal()
		require.Equal(t, "2", literal)
	})

	t.Run("DELETE", func(t *testing.T) {
		result, err := c.Delete("/containers/web", nil)
		require.NoError(t, err)
		code, err := result.StatusCode()
		require.NoError(t, err)
		require.Equal(t, status.NoContent, code)
		require.Empty(t, result.Body())
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := c.Do(method.Unknown, "/_ping", nil)
		require.True(t, errors.Is(err, errors.Protocol))
		require.ErrorIs(t, err, errors.ErrUnknownMethod)
	})

	require.Equal(t, []string{
		"GET /v1.24/version",
		"HEAD /v1.43/_ping",
		"GET /v1.43/_ping",
		"POST /v1.43/containers/create?name=web",
		"PUT /v1.43/containers/web/archive",
		"DELETE /v1.43/containers/web",
	}, d.Requests())
	bodies := d.Bodies()
	require.Equal(t, `{"Image":"alpine"}`, string(bodies[3]))
	require.Equal(t, `{}`, string(bodies[4]))
}

func TestErrorStatus(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := startDaemon(t, func(*http.Request, []byte) string {
		return testutils.Response(
			http.StatusNotFound, "Not Found", "application/json", `{"message":"No such container: web"}`,
			"Api-Version: 1.43", "Server: Docker/24.0.0 (linux)",
		)
	})
	defer d.Close()

	c, err := New(getConfig(d.Path))
	require.NoError(t, err)
	defer c.Close()

	result, err := c.Get("/containers/web/json")
	require.NoError(t, err)
	code, err := result.StatusCode()
	require.NoError(t, err)
	require.Equal(t, status.NotFound, code)
	require.Equal(t, "Not Found", result.Reason())
	message, ok := result.Payload().StrField("message")
	require.True(t, ok)
	require.Equal(t, "No such container: web", message)
	server, found := result.Header("Server")
	require.True(t, found)
	require.Equal(t, "Docker/24.0.0 (linux)", server)
}

func TestChunkedResponse(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := startDaemon(t, func(*http.Request, []byte) string {
		return testutils.Chunked("application/json", `[{"Id":"a"},`, `{"Id":"b"},`, `{"Id":"c"}]`)
	})
	defer d.Close()

	c, err := New(getConfig(d.Path))
	require.NoError(t, err)
	defer c.Close()

	for range 3 {
		result, err := c.Get("/containers/json")
		require.NoError(t, err)
		require.Equal(t, 3, result.Payload().Len())
		last, ok := result.Payload().Index(2)
		require.True(t, ok)
		id, _ := last.StrField("Id")
		require.Equal(t, "c", id)
	}
}

func TestConcurrentCallers(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := startDaemon(t, func(req *http.Request, _ []byte) string {
		return testutils.JSON(fmt.Sprintf(`{"Path":%q}`, req.URL.Path))
	})
	defer d.Close()

	c, err := New(getConfig(d.Path))
	require.NoError(t, err)
	defer c.Close()

	const (
		callers = 8
		calls   = 10
	)

	var wg sync.WaitGroup
	errs := make(chan error, callers*calls)

	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := range calls {
				path := fmt.Sprintf("/containers/%d-%d/json", i, j)
				result, err := c.Get(path)
				if err != nil {
					errs <- err
					return
				}

				if got, _ := result.Payload().StrField("Path"); got != "/v1.43"+path {
					errs <- fmt.Errorf("%s: got response to %s", path, got)
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	require.Len(t, d.Requests(), 1+callers*calls)
}

func TestClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := startDaemon(t, nil)
	defer d.Close()

	c, err := New(getConfig(d.Path))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.Get("/info")
	require.True(t, errors.Is(err, errors.IO))
}

func TestBrokenConnection(t *testing.T) {
	conn := dummy.NewMockClientString(
		testutils.JSON(versionResponse),
		"HTTP/1.1 200 OK\r\nno colon here\r\nContent-Length: 2\r\n\r\n{}",
		testutils.JSON(`{"ID":"7TRN"}`),
	)
	c, err := NewWithTransport(conn, config.Default())
	require.NoError(t, err)

	_, err = c.Get("/info")
	require.True(t, errors.Is(err, errors.Protocol))
	require.True(t, conn.Closed())

	_, err = c.Get("/info")
	require.True(t, errors.Is(err, errors.IO))
	require.ErrorIs(t, err, errors.ErrBrokenConnection)
	require.Equal(t, 1, strings.Count(conn.Written(), "GET /v1.43/info"))
}

func TestDecodeFailureKeepsConnection(t *testing.T) {
	conn := dummy.NewMockClientString(
		testutils.JSON(versionResponse),
		testutils.JSON(`{"Size":01}`),
		testutils.JSON(`{"ID":"7TRN"}`),
	)
	c, err := NewWithTransport(conn, config.Default())
	require.NoError(t, err)

	_, err = c.Get("/info")
	require.True(t, errors.Is(err, errors.Decode))
	require.False(t, conn.Closed())

	result, err := c.Get("/info")
	require.NoError(t, err)
	id, _ := result.Payload().StrField("ID")
	require.Equal(t, "7TRN", id)
}

func TestBodilessMethods(t *testing.T) {
	for _, m := range []method.Method{method.GET, method.HEAD} {
		conn := dummy.NewMockClientString(testutils.JSON(versionResponse), testutils.JSON(`{}`))
		c, err := NewWithTransport(conn, config.Default())
		require.NoError(t, err)

		_, err = c.Do(m, "/info", []byte(`{"All":true}`))
		require.NoError(t, err)
		require.True(t, strings.HasSuffix(
			conn.Written(), m.String()+" /v1.43/info HTTP/1.1\r\nHost: localhost\r\nAccept: */*\r\n\r\n",
		))
	}
}

func TestLogger(t *testing.T) {
	conn := dummy.NewMockClientString(
		testutils.JSON(versionResponse),
		testutils.JSON(`{"ID":"7TRN"}`),
		"HTTP/1.1 500 Internal Server Error\r\nContent-Type: application/json\r\nContent-Length: 1\r\n\r\n{",
	)
	logger := new(logRecorder)
	c, err := NewWithTransport(conn, config.Default(), WithLogger(logger), WithClock(clock.NewMock()))
	require.NoError(t, err)

	_, err = c.Get("/info")
	require.NoError(t, err)
	_, err = c.Get("/info")
	require.True(t, errors.Is(err, errors.Decode))

	require.Equal(t, []string{
		"GET /v1.24/version 200 OK (0s)",
		"connected to /var/run/docker.sock: daemon 24.0.0, API v1.43, linux",
		"GET /v1.43/info 200 OK (0s)",
		"GET /v1.43/info: " + err.Error(),
	}, logger.lines)
}

func TestNetHTTPDaemon(t *testing.T) {
	defer goleak.VerifyNone(t)

	path, err := nettest.LocalPath()
	require.NoError(t, err)
	listener, err := net.Listen("unix", path)
	require.NoError(t, err)

	type container struct {
		ID    string
		Names []string
	}

	containers := make([]container, 200)
	for i := range containers {
		containers[i] = container{ID: fmt.Sprintf("%064d", i), Names: []string{fmt.Sprintf("/web-%d", i)}}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1.24/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(versionResponse + "\n"))
	})
	mux.HandleFunc("/v1.43/containers/json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(containers)
	})

	srv := &http.Server{Handler: mux}
	done := make(chan struct{})
	go func() {
		_ = srv.Serve(listener)
		close(done)
	}()
	defer func() {
		_ = srv.Close()
		<-done
	}()

	t.Run("exact", func(t *testing.T) {
		c, err := New(getConfig(path))
		require.NoError(t, err)
		defer c.Close()

		result, err := c.Get("/containers/json")
		require.NoError(t, err)
		require.Equal(t, []string{"chunked"}, result.HeaderValues("Transfer-Encoding"))

		var got []container
		require.NoError(t, result.Decode(&got))
		require.Equal(t, containers, got)
	})

	t.Run("line compat handshake", func(t *testing.T) {
		cfg := getConfig(path)
		cfg.Body.Framing = config.LineCompat
		c, err := New(cfg)
		require.NoError(t, err)
		defer c.Close()

		require.Equal(t, "1.43", c.APIVersion())
	})
}
