package client

import (
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/indigo-web/dockersock/errors"
	"github.com/indigo-web/dockersock/http/headers"
	"github.com/indigo-web/dockersock/http/mime"
	"github.com/indigo-web/dockersock/http/proto"
	"github.com/indigo-web/dockersock/http/status"
	"github.com/indigo-web/dockersock/internal/protocol/http1"
	"github.com/indigo-web/dockersock/kv"
	"github.com/indigo-web/dockersock/payload"
)

// Result is a parsed daemon response. It's immutable and safe to keep after the client
// was closed.
type Result struct {
	headers *kv.Storage
	payload payload.Value
	body    []byte
}

func newResult(resp http1.Response) (*Result, error) {
	data, err := decodePayload(resp.Headers, resp.Body)
	if err != nil {
		return nil, err
	}

	return &Result{
		headers: resp.Headers,
		payload: data,
		body:    resp.Body,
	}, nil
}

// decodePayload turns the body into a structured value. An empty body is an empty object,
// explicitly non-JSON content is kept as a plain string.
func decodePayload(hdrs *kv.Storage, body []byte) (payload.Value, error) {
	if len(body) == 0 {
		return payload.Empty(), nil
	}

	if contentType, found := hdrs.Get(headers.ContentType); found && !mime.IsJSON(contentType) {
		return payload.NewString(string(body)), nil
	}

	data, err := payload.Decode(body)
	if err != nil {
		return payload.Value{}, errors.New(errors.Decode, "decode", err)
	}

	return data, nil
}

// StatusCode returns the numeric status code of the response.
func (r *Result) StatusCode() (status.Code, error) {
	raw, found := r.headers.Get(headers.StatusCode)
	if !found {
		return 0, errors.New(errors.Protocol, "parse", errors.ErrMissingStatusCode)
	}

	code, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, errors.Wrap(errors.Protocol, "parse", errors.ErrMissingStatusCode, "got %q", raw)
	}

	return status.Code(code), nil
}

// Reason returns the reason phrase of the status line. When the daemon sent none, the
// standard text of the status code is returned, which may be empty as well.
func (r *Result) Reason() string {
	if reason := r.headers.Value(headers.Status); len(reason) > 0 {
		return reason
	}

	code, err := r.StatusCode()
	if err != nil {
		return ""
	}

	return string(status.Text(code))
}

func (r *Result) Protocol() proto.Proto {
	return proto.FromString(r.headers.Value(headers.Protocol))
}

// Header returns the last value of the header. Names are matched exactly, as received.
func (r *Result) Header(key string) (string, bool) {
	return r.headers.Get(key)
}

// HeaderValues returns all the values of the header in the order they were received.
func (r *Result) HeaderValues(key string) []string {
	return slices.Collect(r.headers.Values(key))
}

// Headers iterates over the received header pairs. The status line parts are
// available via StatusCode, Reason and Protocol.
func (r *Result) Headers() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for key, value := range r.headers.Pairs() {
			if headers.IsSynthetic(key) {
				continue
			}

			if !yield(key, value) {
				return
			}
		}
	}
}

func (r *Result) Payload() payload.Value {
	return r.payload
}

// Body returns a copy of the raw body with the framing removed.
func (r *Result) Body() []byte {
	return slices.Clone(r.body)
}

// Decode unmarshalls the raw body into the model.
func (r *Result) Decode(model any) error {
	if err := payload.Unmarshal(r.body, model); err != nil {
		return errors.New(errors.Decode, "decode", err)
	}

	return nil
}

// String renders every header pair as a "key: value" line, then a blank line and the payload.
func (r *Result) String() string {
	var b strings.Builder
	for key, value := range r.headers.Pairs() {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(r.payload.String())

	return b.String()
}
