package http1

import (
	"io"
	"strconv"

	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/dockersock/config"
	"github.com/indigo-web/dockersock/errors"
	"github.com/indigo-web/dockersock/http/headers"
	"github.com/indigo-web/dockersock/http/method"
	"github.com/indigo-web/dockersock/http/status"
	"github.com/indigo-web/dockersock/kv"
	"github.com/indigo-web/dockersock/transport"
	"github.com/indigo-web/utils/buffer"
)

// body strips the framing off the response body. Which framing applies is decided by
// the headers in the following order: chunked transfer encoding, then Content-Length,
// otherwise the body is absent.
type body struct {
	cfg    config.Body
	client transport.Client
	lines  lineReader
}

func newBody(client transport.Client, cfg config.Body) *body {
	return &body{
		cfg:    cfg,
		client: client,
		lines:  newLineReader(client, buffer.NewBuffer[byte](0, cfg.MaxSize), errors.ErrBodyTooLarge),
	}
}

// Read returns the body of the response, whose headers are passed. Nil is returned
// if there's no body.
func (b *body) Read(m method.Method, hdrs *kv.Storage) ([]byte, error) {
	if b.cfg.Framing == config.Exact && !mayHaveBody(m, hdrs) {
		return nil, nil
	}

	if te, found := hdrs.Get(headers.TransferEncoding); found && te == headers.Chunked {
		if b.cfg.Framing == config.LineCompat {
			return b.firstChunk()
		}

		return b.readChunked(hdrs.Has(headers.Trailer))
	}

	if cl, found := hdrs.Get(headers.ContentLength); found && cl != "0" {
		if b.cfg.Framing == config.LineCompat {
			return b.line()
		}

		length, err := strconv.ParseUint(cl, 10, 63)
		if err != nil {
			return nil, protocolError(errors.ErrBadContentLength)
		}

		if length > uint64(b.cfg.MaxSize) {
			return nil, protocolError(errors.ErrBodyTooLarge)
		}

		return b.readSized(int(length))
	}

	return nil, nil
}

// mayHaveBody reports false for responses, which never carry a body, regardless of their
// framing headers.
func mayHaveBody(m method.Method, hdrs *kv.Storage) bool {
	if m == method.HEAD {
		return false
	}

	code, err := strconv.ParseUint(hdrs.Value(headers.StatusCode), 10, 16)
	if err != nil {
		// the status accessor reports it properly later
		return true
	}

	return !status.Code(code).Bodiless()
}

// line reads exactly one line as a whole body.
func (b *body) line() ([]byte, error) {
	line, err := b.lines.Line()
	if err != nil {
		return nil, err
	}

	return clone(trimCRLF(line)), nil
}

// firstChunk consumes the chunk length line (not validated) and the chunk itself, given
// that the chunk doesn't contain any line feeds. Everything after it is left unread.
func (b *body) firstChunk() ([]byte, error) {
	if _, err := b.lines.Line(); err != nil {
		return nil, err
	}

	return b.line()
}

func (b *body) readSized(length int) ([]byte, error) {
	buff := make([]byte, 0, length)

	for len(buff) < length {
		data, err := b.client.Read()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}

			return nil, ioError(err)
		}

		if left := length - len(buff); len(data) > left {
			b.client.Pushback(data[left:])
			data = data[:left]
		}

		buff = append(buff, data...)
	}

	return buff, nil
}

func (b *body) readChunked(trailer bool) ([]byte, error) {
	// the parser state is per-body
	parser := chunkedbody.NewParser(chunkedbody.DefaultSettings())
	var buff []byte

	for {
		data, err := b.client.Read()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}

			return nil, ioError(err)
		}

		for len(data) > 0 {
			chunk, extra, err := parser.Parse(data, trailer)
			buff = append(buff, chunk...)
			if len(buff) > b.cfg.MaxSize {
				return nil, protocolError(errors.ErrBodyTooLarge)
			}

			switch err {
			case nil:
				data = extra
			case io.EOF:
				b.client.Pushback(extra)
				return buff, nil
			default:
				return nil, errors.Wrap(errors.Protocol, "parse", errors.ErrBadChunk, "%s", err)
			}
		}
	}
}

func clone(b []byte) []byte {
	return append(make([]byte, 0, len(b)), b...)
}
