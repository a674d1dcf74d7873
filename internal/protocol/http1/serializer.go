package http1

import (
	"io"
	"strconv"

	"github.com/indigo-web/dockersock/config"
	"github.com/indigo-web/dockersock/errors"
	"github.com/indigo-web/dockersock/http/headers"
	"github.com/indigo-web/dockersock/http/method"
	"github.com/indigo-web/dockersock/http/mime"
	"github.com/indigo-web/dockersock/transport"
)

// Serializer renders requests. The request head and the body are written at once.
type Serializer struct {
	cfg    *config.Config
	client transport.Client
	buff   []byte
}

func NewSerializer(cfg *config.Config, client transport.Client) *Serializer {
	return &Serializer{
		cfg:    cfg,
		client: client,
		buff:   make([]byte, 0, cfg.Headers.LineSize.Default),
	}
}

// Write sends the request. The path must be already percent-encoded and begin with a slash,
// it is prefixed with the API version.
func (s *Serializer) Write(m method.Method, apiVersion, path string, body []byte) error {
	s.buff = append(s.buff[:0], m.String()...)
	s.buff = append(s.buff, " /v"...)
	s.buff = append(s.buff, apiVersion...)
	s.buff = append(s.buff, path...)
	s.buff = append(s.buff, " HTTP/1.1\r\n"...)
	s.appendHeader(headers.Host, "localhost")
	s.appendHeader(headers.Accept, "*/*")

	if len(body) > 0 && s.cfg.Body.Framing == config.Exact {
		s.appendHeader(headers.ContentType, mime.JSON)
		s.appendHeader(headers.ContentLength, strconv.Itoa(len(body)))
	}

	s.crlf()
	s.buff = append(s.buff, body...)

	n, err := s.client.Write(s.buff)
	if err == nil && n < len(s.buff) {
		err = io.ErrShortWrite
	}

	if err != nil {
		return errors.New(errors.IO, "write", err)
	}

	return nil
}

func (s *Serializer) appendHeader(key, value string) {
	s.buff = append(s.buff, key...)
	s.buff = append(s.buff, ": "...)
	s.buff = append(s.buff, value...)
	s.crlf()
}

func (s *Serializer) crlf() {
	s.buff = append(s.buff, '\r', '\n')
}
