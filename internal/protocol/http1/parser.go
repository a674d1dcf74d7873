package http1

import (
	"bytes"
	"strings"

	"github.com/indigo-web/dockersock/config"
	"github.com/indigo-web/dockersock/errors"
	"github.com/indigo-web/dockersock/http/headers"
	"github.com/indigo-web/dockersock/http/method"
	"github.com/indigo-web/dockersock/kv"
	"github.com/indigo-web/dockersock/transport"
	"github.com/indigo-web/utils/buffer"
	"github.com/indigo-web/utils/uf"
)

// syntheticHeaders is the number of keys taken from the status line.
const syntheticHeaders = 3

// Response is the raw result of a single round trip: the header mapping (including the
// synthetic status line keys) and the body with the framing already removed.
type Response struct {
	Headers *kv.Storage
	Body    []byte
}

// Parser reads responses one by one. It reads strictly sequentially: status line first,
// then the header lines up to the blank one, then the body, as declared by the headers.
// The parser never reads beyond the response it parses.
type Parser struct {
	cfg        *config.Config
	state      parserState
	head       lineReader
	body       *body
	headersCap int
}

func NewParser(cfg *config.Config, client transport.Client) *Parser {
	lineBuff := buffer.NewBuffer[byte](cfg.Headers.LineSize.Default, cfg.Headers.LineSize.Maximal)

	return &Parser{
		cfg:        cfg,
		state:      eStatusLine,
		head:       newLineReader(client, lineBuff, errors.ErrHeaderLineTooLong),
		body:       newBody(client, cfg.Body),
		headersCap: cfg.Headers.Number.Default + syntheticHeaders,
	}
}

// Parse reads a whole response to a request of the method. In case of error no partial
// response is returned.
func (p *Parser) Parse(m method.Method) (Response, error) {
	hdrs := kv.NewPrealloc(p.headersCap)
	var respBody []byte

	for p.state = eStatusLine; p.state != eDone; {
		switch p.state {
		case eStatusLine:
			line, err := p.head.Line()
			if err != nil {
				return Response{}, err
			}

			if err = parseStatusLine(line, hdrs); err != nil {
				return Response{}, err
			}

			p.state = eHeaders
		case eHeaders:
			line, err := p.head.Line()
			if err != nil {
				return Response{}, err
			}

			if isBlankLine(line) {
				p.state = eBody
				continue
			}

			if hdrs.Len()-syntheticHeaders >= p.cfg.Headers.Number.Maximal {
				return Response{}, protocolError(errors.ErrTooManyHeaders)
			}

			if err = parseHeaderLine(line, hdrs); err != nil {
				return Response{}, err
			}
		case eBody:
			var err error
			if respBody, err = p.body.Read(m, hdrs); err != nil {
				return Response{}, err
			}

			p.state = eDone
		default:
			panic("BUG: response parser: unknown state")
		}
	}

	return Response{
		Headers: hdrs,
		Body:    respBody,
	}, nil
}

func isBlankLine(line []byte) bool {
	return len(line) == 2 && uf.B2S(line) == "\r\n"
}

// parseStatusLine splits the line by single spaces into the protocol, the status code and
// the reason. The reason may consist of multiple words, so all the remaining tokens are
// joined back.
func parseStatusLine(line []byte, hdrs *kv.Storage) error {
	tokens := strings.Split(string(trimCRLF(line)), " ")
	if len(tokens) < 2 {
		return protocolError(errors.ErrBadStatusLine)
	}

	hdrs.
		Add(headers.Protocol, tokens[0]).
		Add(headers.StatusCode, tokens[1]).
		Add(headers.Status, strings.TrimRight(strings.Join(tokens[2:], " "), " \t"))

	return nil
}

// parseHeaderLine splits the line by the first colon. The value is cleared of the leading
// whitespace, trailing CRLF and surrounding quotes. Nothing is added on error.
func parseHeaderLine(line []byte, hdrs *kv.Storage) error {
	colon := bytes.IndexByte(line, ':')
	if colon == -1 {
		return protocolError(errors.ErrBadHeaderLine)
	}

	value := trimCRLF(line[colon+1:])
	value = bytes.TrimLeft(value, " \t")
	value = bytes.Trim(value, `"`)
	hdrs.Add(string(line[:colon]), string(value))

	return nil
}
