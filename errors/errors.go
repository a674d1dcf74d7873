package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies the step of a round trip, which failed.
type Kind uint8

const (
	Unknown Kind = iota
	// Connect means the daemon socket is unreachable.
	Connect
	// IO means a read or write failed mid-protocol, including truncated responses.
	IO
	// Protocol means the response head is malformed.
	Protocol
	// Decode means the body doesn't parse as a structured payload.
	Decode
	// MissingField means the handshake payload lacks one of the required keys.
	MissingField
)

func (k Kind) String() string {
	switch k {
	case Connect:
		return "connect error"
	case IO:
		return "i/o error"
	case Protocol:
		return "protocol error"
	case Decode:
		return "decode error"
	case MissingField:
		return "missing field"
	default:
		return "unknown error"
	}
}

var (
	ErrBadStatusLine     = pkgerrors.New("malformed status line")
	ErrBadHeaderLine     = pkgerrors.New("header line without colon")
	ErrTooManyHeaders    = pkgerrors.New("too many headers")
	ErrHeaderLineTooLong = pkgerrors.New("response head line is too long")
	ErrBadContentLength  = pkgerrors.New("malformed Content-Length")
	ErrBodyTooLarge      = pkgerrors.New("response body is too large")
	ErrBadChunk          = pkgerrors.New("malformed chunk-encoded data")
	ErrTrailingData      = pkgerrors.New("bytes left after the payload")
	ErrInvalidUTF8       = pkgerrors.New("payload is not valid UTF-8")
	ErrBadNumber         = pkgerrors.New("malformed number literal")
	ErrMissingField      = pkgerrors.New("required field is absent or not a string")
	ErrMissingStatusCode = pkgerrors.New("status code is missing or not a number")
	ErrUnknownMethod     = pkgerrors.New("request method is not supported")
	ErrBrokenConnection  = pkgerrors.New("connection is broken by a failed round trip")
)

// Error is returned by every failing client operation. Op names the step (connect, write,
// read, parse, decode, handshake) and Err carries the cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func New(kind Kind, op string, err error) *Error {
	return &Error{
		Kind: kind,
		Op:   op,
		Err:  err,
	}
}

// Wrap is New with an additional message attached to the cause.
func Wrap(kind Kind, op string, err error, format string, args ...any) *Error {
	return New(kind, op, pkgerrors.WithMessagef(err, format, args...))
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}

	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Cause returns the innermost error, the one without any context attached.
func (e *Error) Cause() error {
	return pkgerrors.Cause(e.Err)
}

// KindOf returns the Kind of the first *Error found in the chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if pkgerrors.As(err, &e) {
		return e.Kind
	}

	return Unknown
}

// Is reports whether any error in err's chain is of the kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
