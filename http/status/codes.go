package status

/*
INFO: a subset of net/http/status.go, limited to the codes a container daemon
actually answers with. Kept here to avoid name collisions with net/http.
*/

type (
	Code   uint16
	Status string
)

// HTTP status codes as registered with IANA.
// See: https://www.iana.org/assignments/http-status-codes/http-status-codes.xhtml
const (
	Continue           Code = 100 // RFC 9110, 15.2.1
	SwitchingProtocols Code = 101 // RFC 9110, 15.2.2

	OK        Code = 200 // RFC 9110, 15.3.1
	Created   Code = 201 // RFC 9110, 15.3.2
	NoContent Code = 204 // RFC 9110, 15.3.5

	NotModified Code = 304 // RFC 9110, 15.4.5

	BadRequest       Code = 400 // RFC 9110, 15.5.1
	Unauthorized     Code = 401 // RFC 9110, 15.5.2
	Forbidden        Code = 403 // RFC 9110, 15.5.4
	NotFound         Code = 404 // RFC 9110, 15.5.5
	MethodNotAllowed Code = 405 // RFC 9110, 15.5.6
	NotAcceptable    Code = 406 // RFC 9110, 15.5.7
	Conflict         Code = 409 // RFC 9110, 15.5.10

	InternalServerError Code = 500 // RFC 9110, 15.6.1
	NotImplemented      Code = 501 // RFC 9110, 15.6.2
	ServiceUnavailable  Code = 503 // RFC 9110, 15.6.4
)

// Text returns a text for the HTTP status code. It returns the empty
// string if the code is unknown.
func Text(code Code) Status {
	switch code {
	case Continue:
		return "Continue"
	case SwitchingProtocols:
		return "Switching Protocols"
	case OK:
		return "OK"
	case Created:
		return "Created"
	case NoContent:
		return "No Content"
	case NotModified:
		return "Not Modified"
	case BadRequest:
		return "Bad Request"
	case Unauthorized:
		return "Unauthorized"
	case Forbidden:
		return "Forbidden"
	case NotFound:
		return "Not Found"
	case MethodNotAllowed:
		return "Method Not Allowed"
	case NotAcceptable:
		return "Not Acceptable"
	case Conflict:
		return "Conflict"
	case InternalServerError:
		return "Internal Server Error"
	case NotImplemented:
		return "Not Implemented"
	case ServiceUnavailable:
		return "Service Unavailable"
	default:
		return ""
	}
}

// Informational reports whether the code is 1xx.
func (c Code) Informational() bool {
	return c >= 100 && c < 200
}

// Success reports whether the code is 2xx.
func (c Code) Success() bool {
	return c >= 200 && c < 300
}

// Bodiless reports whether a response with the code never carries a body, whatever
// its headers say.
func (c Code) Bodiless() bool {
	return c.Informational() || c == NoContent || c == NotModified
}
