// Package headers names the header keys the client reads or produces.
package headers

// Synthetic keys are derived from the status line and stored among the ordinary
// response headers. Their names can't collide with real header names, as those never
// contain underscores in practice.
const (
	Protocol   = "http_version"
	StatusCode = "status_code"
	Status     = "status"
)

// Framing and request headers. Lookups are exact, so these are spelled exactly
// as the daemon sends them.
const (
	ContentLength    = "Content-Length"
	ContentType      = "Content-Type"
	TransferEncoding = "Transfer-Encoding"
	Trailer          = "Trailer"
	Host             = "Host"
	Accept           = "Accept"

	Chunked = "chunked"
)

// IsSynthetic tells whether the key is one of those derived from the status line.
func IsSynthetic(key string) bool {
	switch key {
	case Protocol, StatusCode, Status:
		return true
	default:
		return false
	}
}
