package config

// Framing selects how response bodies (and request bodies) are delimited on the wire.
type Framing uint8

const (
	// Exact reads exactly Content-Length bytes and decodes every chunk of a chunked
	// body. Request bodies are sent along with the Content-Length header.
	Exact Framing = iota + 1
	// LineCompat treats a sized body as a single CRLF-terminated line and consumes only
	// the first chunk of a chunked body. Request bodies carry no Content-Length. Use it only
	// when behaving byte-for-byte like the old shell tooling is required.
	LineCompat
)

func (f Framing) String() string {
	switch f {
	case Exact:
		return "exact"
	case LineCompat:
		return "line-compat"
	default:
		return "unknown"
	}
}

type (
	HeadersNumber struct {
		Default, Maximal int
	}

	HeadersLineSize struct {
		Default, Maximal int
	}
)

type (
	Socket struct {
		// Path is the filesystem path of the daemon's control socket.
		Path string
	}

	API struct {
		// Bootstrap is the API version used for the /version handshake. Once the handshake
		// succeeds, the version reported by the daemon replaces it.
		Bootstrap string
	}

	Headers struct {
		// Number is responsible for headers storage size.
		// Default value is an initial size of allocated pairs.
		// Maximal value is maximum number of header lines allowed in a single response.
		Number HeadersNumber
		// LineSize limits a single line of the response head (either status line or
		// a header line). Default is the initial buffer capacity.
		LineSize HeadersLineSize
	}

	Body struct {
		// Framing decides how the body boundaries are found.
		Framing Framing
		// MaxSize describes the maximal size of a response body, that can be processed.
		// Lines read in LineCompat mode are limited by it, too.
		MaxSize int
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int
	}
)

// Config holds settings used across the client, mainly the daemon endpoint, restrictions
// and pre-allocations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	Socket  Socket
	API     API
	Headers Headers
	Body    Body
	NET     NET
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Socket: Socket{
			Path: "/var/run/docker.sock",
		},
		API: API{
			Bootstrap: "1.24",
		},
		Headers: Headers{
			Number: HeadersNumber{
				Default: 10,
				Maximal: 100,
			},
			LineSize: HeadersLineSize{
				Default: 256,
				// the daemon doesn't send long cookies or anything alike, however the
				// Api-Version, Docker-Experimental, Ostype etc. family is pretty verbose.
				Maximal: 8 * 1024,
			},
		},
		Body: Body{
			Framing: Exact,
			MaxSize: 64 * 1024 * 1024, // 64 megabytes
		},
		NET: NET{
			ReadBufferSize: 4 * 1024,
		},
	}
}
