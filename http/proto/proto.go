package proto

import "github.com/indigo-web/utils/uf"

type Proto uint8

const (
	Unknown Proto = 0
	HTTP10  Proto = 1 << iota
	HTTP11
	HTTP2

	HTTP1 = HTTP10 | HTTP11
)

func (p Proto) String() string {
	switch p {
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return "HTTP/1.1"
	case HTTP2:
		return "HTTP/2"
	default:
		return ""
	}
}

const (
	protoTokenLength   = len("HTTP/x.x")
	majorTokenLength   = len("HTTP/x")
	majorVersionOffset = len("HTTP/x") - 1
	minorVersionOffset = len("HTTP/x.x") - 1
	httpScheme         = "HTTP/"
)

var majorMinorVersionLUT = [10][10]Proto{
	1: {0: HTTP10, 1: HTTP11},
	2: {0: HTTP2},
}

func FromBytes(raw []byte) Proto {
	if len(raw) < majorTokenLength || uf.B2S(raw[:majorVersionOffset]) != httpScheme {
		return Unknown
	}

	switch major := raw[majorVersionOffset] - '0'; len(raw) {
	case protoTokenLength:
		return Parse(major, raw[minorVersionOffset]-'0')
	case majorTokenLength:
		// versions since HTTP/2 carry no minor number
		if major < 2 {
			return Unknown
		}

		return Parse(major, 0)
	default:
		return Unknown
	}
}

func FromString(str string) Proto {
	return FromBytes(uf.S2B(str))
}

func Parse(major, minor uint8) Proto {
	if major > 9 || minor > 9 {
		return Unknown
	}

	return majorMinorVersionLUT[major][minor]
}
