package mime

import (
	"strings"

	"github.com/indigo-web/utils/strcomp"
)

type MIME = string

const JSON MIME = "application/json"

// Complies returns whether two MIMEs are compatible. Empty MIME is
// considered compatible with any other MIME. Parameters (like charset) are ignored.
func Complies(mime MIME, with string) bool {
	with = cutParams(with)
	return len(with) == 0 || strcomp.EqualFold(with, mime)
}

// IsJSON tells whether a Content-Type value denotes a JSON document. This includes
// structured syntax suffixes, e.g. application/vnd.docker.plugins.v1.2+json.
func IsJSON(contentType string) bool {
	contentType = cutParams(contentType)
	if Complies(JSON, contentType) {
		return true
	}

	const suffix = "+json"
	return len(contentType) > len(suffix) &&
		strcomp.EqualFold(contentType[len(contentType)-len(suffix):], suffix)
}

func cutParams(value string) string {
	value, _, _ = strings.Cut(value, ";")
	return strings.TrimSpace(value)
}
