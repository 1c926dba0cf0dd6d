package base64

import "strings"

const (
	uriPrefix    = "data:"
	base64Marker = ";base64,"
)

// GetContentType extracts the media type from a base64 data URI, the
// format room photos are uploaded in. "data:image/png;base64,..."
// yields "image/png". Malformed input yields an empty string.
func GetContentType(file string) string {
	end := strings.Index(file, base64Marker)
	if end < len(uriPrefix) {
		return ""
	}

	return file[len(uriPrefix):end]
}
