package media

import (
	"net/url"
	"strings"
)

// EscapeComponent percent-encodes s for use inside a link query, writing
// spaces as %20. Unlike a browser it also escapes *()!'.
func EscapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
