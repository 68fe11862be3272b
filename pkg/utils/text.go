package utils

import (
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile("[\x01-\x08\x0B\x0C\x0E-\x1F\x7F]")

// CleanText removes NUL bytes and control characters that postgres text
// columns or the model would choke on. Newlines and tabs are kept.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}
