package chunker

import (
	"regexp"
	"strings"
)

var linkLine = regexp.MustCompile(`(?m)^Link: (.*)$`)

// ExtractDocumentLink returns the value of the first "Link: <url>" line in text,
// or "" if there is none.
func ExtractDocumentLink(text string) string {
	m := linkLine.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
