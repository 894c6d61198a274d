// Package profile turns free-form LinkedIn profile input into the username
// the scraping actor expects.
package profile

import (
	"regexp"
	"strings"
)

var profilePath = regexp.MustCompile(`linkedin\.com/in/([^/?#]+)`)

// ExtractUsername returns the <segment> of a ".../in/<segment>" profile URL.
// Input that does not look like a profile URL is returned trimmed, on the
// assumption that it already is a username.
func ExtractUsername(input string) string {
	if m := profilePath.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	return strings.TrimSpace(input)
}
