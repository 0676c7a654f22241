package linkedin

import (
	"net/url"
	"regexp"
	"strings"
)

var profilePathRe = regexp.MustCompile(`^/in/[A-Za-z0-9\-_%]+/?$`)

// NormalizeProfileURL strips query parameters and fragments and forces an
// absolute https URL, so the same profile always yields the same natural key.
func NormalizeProfileURL(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if !strings.HasPrefix(u, "http") {
		u = "https://www.linkedin.com" + u
	}
	return strings.TrimRight(u, "/")
}

// ValidProfileURL reports whether u points at a LinkedIn member profile.
func ValidProfileURL(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	host := parsed.Hostname()
	if host != "linkedin.com" && host != "www.linkedin.com" {
		return false
	}
	return profilePathRe.MatchString(parsed.EscapedPath())
}
