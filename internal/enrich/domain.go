package enrich

import (
	"net/url"
	"strings"
)

// SocialPlatforms is the default substring blocklist. Matching is on
// substring, not exact host, so embedded paths like facebook.com/acme are
// still caught.
var SocialPlatforms = []string{
	"facebook.com",
	"linkedin.com",
	"twitter.com",
	"instagram.com",
	"youtube.com",
}

// Blocklist matches raw domain strings against lowercase substrings.
type Blocklist struct {
	substrings []string
}

// NewBlocklist builds a Blocklist from the given patterns, falling back to
// SocialPlatforms when none are provided.
func NewBlocklist(patterns []string) *Blocklist {
	if len(patterns) == 0 {
		patterns = SocialPlatforms
	}
	b := &Blocklist{}
	for _, raw := range patterns {
		value := strings.TrimSpace(strings.ToLower(raw))
		if value == "" {
			continue
		}
		b.substrings = append(b.substrings, value)
	}
	return b
}

// Matches reports whether raw contains any blocked substring, case-insensitively.
func (b *Blocklist) Matches(raw string) bool {
	if b == nil {
		return false
	}
	lowered := strings.ToLower(raw)
	for _, sub := range b.substrings {
		if strings.Contains(lowered, sub) {
			return true
		}
	}
	return false
}

// ClassifyDomain buckets a raw input string. The social check runs first
// and fails open: anything matching the blocklist is Social even if its
// syntax is otherwise broken. Classification happens once per row and is
// never revisited.
func ClassifyDomain(raw string, blocklist *Blocklist) DomainClass {
	trimmed := strings.TrimSpace(raw)
	if blocklist.Matches(trimmed) {
		return ClassSocial
	}
	if !validDomainSyntax(trimmed) {
		return ClassInvalid
	}
	return ClassCandidate
}

// NormalizeURL derives the request URL for a raw domain, prepending http://
// when no scheme is present. The raw value itself is never mutated; output
// rows are keyed on it as given.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	return "http://" + trimmed
}

func validDomainSyntax(raw string) bool {
	if raw == "" {
		return false
	}
	if strings.ContainsAny(raw, " \t\r\n") {
		return false
	}
	// A scheme separator anywhere but a single leading http(s):// means the
	// value is not a domain.
	if strings.Count(raw, "://") > 1 {
		return false
	}
	if strings.Contains(raw, "://") &&
		!strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return false
	}
	u, err := url.Parse(NormalizeURL(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	if host == "" || !strings.Contains(host, ".") {
		return false
	}
	if strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return false
	}
	return true
}
