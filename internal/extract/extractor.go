// Package extract pulls contact details out of fetched page content. It
// performs no network I/O; bodies arrive from the fetch layer.
package extract

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/leadforge/contact-enricher/internal/enrich"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z0-9]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s\-()]{7,}\d`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// ContactExtractor implements enrich.Extractor using goquery.
type ContactExtractor struct{}

// New constructs a ContactExtractor.
func New() *ContactExtractor {
	return &ContactExtractor{}
}

// Extract scans the whole visible text for emails and only the
// header/footer landmark regions for phones. Body text carries far more
// phone-shaped noise (IDs, prices, dates) than it does email-shaped noise,
// so the two scans have different scopes. An unparseable document yields
// empty sets; the Error sentinel belongs to the fetch layer.
func (e *ContactExtractor) Extract(body []byte) enrich.ContactSet {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return enrich.ContactSet{}
	}
	doc.Find("script, style, noscript").Remove()

	visible := whitespace.ReplaceAllString(doc.Text(), " ")
	emails := dedupe(emailPattern.FindAllString(visible, -1))

	var phones []string
	seen := make(map[string]struct{})
	doc.Find("header, footer").Each(func(_ int, section *goquery.Selection) {
		text := whitespace.ReplaceAllString(section.Text(), " ")
		for _, match := range phonePattern.FindAllString(text, -1) {
			candidate := strings.TrimSpace(match)
			if !enrich.IsPlausiblePhone(candidate) || !enrich.IsValidUKPhone(candidate) {
				continue
			}
			if _, dup := seen[candidate]; dup {
				continue
			}
			seen[candidate] = struct{}{}
			phones = append(phones, candidate)
		}
	})
	// Sorted so set iteration order never leaks into the output.
	sort.Strings(phones)

	return enrich.ContactSet{Emails: emails, Phones: phones}
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
