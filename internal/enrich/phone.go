package enrich

import (
	"regexp"
	"strings"
)

var (
	nonDigitPattern = regexp.MustCompile(`\D`)
	// Date shapes that also pass the digit-count check; page text is full
	// of these and they are never phone numbers.
	isoDatePattern = regexp.MustCompile(`^\d{4}[-/]\d{1,2}[-/]\d{1,2}`)
	dmyDatePattern = regexp.MustCompile(`^\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`)
)

// IsValidUKPhone reports whether the candidate normalizes to a valid UK
// number: strip separators, rewrite a leading 44 country code to 0, then
// require an 01/02/07 prefix and exactly 11 digits.
func IsValidUKPhone(candidate string) bool {
	digits := nonDigitPattern.ReplaceAllString(candidate, "")
	if strings.HasPrefix(digits, "44") {
		digits = "0" + digits[2:]
	}
	if !strings.HasPrefix(digits, "0") {
		return false
	}
	if !strings.HasPrefix(digits, "01") &&
		!strings.HasPrefix(digits, "02") &&
		!strings.HasPrefix(digits, "07") {
		return false
	}
	return len(digits) == 11
}

// IsPlausiblePhone pre-filters candidates before UK validation: at least 8
// digits after stripping separators, and not shaped like a date.
func IsPlausiblePhone(candidate string) bool {
	digits := nonDigitPattern.ReplaceAllString(candidate, "")
	if len(digits) < 8 {
		return false
	}
	if isoDatePattern.MatchString(candidate) || dmyDatePattern.MatchString(candidate) {
		return false
	}
	return true
}
