package utils

import (
	"regexp"
	"strings"
)

var (
	// HS codes as used on sales tax invoices: 4 to 8 digits, with an
	// optional dot after the heading (e.g. "8471", "8471.3010").
	hsCodePattern = regexp.MustCompile(`^\d{4}(\.\d{2,4})?$|^\d{4,8}$`)

	// National Tax Number: seven digits plus a single check digit.
	ntnPattern = regexp.MustCompile(`^\d{7}-?\d$`)
)

// ValidHSCode reports whether s looks like a Pakistan Customs Tariff
// HS code. Surrounding whitespace is ignored.
func ValidHSCode(s string) bool {
	return hsCodePattern.MatchString(strings.TrimSpace(s))
}

// ValidNTN reports whether s is a well-formed National Tax Number.
func ValidNTN(s string) bool {
	return ntnPattern.MatchString(strings.TrimSpace(s))
}

// NormalizeHSCode trims whitespace from an HS code before storage so
// lookups by code are exact.
func NormalizeHSCode(s string) string {
	return strings.TrimSpace(s)
}
