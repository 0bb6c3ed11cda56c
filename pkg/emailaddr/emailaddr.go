// Package emailaddr holds the address-shape rule shared by the registration
// service and the submission client.
package emailaddr

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// local@domain.tld with no whitespace and exactly one "@". RE2's \s is ASCII
// only, so the class also excludes vertical tab, Unicode separators (\p{Z})
// and the byte order mark.
var shapePattern = regexp.MustCompile(`^[^\s\x0B\p{Z}\x{FEFF}@]+@[^\s\x0B\p{Z}\x{FEFF}@]+\.[^\s\x0B\p{Z}\x{FEFF}@]+$`)

// IsValid reports whether s looks like an email address once surrounding
// whitespace is removed. It is a shape check, not a deliverability check.
func IsValid(s string) bool {
	return shapePattern.MatchString(strings.TrimSpace(s))
}

// Normalize trims and lower-cases an address. Uniqueness is decided on the
// normalized form, so both sides of the wire must call it.
func Normalize(s string) string {
	// cases.Caser is stateful; build one per call.
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// Domain returns the part after "@", or "" for malformed input. Used to log
// registrations without the local part.
func Domain(s string) string {
	at := strings.LastIndexByte(s, '@')
	if at < 0 || at == len(s)-1 {
		return ""
	}
	return s[at+1:]
}
