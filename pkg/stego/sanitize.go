package stego

import (
	"strings"
	"unicode/utf8"
)

// isStrippable reports the control characters removed from outgoing messages.
func isStrippable(r rune) bool {
	switch {
	case r <= 0x08, r == 0x0B, r == 0x0C:
		return true
	case r >= 0x0E && r <= 0x1F, r == 0x7F:
		return true
	}
	return false
}

// Sanitize drops control characters (keeping \t, \n, \r) and trims
// surrounding whitespace.
func Sanitize(message string) string {
	cleaned := strings.Map(func(r rune) rune {
		if isStrippable(r) {
			return -1
		}
		return r
	}, message)
	return strings.TrimSpace(cleaned)
}

// isRejected reports the runes that disqualify a decoded candidate. It is
// wider than isStrippable: C1 controls (0x80-0x9F) are rejected as well.
func isRejected(r rune) bool {
	return isStrippable(r) || (r >= 0x80 && r <= 0x9F)
}

// Printable reports whether a decoded candidate looks like human text: valid
// UTF-8 and no control characters other than tab, newline and carriage return.
func Printable(candidate []byte) bool {
	if !utf8.Valid(candidate) {
		return false
	}
	for _, r := range string(candidate) {
		if isRejected(r) {
			return false
		}
	}
	return true
}
