package validation

import (
	"strings"
	"unicode"
)

// NormalizePlate canonicalizes a license plate: trimmed, spaces removed,
// uppercased. "34 abc 123" and "34ABC123" refer to the same vehicle.
func NormalizePlate(plate string) string {
	plate = strings.TrimSpace(plate)
	plate = strings.ReplaceAll(plate, " ", "")
	return strings.ToUpper(plate)
}

// NormalizeName trims a free-text name and collapses internal runs of
// whitespace to a single space.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripUnprintable removes non-printable characters, allowing common whitespace
// like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
