package utils

import (
	"strings"
	"unicode"
)

// TrimOrEmpty normalizes user input without turning nil into "nil".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizePlate upper-cases a license plate and drops spaces, dashes and dots
// so "abc-123" and "ABC 123" compare equal.
func NormalizePlate(raw string) string {
	var out strings.Builder
	for _, r := range raw {
		if unicode.IsSpace(r) || r == '-' || r == '.' {
			continue
		}
		out.WriteRune(unicode.ToUpper(r))
	}
	return out.String()
}

// AccountName maps a platform identity to its ledger account name.
func AccountName(pid string) string {
	return strings.ToLower(strings.TrimSpace(pid))
}
