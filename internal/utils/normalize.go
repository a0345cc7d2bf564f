package utils

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize prepares raw user text for vocabulary matching: trims,
// lowercases, collapses whitespace runs to single spaces and folds
// Arabic-Indic digits to their ASCII equivalents so that numeric
// patterns match regardless of which digit script the user typed.
func Normalize(s string) string {
	s = FoldDigits(s)
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// FoldDigits maps Arabic-Indic (٠-٩) and Extended Arabic-Indic (۰-۹)
// digits to ASCII 0-9. All other runes pass through unchanged.
func FoldDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '٠' && r <= '٩': // ٠-٩
			return '0' + (r - '٠')
		case r >= '۰' && r <= '۹': // ۰-۹
			return '0' + (r - '۰')
		}
		return r
	}, s)
}
