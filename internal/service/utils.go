package service

import (
	"strings"
	"unicode"
)

// sanitizeText drops invalid UTF-8 and control characters other than newline and tab. PDF text
// layers carry NULs and form feeds that PostgreSQL TEXT columns reject or that break line parsing.
func sanitizeText(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
