package handler

import (
	"strings"
	"unicode"
)

// cleanText removes all non-printable characters from incoming text
func cleanText(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(text))
}
