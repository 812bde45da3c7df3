package domain

import (
	"regexp"
	"strings"
	"unicode"
)

// TriedMarker decorates answer options the learner already picked wrongly
const TriedMarker = "❌"

const (
	ReasonNotSingleWord = "single word expected"
	ReasonNotRussian    = "russian letters expected"
	ReasonNotEnglish    = "latin letters expected"
)

var (
	russianTerm = regexp.MustCompile(`^[а-яА-ЯёЁ\-]+$`)
	englishTerm = regexp.MustCompile(`^[A-Za-z\-]+$`)
)

// NormalizeTerm trims the term, drops inner spaces and capitalizes the first letter only
func NormalizeTerm(term string) string {
	term = strings.ReplaceAll(strings.TrimSpace(term), " ", "")
	if term == "" {
		return ""
	}
	runes := []rune(strings.ToLower(term))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ParseRussianTerm validates a single Cyrillic token and returns it normalized
func ParseRussianTerm(input string) (string, error) {
	return parseTerm(input, russianTerm, ReasonNotRussian)
}

// ParseEnglishTerm validates a single Latin token and returns it normalized
func ParseEnglishTerm(input string) (string, error) {
	return parseTerm(input, englishTerm, ReasonNotEnglish)
}

func parseTerm(input string, pattern *regexp.Regexp, reason string) (string, error) {
	fields := strings.Fields(input)
	if len(fields) != 1 {
		return "", &ValidationError{Field: "word", Reason: ReasonNotSingleWord}
	}
	if !pattern.MatchString(fields[0]) {
		return "", &ValidationError{Field: "word", Reason: reason}
	}
	return NormalizeTerm(fields[0]), nil
}

// CleanAnswer strips decoration markers from a submitted answer
func CleanAnswer(answer string) string {
	return strings.TrimSpace(strings.ReplaceAll(answer, TriedMarker, ""))
}

// SameTerm compares two terms case-insensitively, ignoring decoration
func SameTerm(a, b string) bool {
	return strings.EqualFold(CleanAnswer(a), CleanAnswer(b))
}
