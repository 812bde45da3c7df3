package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTerm(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercase russian", input: "мир", expected: "Мир"},
		{name: "uppercase english", input: "PEACE", expected: "Peace"},
		{name: "surrounding spaces", input: "  world ", expected: "World"},
		{name: "inner spaces removed", input: "ice cream", expected: "Icecream"},
		{name: "hyphenated", input: "как-то", expected: "Как-то"},
		{name: "empty", input: "   ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTerm(tt.input))
		})
	}
}

func TestParseRussianTerm(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expected       string
		expectedReason string
	}{
		{name: "valid word", input: "солнце", expected: "Солнце"},
		{name: "with yo", input: "ёж", expected: "Ёж"},
		{name: "hyphen", input: "кто-то", expected: "Кто-то"},
		{name: "two words", input: "добрый день", expectedReason: ReasonNotSingleWord},
		{name: "empty", input: "", expectedReason: ReasonNotSingleWord},
		{name: "latin letters", input: "sun", expectedReason: ReasonNotRussian},
		{name: "digits", input: "мир1", expectedReason: ReasonNotRussian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, err := ParseRussianTerm(tt.input)
			if tt.expectedReason != "" {
				var ve *ValidationError
				assert.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.expectedReason, ve.Reason)
				assert.Empty(t, term)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, term)
		})
	}
}

func TestParseEnglishTerm(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expected       string
		expectedReason string
	}{
		{name: "valid word", input: "globe", expected: "Globe"},
		{name: "trimmed", input: "  WORLD  ", expected: "World"},
		{name: "hyphen", input: "well-known", expected: "Well-known"},
		{name: "two words", input: "ice cream", expectedReason: ReasonNotSingleWord},
		{name: "cyrillic", input: "мир", expectedReason: ReasonNotEnglish},
		{name: "apostrophe", input: "don't", expectedReason: ReasonNotEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, err := ParseEnglishTerm(tt.input)
			if tt.expectedReason != "" {
				var ve *ValidationError
				assert.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.expectedReason, ve.Reason)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, term)
		})
	}
}

func TestSameTerm(t *testing.T) {
	assert.True(t, SameTerm("Peace", "peace"))
	assert.True(t, SameTerm("Peace ❌", "Peace"))
	assert.True(t, SameTerm(" PEACE", "Peace❌"))
	assert.False(t, SameTerm("Peace", "World"))
}
