// Package tokenize splits text into word tokens.
//
// A token is a maximal run of Unicode letters, Unicode numbers or underscores.
// Everything else (whitespace, punctuation, symbols such as '+' or '#') is a
// separator. The rule is frozen: both the field extractor and the TF-IDF
// analyzer depend on it for reproducible scores.
package tokenize

import (
	"unicode"
	"unicode/utf8"
)

// Words returns every token of s in order of appearance.
func Words(s string) []string {
	return runs(s, 1)
}

// Terms returns the tokens of s that are at least two runes long. This is the
// analyzer used for TF-IDF input.
func Terms(s string) []string {
	return runs(s, 2)
}

// IsWordRune reports whether r can be part of a token.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func runs(s string, minRunes int) []string {
	tokens := make([]string, 0)

	start := -1
	count := 0
	for i, r := range s {
		if IsWordRune(r) {
			if start < 0 {
				start = i
				count = 0
			}
			count++
			continue
		}
		if start >= 0 {
			if count >= minRunes {
				tokens = append(tokens, s[start:i])
			}
			start = -1
		}
	}

	if start >= 0 && count >= minRunes {
		tokens = append(tokens, s[start:])
	}

	return tokens
}

// Count returns the number of tokens Words would return without allocating them.
func Count(s string) int {
	n := 0
	in := false
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if IsWordRune(r) {
			if !in {
				n++
				in = true
			}
			continue
		}
		in = false
	}
	return n
}
