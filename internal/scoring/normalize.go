// Package scoring implements the relevance scorers behind custom feed
// synthesis: a recency-decay time scorer and a multi-strategy keyword
// scorer with exact, phrase-proximity, stemmed and fuzzy matching.
package scoring

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Common English suffixes stripped by the partial-match stemmer,
// longest first so "ation" words lose "tion" before "s" is tried.
var stemSuffixes = []string{"tion", "sion", "ment", "ing", "es", "ed", "ly", "s"}

// normalizeText lowercases, strips diacritics and replaces every
// non-alphanumeric rune with a space so word boundaries survive.
func normalizeText(text string) string {
	text = removeAccents(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// removeAccents strips diacritical marks from a string.
func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// tokenize splits normalized text into word tokens.
func tokenize(text string) []string {
	return strings.Fields(normalizeText(text))
}

// firstSentenceEnd returns the byte offset just past the first
// sentence terminator, or len(text) when the text is one sentence.
func firstSentenceEnd(text string) int {
	if i := strings.IndexAny(text, ".!?"); i >= 0 {
		return i + 1
	}
	return len(text)
}

// stem strips one common suffix from a token. Tokens shorter than four
// runes are returned unchanged to avoid collapsing short words.
func stem(token string) string {
	if len(token) < 4 {
		return token
	}
	for _, suffix := range stemSuffixes {
		if strings.HasSuffix(token, suffix) && len(token)-len(suffix) >= 3 {
			return token[:len(token)-len(suffix)]
		}
	}
	return token
}
