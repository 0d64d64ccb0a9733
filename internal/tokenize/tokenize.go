// Package tokenize splits sentences into word and punctuation tokens for
// alignment, and joins tokens back into readable text.
package tokenize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// A token is either a run of word characters (letters, combining marks,
// digits, underscore, ZWNJ, ZWJ) or a single other non-space rune. Marks and
// joiners are part of words so that Indic vowel signs and conjuncts stay
// attached to their consonants.
var reToken = regexp.MustCompile(`[\p{L}\p{M}\p{N}_\x{200C}\x{200D}]+|[^\p{L}\p{M}\p{N}_\x{200C}\x{200D}\s]`)

var (
	noSpaceBefore = map[string]bool{".": true, ",": true, "!": true, "?": true, ":": true, ";": true, ")": true, "]": true, "}": true}
	noSpaceAfter  = map[string]bool{"(": true, "[": true, "{": true}
)

// Tokenize splits text into word and punctuation tokens.
func Tokenize(text string) []string {
	tokens := reToken.FindAllString(strings.TrimSpace(text), -1)
	if tokens == nil {
		return []string{}
	}
	return tokens
}

// Preprocess normalizes text to NFC, lowercases it and tokenizes the result.
// Both sides of a sentence pair go through Preprocess before alignment.
func Preprocess(text string) []string {
	lower := cases.Lower(language.Und).String(norm.NFC.String(text))
	return Tokenize(lower)
}

// Detokenize joins tokens with spaces, attaching closing punctuation to the
// previous token and opening brackets to the next one.
func Detokenize(tokens []string) string {
	var b strings.Builder
	prev := ""
	for i, tok := range tokens {
		if i > 0 && !noSpaceBefore[tok] && !noSpaceAfter[prev] {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
		prev = tok
	}
	return b.String()
}
