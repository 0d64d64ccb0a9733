// Package segment splits running text into sentences so that each one can
// be translated and aligned on its own. Overlong sentences are cut at word
// boundaries to stay within translation service request limits.
package segment

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultMaxChars keeps a segment within MyMemory's request limit.
const DefaultMaxChars = 500

var reParagraph = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)

// terminators end a sentence when followed by whitespace or end of text.
var terminators = map[rune]bool{
	'.': true, '!': true, '?': true,
	'।': true, '॥': true, // danda, double danda
	'。': true, '！': true, '？': true,
}

// closers may trail a terminator and stay with its sentence.
var closers = map[rune]bool{
	'"': true, '\'': true, ')': true, ']': true, '»': true,
	'”': true, '’': true,
}

// Sentences splits text at paragraph breaks and after sentence-final
// punctuation followed by whitespace. Decimal numbers stay intact;
// abbreviations followed by a space do not.
func Sentences(text string) []string {
	var out []string
	for _, para := range reParagraph.Split(text, -1) {
		runes := []rune(para)
		start := 0
		for i := 0; i < len(runes); i++ {
			if !terminators[runes[i]] {
				continue
			}
			j := i + 1
			for j < len(runes) && closers[runes[j]] {
				j++
			}
			if j < len(runes) && !unicode.IsSpace(runes[j]) {
				continue
			}
			out = appendTrimmed(out, string(runes[start:j]))
			start = j
			i = j - 1
		}
		out = appendTrimmed(out, string(runes[start:]))
	}
	return out
}

// Split returns the sentences of text, cutting any sentence longer than
// maxChars runes at the last whitespace that fits, or hard at maxChars when
// there is none. maxChars ≤ 0 disables cutting.
func Split(text string, maxChars int) []string {
	var out []string
	for _, s := range Sentences(text) {
		out = append(out, cut(s, maxChars)...)
	}
	return out
}

func cut(s string, maxChars int) []string {
	if maxChars <= 0 {
		return []string{s}
	}

	var pieces []string
	runes := []rune(s)
	for len(runes) > maxChars {
		split := maxChars
		for i := maxChars; i > 0; i-- {
			if unicode.IsSpace(runes[i]) {
				split = i
				break
			}
		}
		pieces = appendTrimmed(pieces, string(runes[:split]))
		runes = []rune(strings.TrimLeftFunc(string(runes[split:]), unicode.IsSpace))
	}
	return appendTrimmed(pieces, string(runes))
}

func appendTrimmed(out []string, s string) []string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return out
	}
	return append(out, s)
}
