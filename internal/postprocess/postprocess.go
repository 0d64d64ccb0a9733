// Package postprocess tidies a translation service's output before it is
// tokenized and aligned against the source sentence.
//
// Everything it removes would otherwise become target tokens with no
// counterpart in the source: invisible format characters, markup the source
// never had, and quotes wrapped around the whole sentence.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean normalizes translated for alignment against source:
//  1. Invisible format character removal
//  2. Markup removal, unless the source itself contains markup
//  3. Quote wrapping removal, unless the source is wrapped the same way
//  4. Whitespace collapsing
func Clean(source, translated string) string {
	text := removeInvisible(translated)
	if !reTag.MatchString(source) {
		text = reTag.ReplaceAllString(text, " ")
	}
	if !isQuoteWrapped(strings.TrimSpace(source)) {
		text = removeQuoteWrapping(strings.TrimSpace(text))
	}
	return strings.Join(strings.Fields(text), " ")
}

// --- Phase 1: invisible characters ---

// ZWJ and ZWNJ are kept: they select conjunct forms in Indic scripts.
var invisible = strings.NewReplacer(
	"\ufeff", "", // byte order mark
	"\u200b", "", // zero width space
	"\u2060", "", // word joiner
	"\u00ad", "", // soft hyphen
)

func removeInvisible(text string) string {
	return invisible.Replace(text)
}

// --- Phase 2: markup ---

// reTag matches HTML/XML tags: opening, closing and self-closing.
var reTag = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)

// --- Phase 3: quote wrapping ---

// quotePairs lists the supported wrapping pairs:
//
//	"…"  '…'  «…»  “…”  ‘…’
var quotePairs = [][2]rune{
	{'"', '"'},
	{'\'', '\''},
	{'«', '»'},
	{'“', '”'},
	{'‘', '’'},
}

func isQuoteWrapped(text string) bool {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return false
	}
	for _, p := range quotePairs {
		if runes[0] == p[0] && runes[n-1] == p[1] {
			return true
		}
	}
	return false
}

// removeQuoteWrapping strips a matching pair of outer quotes when the entire
// text is wrapped in them.
func removeQuoteWrapping(text string) string {
	if !isQuoteWrapped(text) {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[1 : len(runes)-1]))
}
