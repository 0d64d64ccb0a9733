package align

import "unicode"

// IsPunct reports whether token consists solely of punctuation or symbol
// runes. The underscore counts as a word character, mirroring the tokenizer.
func IsPunct(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if r == '_' {
			return false
		}
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}
