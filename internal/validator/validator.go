// Package validator checks that a translated sentence is in the expected
// target language before it is aligned against its source.
package validator

import (
	"fmt"
	"strings"

	"github.com/valpere/smtalign/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt language detection.
// Shorter texts produce unreliable results and are accepted without validation.
const minValidationLength = 20

// Validator wraps a language detector. Reuse the instance; building the
// detector is expensive.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator whose detector considers only languages, or every
// supported language when fewer than two are given.
func New(languages ...string) *Validator {
	return &Validator{det: detector.New(languages...)}
}

// IsValid returns true when translatedText appears to be written in targetLang.
//
// Short texts and texts whose language cannot be determined pass. When the
// detected language differs from targetLang the returned error names both
// codes.
func (v *Validator) IsValid(translatedText, targetLang string) (bool, error) {
	if targetLang == "" {
		return true, nil
	}

	text := strings.TrimSpace(translatedText)
	if text == "" {
		return false, fmt.Errorf("translation is empty")
	}

	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return true, nil
	}

	if !strings.EqualFold(detected, targetLang) {
		return false, fmt.Errorf("expected %s but detected %s", targetLang, detected)
	}

	return true, nil
}
