// Package detector identifies the language of a sentence with lingua-go.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector restricted to the given ISO 639-1 codes. Unknown
// codes are ignored; with fewer than two usable codes every language is
// loaded. Building is expensive, so callers should keep the instance.
func New(isoCodes ...string) *Detector {
	var codes []lingua.IsoCode639_1
	for _, c := range isoCodes {
		code := lingua.GetIsoCode639_1FromValue(strings.ToLower(strings.TrimSpace(c)))
		if code != lingua.UnknownIsoCode639_1 {
			codes = append(codes, code)
		}
	}

	builder := lingua.NewLanguageDetectorBuilder()
	var detector lingua.LanguageDetector
	if len(codes) >= 2 {
		detector = builder.FromIsoCodes639_1(codes...).Build()
	} else {
		detector = builder.FromAllLanguages().Build()
	}

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lowercase ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
