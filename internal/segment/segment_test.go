package segment_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/valpere/smtalign/internal/segment"
)

func TestSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "   ", nil},
		{"single", "Hello world!", []string{"Hello world!"}},
		{"two sentences", "Hello world. How are you?", []string{"Hello world.", "How are you?"}},
		{"danda", "मैं चावल खाता हूँ। वह पानी पीता है।", []string{"मैं चावल खाता हूँ।", "वह पानी पीता है।"}},
		{"decimal", "Pi is 3.14 roughly. Yes.", []string{"Pi is 3.14 roughly.", "Yes."}},
		{"closing quote", `He said "stop." Then he left.`, []string{`He said "stop."`, "Then he left."}},
		{"repeated punctuation", "Really?! Yes.", []string{"Really?!", "Yes."}},
		{"paragraphs", "First line\nwraps here\n\nSecond paragraph", []string{"First line wraps here", "Second paragraph"}},
		{"no terminator", "no punctuation at all", []string{"no punctuation at all"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := segment.Sentences(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sentences(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSplit_CutsLongSentences(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	pieces := segment.Split(text, 20)
	if len(pieces) < 2 {
		t.Fatalf("expected ≥2 pieces, got %d", len(pieces))
	}
	for i, p := range pieces {
		if n := len([]rune(p)); n > 20 {
			t.Errorf("piece %d has %d runes: %q", i, n, p)
		}
	}
	if got := strings.Join(pieces, " "); got != text {
		t.Errorf("words lost after split: %q", got)
	}
}

func TestSplit_HardCut(t *testing.T) {
	text := strings.Repeat("a", 25)
	pieces := segment.Split(text, 10)
	want := []string{strings.Repeat("a", 10), strings.Repeat("a", 10), strings.Repeat("a", 5)}
	if !reflect.DeepEqual(pieces, want) {
		t.Errorf("Split = %q, want %q", pieces, want)
	}
}

func TestSplit_Unlimited(t *testing.T) {
	text := strings.Repeat("word ", 500)
	if pieces := segment.Split(text, 0); len(pieces) != 1 {
		t.Errorf("expected 1 piece when maxChars=0, got %d", len(pieces))
	}
}

func TestSplit_MultibyteRunes(t *testing.T) {
	text := "नमस्ते दुनिया नमस्ते दुनिया"
	for _, p := range segment.Split(text, 14) {
		if n := len([]rune(p)); n > 14 {
			t.Errorf("piece %q exceeds 14 runes", p)
		}
	}
}
