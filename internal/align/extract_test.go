package align

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestExtract_WordAndPunct(t *testing.T) {
	src := []string{"a", "."}
	tgt := []string{"b", "."}

	got := Extract(src, tgt, Align(src, tgt), DefaultMaxPhraseLen)
	want := []PhrasePair{
		{SrcStart: 0, SrcEnd: 0, TgtStart: 0, TgtEnd: 0, SrcPhrase: "a", TgtPhrase: "b"},
		{SrcStart: 0, SrcEnd: 1, TgtStart: 0, TgtEnd: 1, SrcPhrase: "a .", TgtPhrase: "b ."},
		{SrcStart: 1, SrcEnd: 1, TgtStart: 1, TgtEnd: 1, SrcPhrase: ".", TgtPhrase: "."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %+v, want %+v", got, want)
	}
}

func TestExtract_EmptyInputs(t *testing.T) {
	src := []string{"a"}
	tgt := []string{"b"}
	links := []Point{{0, 0}}

	tests := []struct {
		name  string
		src   []string
		tgt   []string
		links []Point
	}{
		{"empty source", nil, tgt, links},
		{"empty target", src, nil, links},
		{"empty alignment", src, tgt, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.src, tt.tgt, tt.links, 4); len(got) != 0 {
				t.Errorf("expected no pairs, got %v", got)
			}
		})
	}
}

func TestExtract_RejectsInconsistentSpans(t *testing.T) {
	src := []string{"a", "b", "c"}
	tgt := []string{"x", "y"}
	links := []Point{{0, 0}, {1, 1}, {2, 0}}

	got := Extract(src, tgt, links, 4)
	want := []PhrasePair{
		{SrcStart: 0, SrcEnd: 2, TgtStart: 0, TgtEnd: 1, SrcPhrase: "a b c", TgtPhrase: "x y"},
		{SrcStart: 1, SrcEnd: 1, TgtStart: 1, TgtEnd: 1, SrcPhrase: "b", TgtPhrase: "y"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %+v, want %+v", got, want)
	}
}

func TestExtract_MaxLen(t *testing.T) {
	src := strings.Fields("a b c d e")
	tgt := strings.Fields("v w x y z")
	links := PositionalAlign(src, tgt)

	got := Extract(src, tgt, links, 2)
	// 5 single-token pairs plus 4 adjacent bigrams.
	if len(got) != 9 {
		t.Fatalf("expected 9 pairs, got %d: %+v", len(got), got)
	}
	for _, p := range got {
		if p.SrcLen() > 2 || p.TgtLen() > 2 {
			t.Errorf("pair %s/%s exceeds max length", p.SrcSpan(), p.TgtSpan())
		}
	}
}

func TestExtract_TargetSpanTooLong(t *testing.T) {
	// One source word fanning out to three targets cannot fit maxLen=2.
	src := []string{"a"}
	tgt := []string{"x", "y", "z"}
	links := []Point{{0, 0}, {0, 2}}

	if got := Extract(src, tgt, links, 2); len(got) != 0 {
		t.Errorf("expected no pairs, got %+v", got)
	}
}

func TestExtract_Consistency(t *testing.T) {
	for _, tt := range alignmentCases {
		t.Run(tt.name, func(t *testing.T) {
			links := Align(tt.src, tt.tgt)
			tgtToSrc := make(map[int][]int)
			for _, p := range links {
				tgtToSrc[p.Tgt] = append(tgtToSrc[p.Tgt], p.Src)
			}

			pairs := Extract(tt.src, tt.tgt, links, DefaultMaxPhraseLen)
			seen := make(map[spanKey]bool)
			for _, pp := range pairs {
				key := spanKey{pp.SrcStart, pp.SrcEnd, pp.TgtStart, pp.TgtEnd}
				if seen[key] {
					t.Errorf("duplicate pair %v", key)
				}
				seen[key] = true

				for ti := pp.TgtStart; ti <= pp.TgtEnd; ti++ {
					for _, si := range tgtToSrc[ti] {
						if si < pp.SrcStart || si > pp.SrcEnd {
							t.Errorf("pair %s/%s leaks source %d via target %d", pp.SrcSpan(), pp.TgtSpan(), si, ti)
						}
					}
				}
			}

			if err := Verify(len(tt.src), len(tt.tgt), links, pairs, DefaultMaxPhraseLen); err != nil {
				t.Errorf("Verify: %v", err)
			}
		})
	}
}

func TestPhrasePair_JSON(t *testing.T) {
	p := PhrasePair{SrcStart: 1, SrcEnd: 2, TgtStart: 0, TgtEnd: 0, SrcPhrase: "good morning", TgtPhrase: "suprabhat"}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got["source_span"] != "1-2" {
		t.Errorf("expected source_span 1-2, got %v", got["source_span"])
	}
	if got["target_span"] != "0-0" {
		t.Errorf("expected target_span 0-0, got %v", got["target_span"])
	}
	if got["source_phrase"] != "good morning" {
		t.Errorf("unexpected source_phrase %v", got["source_phrase"])
	}
}
