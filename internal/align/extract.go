package align

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultMaxPhraseLen bounds both sides of an extracted phrase pair.
const DefaultMaxPhraseLen = 4

// PhrasePair is a contiguous source span and target span, both inclusive,
// that are consistent with an alignment.
type PhrasePair struct {
	SrcStart  int
	SrcEnd    int
	TgtStart  int
	TgtEnd    int
	SrcPhrase string
	TgtPhrase string
}

// SrcLen returns the number of source tokens covered.
func (p PhrasePair) SrcLen() int { return p.SrcEnd - p.SrcStart + 1 }

// TgtLen returns the number of target tokens covered.
func (p PhrasePair) TgtLen() int { return p.TgtEnd - p.TgtStart + 1 }

// SrcSpan renders the source span as "start-end".
func (p PhrasePair) SrcSpan() string { return fmt.Sprintf("%d-%d", p.SrcStart, p.SrcEnd) }

// TgtSpan renders the target span as "start-end".
func (p PhrasePair) TgtSpan() string { return fmt.Sprintf("%d-%d", p.TgtStart, p.TgtEnd) }

func (p PhrasePair) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SourcePhrase string `json:"source_phrase"`
		TargetPhrase string `json:"target_phrase"`
		SourceSpan   string `json:"source_span"`
		TargetSpan   string `json:"target_span"`
		SourceStart  int    `json:"source_start"`
		SourceEnd    int    `json:"source_end"`
		TargetStart  int    `json:"target_start"`
		TargetEnd    int    `json:"target_end"`
	}{
		SourcePhrase: p.SrcPhrase,
		TargetPhrase: p.TgtPhrase,
		SourceSpan:   p.SrcSpan(),
		TargetSpan:   p.TgtSpan(),
		SourceStart:  p.SrcStart,
		SourceEnd:    p.SrcEnd,
		TargetStart:  p.TgtStart,
		TargetEnd:    p.TgtEnd,
	})
}

type spanKey [4]int

// Extract returns every phrase pair consistent with alignment whose spans
// are at most maxLen tokens long. maxLen ≤ 0 selects DefaultMaxPhraseLen.
// Pairs overlap and nest freely; the result is ordered by source span.
func Extract(src, tgt []string, alignment []Point, maxLen int) []PhrasePair {
	if len(src) == 0 || len(tgt) == 0 || len(alignment) == 0 {
		return []PhrasePair{}
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxPhraseLen
	}

	srcToTgt := make(map[int][]int)
	tgtToSrc := make(map[int][]int)
	for _, p := range alignment {
		srcToTgt[p.Src] = append(srcToTgt[p.Src], p.Tgt)
		tgtToSrc[p.Tgt] = append(tgtToSrc[p.Tgt], p.Src)
	}

	seen := make(map[spanKey]bool)
	pairs := []PhrasePair{}

	for sStart := 0; sStart < len(src); sStart++ {
		for sEnd := sStart; sEnd < len(src) && sEnd-sStart < maxLen; sEnd++ {
			tStart, tEnd, ok := targetSpan(srcToTgt, sStart, sEnd)
			if !ok {
				continue
			}
			if !consistent(tgtToSrc, sStart, sEnd, tStart, tEnd) {
				continue
			}
			if tEnd-tStart+1 > maxLen {
				continue
			}
			key := spanKey{sStart, sEnd, tStart, tEnd}
			if seen[key] {
				continue
			}
			seen[key] = true
			pairs = append(pairs, PhrasePair{
				SrcStart:  sStart,
				SrcEnd:    sEnd,
				TgtStart:  tStart,
				TgtEnd:    tEnd,
				SrcPhrase: strings.Join(src[sStart:sEnd+1], " "),
				TgtPhrase: strings.Join(tgt[tStart:tEnd+1], " "),
			})
		}
	}

	return pairs
}

// targetSpan returns the [min, max] of target indices aligned from any
// source index in [sStart, sEnd].
func targetSpan(srcToTgt map[int][]int, sStart, sEnd int) (int, int, bool) {
	lo, hi := -1, -1
	for si := sStart; si <= sEnd; si++ {
		for _, ti := range srcToTgt[si] {
			if lo < 0 || ti < lo {
				lo = ti
			}
			if ti > hi {
				hi = ti
			}
		}
	}
	return lo, hi, lo >= 0
}

// consistent reports whether no target index inside [tStart, tEnd] is
// aligned to a source index outside [sStart, sEnd].
func consistent(tgtToSrc map[int][]int, sStart, sEnd, tStart, tEnd int) bool {
	for ti := tStart; ti <= tEnd; ti++ {
		for _, si := range tgtToSrc[ti] {
			if si < sStart || si > sEnd {
				return false
			}
		}
	}
	return true
}
