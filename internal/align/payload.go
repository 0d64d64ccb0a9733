package align

import (
	"fmt"
	"strings"
)

// WordPair is a single alignment link with the words it connects.
type WordPair struct {
	SourceWord  string `json:"source_word"`
	TargetWord  string `json:"target_word"`
	SourceIndex int    `json:"source_index"`
	TargetIndex int    `json:"target_index"`
}

// Grid returns a len(src)×len(tgt) matrix marking aligned cells, for
// visualization. Out-of-range links are ignored.
func Grid(src, tgt []string, points []Point) [][]bool {
	grid := make([][]bool, len(src))
	for si := range grid {
		grid[si] = make([]bool, len(tgt))
	}
	for _, p := range points {
		if InBounds(p, len(src), len(tgt)) {
			grid[p.Src][p.Tgt] = true
		}
	}
	return grid
}

// GizaString renders points as space-separated "src-tgt" entries sorted by
// (src, tgt). The input slice is not modified.
func GizaString(points []Point) string {
	sorted := append([]Point(nil), points...)
	SortPoints(sorted)
	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = fmt.Sprintf("%d-%d", p.Src, p.Tgt)
	}
	return strings.Join(parts, " ")
}

// Pairs materializes the words on both ends of each link, skipping links
// that fall outside either sequence.
func Pairs(src, tgt []string, points []Point) []WordPair {
	pairs := make([]WordPair, 0, len(points))
	for _, p := range points {
		if !InBounds(p, len(src), len(tgt)) {
			continue
		}
		pairs = append(pairs, WordPair{
			SourceWord:  src[p.Src],
			TargetWord:  tgt[p.Tgt],
			SourceIndex: p.Src,
			TargetIndex: p.Tgt,
		})
	}
	return pairs
}

// InBounds reports whether p indexes into sequences of the given lengths.
func InBounds(p Point, nSrc, nTgt int) bool {
	return p.Src >= 0 && p.Src < nSrc && p.Tgt >= 0 && p.Tgt < nTgt
}

// Verify checks the structural invariants of an alignment and its phrase
// pairs: indices in range, no duplicate links, well-formed spans no longer
// than maxLen. A non-nil error signals an internal fault.
func Verify(nSrc, nTgt int, points []Point, pairs []PhrasePair, maxLen int) error {
	if maxLen <= 0 {
		maxLen = DefaultMaxPhraseLen
	}
	seen := make(map[Point]bool, len(points))
	for _, p := range points {
		if !InBounds(p, nSrc, nTgt) {
			return fmt.Errorf("link %d-%d out of range %dx%d", p.Src, p.Tgt, nSrc, nTgt)
		}
		if seen[p] {
			return fmt.Errorf("duplicate link %d-%d", p.Src, p.Tgt)
		}
		seen[p] = true
	}
	for _, pp := range pairs {
		if pp.SrcStart < 0 || pp.SrcStart > pp.SrcEnd || pp.SrcEnd >= nSrc {
			return fmt.Errorf("phrase pair source span %s invalid", pp.SrcSpan())
		}
		if pp.TgtStart < 0 || pp.TgtStart > pp.TgtEnd || pp.TgtEnd >= nTgt {
			return fmt.Errorf("phrase pair target span %s invalid", pp.TgtSpan())
		}
		if pp.SrcLen() > maxLen || pp.TgtLen() > maxLen {
			return fmt.Errorf("phrase pair %s/%s exceeds max length %d", pp.SrcSpan(), pp.TgtSpan(), maxLen)
		}
	}
	return nil
}
