// Package align implements the statistical alignment core: an EM word
// aligner with punctuation-aware constraints, consistent phrase pair
// extraction and a greedy phrase-based projection of the target sentence.
//
// Every function here is pure. The association table and the link and
// phrase sets are built per call and never shared, so callers may run any
// number of alignments in parallel without locking.
package align

import (
	"math"
	"sort"
)

const (
	// DefaultIterations is the number of EM refinement rounds.
	DefaultIterations = 8

	// NearTieRatio is the minimum score ratio to the best candidate for an
	// additional one-to-many link.
	NearTieRatio = 0.92

	// PunctMatchBoost multiplies the initial score of two identical
	// punctuation tokens.
	PunctMatchBoost = 4.0

	// PunctMismatchPenalty multiplies the initial score when only one side
	// is punctuation, or both are but differ.
	PunctMismatchPenalty = 0.05

	// PositionDecay controls how fast the positional prior falls off the
	// diagonal.
	PositionDecay = 8.0

	// PriorFloor is added to the positional prior so distant pairs keep
	// some initial mass.
	PriorFloor = 0.15

	// ScoreFloor is the smallest score the M-step may produce.
	ScoreFloor = 1e-12
)

// Point is a single alignment link between a source and a target position.
type Point struct {
	Src int `json:"src_index"`
	Tgt int `json:"tgt_index"`
}

// Options tunes the EM aligner. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	Iterations           int
	NearTieRatio         float64
	PunctMatchBoost      float64
	PunctMismatchPenalty float64
}

// DefaultOptions returns the empirically chosen aligner settings.
func DefaultOptions() Options {
	return Options{
		Iterations:           DefaultIterations,
		NearTieRatio:         NearTieRatio,
		PunctMatchBoost:      PunctMatchBoost,
		PunctMismatchPenalty: PunctMismatchPenalty,
	}
}

// Option overrides a single aligner setting.
type Option func(*Options)

// WithIterations sets the number of EM rounds. Negative values are treated
// as zero (initial scores only).
func WithIterations(n int) Option {
	return func(o *Options) {
		if n < 0 {
			n = 0
		}
		o.Iterations = n
	}
}

// WithNearTieRatio sets the one-to-many threshold.
func WithNearTieRatio(r float64) Option {
	return func(o *Options) { o.NearTieRatio = r }
}

// WithPunctWeights sets the punctuation match and mismatch multipliers.
func WithPunctWeights(match, mismatch float64) Option {
	return func(o *Options) {
		o.PunctMatchBoost = match
		o.PunctMismatchPenalty = mismatch
	}
}

// table is the dense source×target association grid.
type table struct {
	nSrc, nTgt int
	cells      []float64
}

func newTable(nSrc, nTgt int) *table {
	return &table{nSrc: nSrc, nTgt: nTgt, cells: make([]float64, nSrc*nTgt)}
}

func (t *table) at(si, ti int) float64     { return t.cells[si*t.nTgt+ti] }
func (t *table) set(si, ti int, v float64) { t.cells[si*t.nTgt+ti] = v }
func (t *table) add(si, ti int, v float64) { t.cells[si*t.nTgt+ti] += v }

// Align computes a word alignment between src and tgt. The result has no
// duplicate links and is sorted by (Src, Tgt). Identical inputs always give
// identical output.
func Align(src, tgt []string, opts ...Option) []Point {
	if len(src) == 0 || len(tgt) == 0 {
		return []Point{}
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	srcPunct := punctFlags(src)
	tgtPunct := punctFlags(tgt)

	scores := initialScores(src, tgt, srcPunct, tgtPunct, o)
	for it := 0; it < o.Iterations; it++ {
		scores = refine(scores)
	}

	links := make(map[Point]struct{})
	decode(scores, srcPunct, tgtPunct, o.NearTieRatio, links)
	repairPunct(src, tgt, srcPunct, tgtPunct, links)

	return sortedPoints(links)
}

func punctFlags(tokens []string) []bool {
	flags := make([]bool, len(tokens))
	for i, tok := range tokens {
		flags[i] = IsPunct(tok)
	}
	return flags
}

func initialScores(src, tgt []string, srcPunct, tgtPunct []bool, o Options) *table {
	nSrc, nTgt := len(src), len(tgt)
	t := newTable(nSrc, nTgt)
	for si := 0; si < nSrc; si++ {
		posSrc := float64(si+1) / float64(nSrc+1)
		for ti := 0; ti < nTgt; ti++ {
			posTgt := float64(ti+1) / float64(nTgt+1)
			prior := math.Exp(-PositionDecay * math.Abs(posSrc-posTgt))

			mult := 1.0
			switch {
			case srcPunct[si] && tgtPunct[ti] && src[si] == tgt[ti]:
				mult = o.PunctMatchBoost
			case srcPunct[si] || tgtPunct[ti]:
				mult = o.PunctMismatchPenalty
			}
			t.set(si, ti, (PriorFloor+prior)*mult)
		}
	}
	return t
}

// refine runs one E-step and the agreement-style M-step. The returned table
// holds relative strengths, not a normalized distribution.
func refine(scores *table) *table {
	nSrc, nTgt := scores.nSrc, scores.nTgt
	counts := newTable(nSrc, nTgt)
	totalSrc := make([]float64, nSrc)
	totalTgt := make([]float64, nTgt)

	for ti := 0; ti < nTgt; ti++ {
		z := 0.0
		for si := 0; si < nSrc; si++ {
			z += scores.at(si, ti)
		}
		for si := 0; si < nSrc; si++ {
			post := 0.0
			if z > 0 {
				post = scores.at(si, ti) / z
			}
			counts.add(si, ti, post)
			totalSrc[si] += post
			totalTgt[ti] += post
		}
	}

	next := newTable(nSrc, nTgt)
	for si := 0; si < nSrc; si++ {
		for ti := 0; ti < nTgt; ti++ {
			c := counts.at(si, ti)
			var fwd, bwd float64
			if totalSrc[si] > 0 {
				fwd = c / totalSrc[si]
			}
			if totalTgt[ti] > 0 {
				bwd = c / totalTgt[ti]
			}
			next.set(si, ti, math.Max(ScoreFloor, fwd*bwd))
		}
	}
	return next
}

// decode links every source position to its best candidate target and to
// any near-tied candidates. Punctuation only competes with punctuation.
func decode(scores *table, srcPunct, tgtPunct []bool, nearTie float64, links map[Point]struct{}) {
	for si := 0; si < scores.nSrc; si++ {
		best := -1
		for ti := 0; ti < scores.nTgt; ti++ {
			if tgtPunct[ti] != srcPunct[si] {
				continue
			}
			if best < 0 || scores.at(si, ti) > scores.at(si, best) {
				best = ti
			}
		}
		if best < 0 {
			continue
		}
		links[Point{Src: si, Tgt: best}] = struct{}{}

		bestScore := scores.at(si, best)
		for ti := 0; ti < scores.nTgt; ti++ {
			if ti == best || tgtPunct[ti] != srcPunct[si] {
				continue
			}
			if scores.at(si, ti)/bestScore >= nearTie {
				links[Point{Src: si, Tgt: ti}] = struct{}{}
			}
		}
	}
}

// repairPunct links a source punctuation token to the nearest unused
// identical target token when decoding left it without an exact match.
func repairPunct(src, tgt []string, srcPunct, tgtPunct []bool, links map[Point]struct{}) {
	used := make(map[int]bool, len(links))
	for p := range links {
		used[p.Tgt] = true
	}

	for si, tok := range src {
		if !srcPunct[si] || hasExactLink(si, tok, tgt, links) {
			continue
		}
		best := -1
		for ti, t := range tgt {
			if !tgtPunct[ti] || used[ti] || t != tok {
				continue
			}
			if best < 0 || absInt(ti-si) < absInt(best-si) {
				best = ti
			}
		}
		if best >= 0 {
			links[Point{Src: si, Tgt: best}] = struct{}{}
			used[best] = true
		}
	}
}

func hasExactLink(si int, tok string, tgt []string, links map[Point]struct{}) bool {
	for ti, t := range tgt {
		if t != tok {
			continue
		}
		if _, ok := links[Point{Src: si, Tgt: ti}]; ok {
			return true
		}
	}
	return false
}

func sortedPoints(links map[Point]struct{}) []Point {
	points := make([]Point, 0, len(links))
	for p := range links {
		points = append(points, p)
	}
	SortPoints(points)
	return points
}

// SortPoints orders links by (Src, Tgt) in place.
func SortPoints(points []Point) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].Src != points[j].Src {
			return points[i].Src < points[j].Src
		}
		return points[i].Tgt < points[j].Tgt
	})
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
