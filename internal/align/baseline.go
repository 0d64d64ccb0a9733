package align

import (
	"math"
	"strings"
)

// DefaultLexiconThreshold is the minimum lexicon probability for a
// lexical link.
const DefaultLexiconThreshold = 0.05

// Lexicon maps a (source word, target word) pair to a translation
// probability. Keys are lowercase.
type Lexicon map[[2]string]float64

// LexicalAlign links each source token to the target token with the highest
// lexicon probability, provided it reaches threshold. Ties keep the leftmost
// target.
func LexicalAlign(src, tgt []string, lex Lexicon, threshold float64) []Point {
	points := []Point{}
	for si, s := range src {
		best := -1
		bestScore := 0.0
		sKey := strings.ToLower(s)
		for ti, t := range tgt {
			score := lex[[2]string{sKey, strings.ToLower(t)}]
			if score > bestScore {
				best, bestScore = ti, score
			}
		}
		if best >= 0 && bestScore >= threshold {
			points = append(points, Point{Src: si, Tgt: best})
		}
	}
	return points
}

// PositionalAlign maps source positions onto the target diagonal. It is the
// monotone baseline used when no statistics are available.
func PositionalAlign(src, tgt []string) []Point {
	if len(src) == 0 || len(tgt) == 0 {
		return []Point{}
	}
	if len(src) == 1 {
		return []Point{{Src: 0, Tgt: 0}}
	}
	points := make([]Point, len(src))
	for si := range src {
		ti := int(math.RoundToEven(float64(si*(len(tgt)-1)) / float64(len(src)-1)))
		points[si] = Point{Src: si, Tgt: ti}
	}
	return points
}
