package align

import (
	"sort"
	"strings"
)

// Project renders the target sentence segmented by phrase pairs. It walks
// the source left to right, taking the longest phrase pair that starts at
// the current position (leftmost target on ties) and falling back to the
// raw alignment links where no pair starts. The walk is greedy and never
// backtracks.
func Project(src, tgt []string, alignment []Point, pairs []PhrasePair) string {
	if len(src) == 0 || len(tgt) == 0 {
		return ""
	}

	byStart := make(map[int][]PhrasePair)
	for _, p := range pairs {
		byStart[p.SrcStart] = append(byStart[p.SrcStart], p)
	}
	for start := range byStart {
		group := byStart[start]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].SrcLen() != group[j].SrcLen() {
				return group[i].SrcLen() > group[j].SrcLen()
			}
			return group[i].TgtStart < group[j].TgtStart
		})
	}

	linksBySrc := make(map[int][]int)
	for _, p := range alignment {
		linksBySrc[p.Src] = append(linksBySrc[p.Src], p.Tgt)
	}

	var out []string
	for i := 0; i < len(src); {
		if p, ok := firstReaching(byStart[i], len(src)); ok {
			out = append(out, tgt[p.TgtStart:p.TgtEnd+1]...)
			i = p.SrcEnd + 1
			continue
		}
		targets := append([]int(nil), linksBySrc[i]...)
		sort.Ints(targets)
		for _, ti := range targets {
			out = append(out, tgt[ti])
		}
		i++
	}

	return strings.Join(collapseRepeats(out), " ")
}

// firstReaching returns the first pair in group whose end lies inside the
// source sentence. Valid pairs always satisfy the check.
func firstReaching(group []PhrasePair, srcLen int) (PhrasePair, bool) {
	for _, p := range group {
		if p.SrcEnd < srcLen {
			return p, true
		}
	}
	return PhrasePair{}, false
}

func collapseRepeats(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(out) > 0 && out[len(out)-1] == tok {
			continue
		}
		out = append(out, tok)
	}
	return out
}
