package corpus

import (
	"context"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/smtalign/internal/align"
	"github.com/valpere/smtalign/internal/logging"
	"github.com/valpere/smtalign/internal/tokenize"
)

// Builder counts word and phrase co-occurrences over positionally mapped
// sentence pairs.
type Builder struct {
	MaxSentences int
	Workers      int
}

func NewBuilder(maxSentences int) *Builder {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	return &Builder{MaxSentences: maxSentences, Workers: runtime.GOMAXPROCS(0)}
}

type tokenized struct {
	src []string
	tgt []string
}

// Build returns the phrase table and lexicon for pairs. Source phrases of two
// and three tokens are kept only when their mapped target span has the same
// length; single words always map to their most frequent target.
func (b *Builder) Build(ctx context.Context, pairs []Pair) (PhraseTable, align.Lexicon, error) {
	if b.MaxSentences > 0 && len(pairs) > b.MaxSentences {
		pairs = pairs[:b.MaxSentences]
	}
	if len(pairs) == 0 {
		return nil, nil, ErrNoPairs
	}

	toks, err := b.tokenizeAll(ctx, pairs)
	if err != nil {
		return nil, nil, err
	}

	words := newTally()
	phrases := newTally()
	skipped := 0

	for _, tp := range toks {
		if len(tp.src) == 0 || len(tp.tgt) == 0 {
			skipped++
			continue
		}

		mapping := make([]int, len(tp.src))
		for _, p := range align.PositionalAlign(tp.src, tp.tgt) {
			mapping[p.Src] = p.Tgt
		}

		for si, s := range tp.src {
			words.add(s, tp.tgt[mapping[si]])
		}

		for n := 2; n <= 3; n++ {
			for i := 0; i+n <= len(tp.src); i++ {
				lo, hi := mapping[i], mapping[i+n-1]
				if lo > hi {
					lo, hi = hi, lo
				}
				if hi-lo+1 != n {
					continue
				}
				phrases.add(strings.Join(tp.src[i:i+n], " "), strings.Join(tp.tgt[lo:hi+1], " "))
			}
		}
	}

	pt := make(PhraseTable)
	for _, src := range phrases.order {
		pt[src] = strings.Fields(phrases.best(src))
	}
	lex := make(align.Lexicon)
	for _, src := range words.order {
		pt[src] = []string{words.best(src)}

		c := words.counts[src]
		total := 0
		for _, n := range c.counts {
			total += n
		}
		for tgt, n := range c.counts {
			lex[[2]string{src, tgt}] = float64(n) / float64(total)
		}
	}

	logging.L().Named("corpus").Info("built corpus artifacts",
		zap.Int("pairs", len(pairs)),
		zap.Int("skipped", skipped),
		zap.Int("phrases", len(pt)),
		zap.Int("lexicon_entries", len(lex)))

	return pt, lex, nil
}

func (b *Builder) tokenizeAll(ctx context.Context, pairs []Pair) ([]tokenized, error) {
	out := make([]tokenized, len(pairs))

	g, ctx := errgroup.WithContext(ctx)
	workers := b.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = tokenized{src: tokenize.Preprocess(p.Source), tgt: tokenize.Preprocess(p.Target)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// tally counts targets per source key and remembers first-seen order so that
// frequency ties resolve to the earliest target.
type tally struct {
	counts map[string]*targetCounts
	order  []string
}

type targetCounts struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(map[string]*targetCounts)}
}

func (t *tally) add(src, tgt string) {
	c, ok := t.counts[src]
	if !ok {
		c = &targetCounts{counts: make(map[string]int)}
		t.counts[src] = c
		t.order = append(t.order, src)
	}
	if _, seen := c.counts[tgt]; !seen {
		c.order = append(c.order, tgt)
	}
	c.counts[tgt]++
}

func (t *tally) best(src string) string {
	c := t.counts[src]
	best, bestN := "", 0
	for _, tgt := range c.order {
		if n := c.counts[tgt]; n > bestN {
			best, bestN = tgt, n
		}
	}
	return best
}
