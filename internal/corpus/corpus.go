// Package corpus builds phrase tables and lexicons from a parallel corpus by
// frequency counting over positional word mappings.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/valpere/smtalign/internal/align"
)

const DefaultMaxSentences = 2000

var ErrNoPairs = errors.New("no sentence pairs in corpus")

// Pair is one line of a parallel corpus.
type Pair struct {
	Source string
	Target string
}

// PhraseTable maps a space-joined source phrase to its most frequent target
// tokens.
type PhraseTable map[string][]string

// LoadPairs reads a TSV corpus of "source<TAB>target" lines. Blank lines and
// lines starting with '#' are skipped. limit ≤ 0 reads everything.
func LoadPairs(r io.Reader, limit int) ([]Pair, error) {
	var pairs []Pair
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		src, tgt, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("line %d: expected source<TAB>target", lineNo)
		}
		src, tgt = strings.TrimSpace(src), strings.TrimSpace(tgt)
		if src == "" || tgt == "" {
			continue
		}

		pairs = append(pairs, Pair{Source: src, Target: tgt})
		if limit > 0 && len(pairs) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	return pairs, nil
}

// LoadPairsFile opens path and reads it with LoadPairs.
func LoadPairsFile(path string, limit int) ([]Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()
	return LoadPairs(f, limit)
}

// WritePhraseTable writes pt as TSV ordered by phrase length, then tokens.
func WritePhraseTable(w io.Writer, pt PhraseTable) error {
	type entry struct {
		src []string
		tgt []string
	}
	entries := make([]entry, 0, len(pt))
	for k, v := range pt {
		entries = append(entries, entry{src: strings.Fields(k), tgt: v})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if len(a.src) != len(b.src) {
			return len(a.src) - len(b.src)
		}
		return slices.Compare(a.src, b.src)
	})

	bw := bufio.NewWriter(w)
	bw.WriteString("# src_phrase\ttgt_phrase\n")
	for _, e := range entries {
		fmt.Fprintf(bw, "%s\t%s\n", strings.Join(e.src, " "), strings.Join(e.tgt, " "))
	}
	return bw.Flush()
}

// WriteLexicon writes lex as TSV ordered by source word, then descending
// probability, then target word.
func WriteLexicon(w io.Writer, lex align.Lexicon) error {
	keys := make([][2]string, 0, len(lex))
	for k := range lex {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b [2]string) int {
		if c := strings.Compare(a[0], b[0]); c != 0 {
			return c
		}
		if pa, pb := lex[a], lex[b]; pa != pb {
			if pa > pb {
				return -1
			}
			return 1
		}
		return strings.Compare(a[1], b[1])
	})

	bw := bufio.NewWriter(w)
	bw.WriteString("# src_word\ttgt_word\tprobability\n")
	for _, k := range keys {
		fmt.Fprintf(bw, "%s\t%s\t%.6f\n", k[0], k[1], lex[k])
	}
	return bw.Flush()
}

func ReadPhraseTable(r io.Reader) (PhraseTable, error) {
	pt := make(PhraseTable)
	err := readTSV(r, 2, func(fields []string) error {
		src := strings.Join(strings.Fields(fields[0]), " ")
		pt[src] = strings.Fields(fields[1])
		return nil
	})
	return pt, err
}

func ReadLexicon(r io.Reader) (align.Lexicon, error) {
	lex := make(align.Lexicon)
	err := readTSV(r, 3, func(fields []string) error {
		p, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return fmt.Errorf("invalid probability %q", fields[2])
		}
		lex[[2]string{strings.ToLower(fields[0]), strings.ToLower(fields[1])}] = p
		return nil
	})
	return lex, err
}

// LoadLexiconFile reads a lexicon written by WriteLexicon.
func LoadLexiconFile(path string) (align.Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon: %w", err)
	}
	defer f.Close()
	return ReadLexicon(f)
}

// LoadPhraseTableFile reads a phrase table written by WritePhraseTable.
func LoadPhraseTableFile(path string) (PhraseTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open phrase table: %w", err)
	}
	defer f.Close()
	return ReadPhraseTable(f)
}

// Persist writes both artifacts, creating parent directories as needed.
func Persist(phrasePath, lexiconPath string, pt PhraseTable, lex align.Lexicon) error {
	if err := writeFile(phrasePath, func(w io.Writer) error { return WritePhraseTable(w, pt) }); err != nil {
		return fmt.Errorf("failed to write phrase table: %w", err)
	}
	if err := writeFile(lexiconPath, func(w io.Writer) error { return WriteLexicon(w, lex) }); err != nil {
		return fmt.Errorf("failed to write lexicon: %w", err)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readTSV(r io.Reader, minFields int, fn func([]string) error) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < minFields {
			return fmt.Errorf("line %d: expected %d tab-separated fields, got %d", lineNo, minFields, len(fields))
		}
		if err := fn(fields); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}
