/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/smtalign/internal/engine"
	"github.com/valpere/smtalign/internal/segment"
)

var (
	translateInput    string
	translateOutput   string
	translateTarget   string
	translateServices []string
	translateJSON     bool
	translateNoCache  bool
	translateSplit    bool
	translateMaxChars int
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate a sentence and align it with the source",
	Long: `Translate a sentence with the configured services, align the translation
with the source word by word and print the alignment, the extracted phrase
pairs and the phrase-based rendering.

The input is either literal text or a path to a file containing it.

Available services:
  - google      Google Translate (requires credentials)
  - mymemory    MyMemory (free, 5000 chars/day)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(translateInput)
		if err != nil {
			return err
		}

		eng, cleanup, err := buildEngine(translateServices, translateNoCache)
		if err != nil {
			return err
		}
		defer cleanup()

		sentences := []string{text}
		if translateSplit {
			sentences = segment.Split(text, translateMaxChars)
			if len(sentences) == 0 {
				sentences = []string{text}
			}
		}

		ctx := context.Background()
		results := make([]*engine.Result, 0, len(sentences))
		for _, sentence := range sentences {
			res, err := eng.TranslateWithAlignment(ctx, sentence, translateTarget)
			if err != nil {
				return err
			}
			results = append(results, res)
		}

		var out strings.Builder
		if translateJSON {
			var payload interface{} = results
			if len(results) == 1 {
				payload = results[0]
			}
			data, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			out.Write(data)
			out.WriteByte('\n')
		} else {
			for i, res := range results {
				if i > 0 {
					out.WriteString("\n---\n\n")
				}
				writeReport(&out, res)
			}
		}

		if translateOutput == "" {
			fmt.Print(out.String())
			return nil
		}

		if err := os.MkdirAll(filepath.Dir(translateOutput), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(translateOutput, []byte(out.String()), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		cached := 0
		for _, res := range results {
			if res.Cached {
				cached++
			}
		}
		fmt.Fprintf(os.Stderr, "Aligned %d sentence(s) into %s (%d from cache)\n", len(results), results[0].TargetLanguage, cached)
		return nil
	},
}

// writeReport renders a human-readable summary of an alignment result.
func writeReport(out *strings.Builder, res *engine.Result) {
	fmt.Fprintf(out, "Source:      %s\n", strings.Join(res.SourceTokens, " "))
	fmt.Fprintf(out, "Target:      %s\n", res.TargetText)
	if res.Backend != "" {
		fmt.Fprintf(out, "Backend:     %s (%s)\n", res.Backend, res.TargetLanguage)
	}
	fmt.Fprintf(out, "Model:       %s\n", res.AlignmentModel)
	fmt.Fprintf(out, "Alignment:   %s\n", res.GizaAlignment)
	fmt.Fprintf(out, "Phrase-based: %s\n", res.PhraseBasedTranslation)

	if len(res.AlignmentPairs) > 0 {
		out.WriteString("\nWord links:\n")
		for _, p := range res.AlignmentPairs {
			fmt.Fprintf(out, "  %2d %-16s -> %2d %s\n", p.SourceIndex, p.SourceWord, p.TargetIndex, p.TargetWord)
		}
	}

	if len(res.PhrasePairs) > 0 {
		out.WriteString("\nPhrase pairs:\n")
		for _, pp := range res.PhrasePairs {
			fmt.Fprintf(out, "  [%s] %s ||| [%s] %s\n", pp.SrcSpan(), pp.SrcPhrase, pp.TgtSpan(), pp.TgtPhrase)
		}
	}

	if len(res.SourceTokens) > 0 && len(res.TargetTokens) > 0 {
		out.WriteString("\nGrid:\n")
		writeGrid(out, res.SourceTokens, res.AlignmentGrid)
	}
}

func writeGrid(out *strings.Builder, src []string, grid [][]bool) {
	width := 0
	for _, tok := range src {
		if n := len([]rune(tok)); n > width {
			width = n
		}
	}
	for si, row := range grid {
		fmt.Fprintf(out, "  %-*s ", width, src[si])
		for _, cell := range row {
			if cell {
				out.WriteString(" ■")
			} else {
				out.WriteString(" ·")
			}
		}
		out.WriteByte('\n')
	}
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&translateInput, "input", "i", "", "Text or file to translate (required)")
	translateCmd.Flags().StringVarP(&translateOutput, "output", "o", "", "Write the report to a file instead of stdout")
	translateCmd.Flags().StringVarP(&translateTarget, "target", "t", "", "Target language code (default from config)")
	translateCmd.Flags().StringSliceVar(&translateServices, "services", nil, "Translation services to use (comma-separated, default from config)")
	translateCmd.Flags().BoolVar(&translateJSON, "json", false, "Print the full payload as JSON")
	translateCmd.Flags().BoolVar(&translateNoCache, "no-cache", false, "Disable translation memory")
	translateCmd.Flags().BoolVar(&translateSplit, "split", false, "Split the input into sentences and align each one")
	translateCmd.Flags().IntVar(&translateMaxChars, "max-chars", segment.DefaultMaxChars, "Maximum characters per sentence when splitting")

	translateCmd.MarkFlagRequired("input")
}
