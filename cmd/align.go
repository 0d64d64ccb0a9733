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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/smtalign/internal/align"
	"github.com/valpere/smtalign/internal/corpus"
	"github.com/valpere/smtalign/internal/engine"
	"github.com/valpere/smtalign/internal/tokenize"
)

var (
	alignSource     string
	alignTarget     string
	alignIterations int
	alignMaxPhrase  int
	alignJSON       bool
	alignLexicon    string
	alignLexical    bool
	alignLang       string
	alignThreshold  float64
	alignPositional bool
)

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Align a sentence with a given translation",
	Long: `Align a source sentence with a translation you supply, without calling any
translation service.

By default the EM aligner is used. --lexicon aligns with a lexicon built by
"smtalign corpus build", --lexical uses the configured lexicon for --lang and
--positional maps words along the diagonal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if alignLexical && alignLexicon == "" {
			lang := alignLang
			if lang == "" {
				lang = appConfig.DefaultTargetLang
			}
			alignLexicon = lexiconPath(lang)
		}
		if alignLexicon != "" && alignPositional {
			return fmt.Errorf("--lexicon and --positional are mutually exclusive")
		}

		srcText, err := readInput(alignSource)
		if err != nil {
			return err
		}
		tgtText, err := readInput(alignTarget)
		if err != nil {
			return err
		}

		var opts []engine.Option
		switch {
		case alignLexicon != "":
			lex, err := corpus.LoadLexiconFile(alignLexicon)
			if err != nil {
				return err
			}
			threshold := alignThreshold
			opts = append(opts, engine.WithAligner(func(src, tgt []string) []align.Point {
				return align.LexicalAlign(src, tgt, lex, threshold)
			}, "Lexicon-based (corpus relative frequency)"))
		case alignPositional:
			opts = append(opts, engine.WithAligner(align.PositionalAlign, "Positional (diagonal) baseline"))
		}

		iterations, maxPhrase := alignIterations, alignMaxPhrase
		if !cmd.Flags().Changed("iterations") {
			iterations = appConfig.Iterations
		}
		if !cmd.Flags().Changed("max-phrase") {
			maxPhrase = appConfig.MaxPhraseLen
		}
		if iterations == 0 {
			// zero means no EM rounds here, not the engine default
			iterations = -1
		}
		eng := engine.New(engine.Config{
			DefaultLang:  appConfig.DefaultTargetLang,
			Iterations:   iterations,
			MaxPhraseLen: maxPhrase,
		}, nil, opts...)

		res, err := eng.AlignTokens(tokenize.Preprocess(srcText), tokenize.Preprocess(tgtText))
		if err != nil {
			return err
		}
		res.TargetText = strings.TrimSpace(tgtText)

		if alignJSON {
			data, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		var out strings.Builder
		writeReport(&out, res)
		fmt.Print(out.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(alignCmd)

	alignCmd.Flags().StringVarP(&alignSource, "source", "s", "", "Source sentence or file (required)")
	alignCmd.Flags().StringVarP(&alignTarget, "target", "t", "", "Target sentence or file (required)")
	alignCmd.Flags().IntVar(&alignIterations, "iterations", align.DefaultIterations, "EM refinement rounds")
	alignCmd.Flags().IntVar(&alignMaxPhrase, "max-phrase", align.DefaultMaxPhraseLen, "Maximum phrase length on either side")
	alignCmd.Flags().BoolVar(&alignJSON, "json", false, "Print the full payload as JSON")
	alignCmd.Flags().StringVar(&alignLexicon, "lexicon", "", "Align with this lexicon TSV instead of EM")
	alignCmd.Flags().BoolVar(&alignLexical, "lexical", false, "Align with the configured lexicon for --lang")
	alignCmd.Flags().StringVarP(&alignLang, "lang", "l", "", "Target language code for --lexical")
	alignCmd.Flags().Float64Var(&alignThreshold, "threshold", align.DefaultLexiconThreshold, "Minimum lexicon probability for a link")
	alignCmd.Flags().BoolVar(&alignPositional, "positional", false, "Use the positional baseline instead of EM")

	alignCmd.MarkFlagRequired("source")
	alignCmd.MarkFlagRequired("target")
}
