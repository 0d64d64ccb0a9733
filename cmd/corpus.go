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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/smtalign/internal/corpus"
	"github.com/valpere/smtalign/internal/tokenize"
)

var (
	corpusInput        string
	corpusLang         string
	corpusMaxSentences int
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Build and query phrase tables and lexicons",
	Long: `Build phrase tables and lexicons from a parallel corpus by counting
positionally mapped word and phrase co-occurrences.

The corpus is a TSV file with one "source<TAB>target" pair per line.`,
}

var corpusBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a phrase table and lexicon from a TSV corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.CorpusBackend != "tsv" {
			return fmt.Errorf("unsupported corpus backend: %s", appConfig.CorpusBackend)
		}

		lang := strings.ToLower(corpusLang)
		if lang == "" {
			lang = appConfig.DefaultTargetLang
		}
		if !appConfig.Supports(lang) {
			return fmt.Errorf("unsupported target language: %s", lang)
		}

		limit := corpusMaxSentences
		if !cmd.Flags().Changed("max-sentences") {
			limit = appConfig.CorpusMaxSentences
		}

		pairs, err := corpus.LoadPairsFile(corpusInput, limit)
		if err != nil {
			return err
		}

		pt, lex, err := corpus.NewBuilder(limit).Build(context.Background(), pairs)
		if err != nil {
			return err
		}

		phrasePath := appConfig.GeneratedPhraseTableFor(lang)
		lexPath := appConfig.GeneratedLexiconFor(lang)
		if err := corpus.Persist(phrasePath, lexPath, pt, lex); err != nil {
			return err
		}

		fmt.Printf("Read %d sentence pairs\n", len(pairs))
		fmt.Printf("Phrase table: %s (%d entries)\n", phrasePath, len(pt))
		fmt.Printf("Lexicon:      %s (%d entries)\n", lexPath, len(lex))
		return nil
	},
}

var corpusLookupCmd = &cobra.Command{
	Use:   "lookup <phrase>",
	Short: "Look up a source phrase in the phrase table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang := strings.ToLower(corpusLang)
		if lang == "" {
			lang = appConfig.DefaultTargetLang
		}

		path := appConfig.GeneratedPhraseTableFor(lang)
		if _, err := os.Stat(path); err != nil {
			path = appConfig.PhraseTableFor(lang)
		}

		pt, err := corpus.LoadPhraseTableFile(path)
		if err != nil {
			return err
		}

		phrase := strings.Join(tokenize.Preprocess(strings.Join(args, " ")), " ")
		tgt, ok := pt[phrase]
		if !ok {
			return fmt.Errorf("phrase %q not found in %s", phrase, path)
		}
		fmt.Printf("%s\t%s\n", phrase, strings.Join(tgt, " "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(corpusCmd)

	corpusCmd.PersistentFlags().StringVarP(&corpusLang, "target", "t", "", "Target language code (default from config)")

	corpusBuildCmd.Flags().StringVarP(&corpusInput, "input", "i", "", "Parallel corpus TSV (required)")
	corpusBuildCmd.Flags().IntVar(&corpusMaxSentences, "max-sentences", corpus.DefaultMaxSentences, "Maximum sentence pairs to read")
	corpusBuildCmd.MarkFlagRequired("input")

	corpusCmd.AddCommand(corpusBuildCmd)
	corpusCmd.AddCommand(corpusLookupCmd)
}
