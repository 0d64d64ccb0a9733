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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/smtalign/internal/align"
	"github.com/valpere/smtalign/internal/toolkit"
)

var (
	toolkitLang   string
	toolkitCorpus string
	toolkitOutDir string
)

var toolkitCmd = &cobra.Command{
	Use:   "toolkit",
	Short: "Run external SMT tools (Moses, fast_align)",
	Long: `Run the external Moses decoder and fast_align aligner configured through
MOSES_BIN, FAST_ALIGN_BIN and ATOOLS_BIN.`,
}

var toolkitDecodeCmd = &cobra.Command{
	Use:   "decode <sentence>",
	Short: "Translate a sentence with Moses",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.MosesPath == "" {
			return fmt.Errorf("MOSES_BIN is not set")
		}
		lang := toolkitLang
		if lang == "" {
			lang = appConfig.DefaultTargetLang
		}

		out, err := toolkit.MosesDecode(context.Background(), appConfig.MosesPath, appConfig.MosesIniFor(lang), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var toolkitFastAlignCmd = &cobra.Command{
	Use:   "fast-align",
	Short: "Align a corpus in both directions and symmetrize",
	Long: `Run fast_align forward and reverse over a "source ||| target" corpus and
symmetrize the result with atools (grow-diag-final-and).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.FastAlignPath == "" || appConfig.AtoolsPath == "" {
			return fmt.Errorf("FAST_ALIGN_BIN and ATOOLS_BIN must be set")
		}
		if err := os.MkdirAll(toolkitOutDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		fwd := filepath.Join(toolkitOutDir, "forward.align")
		rev := filepath.Join(toolkitOutDir, "reverse.align")
		sym := filepath.Join(toolkitOutDir, "symmetrized.align")
		if err := toolkit.FastAlignBidirectional(context.Background(), appConfig.FastAlignPath, appConfig.AtoolsPath, toolkitCorpus, fwd, rev, sym); err != nil {
			return err
		}

		data, err := os.ReadFile(sym)
		if err != nil {
			return fmt.Errorf("failed to read symmetrized alignment: %w", err)
		}
		lines, links := 0, 0
		for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
			points, err := toolkit.ParseGiza(line)
			if err != nil {
				return fmt.Errorf("line %d: %w", lines+1, err)
			}
			lines++
			links += len(points)
		}

		fmt.Printf("Symmetrized alignment: %s (%d sentences, %d links)\n", sym, lines, links)
		return nil
	},
}

var toolkitGizaCmd = &cobra.Command{
	Use:   "giza <alignment>",
	Short: "Normalize an \"s-t s-t\" alignment string",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := toolkit.ParseGiza(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(align.GizaString(points))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolkitCmd)

	toolkitDecodeCmd.Flags().StringVarP(&toolkitLang, "target", "t", "", "Target language code (selects moses.<lang>.ini)")

	toolkitFastAlignCmd.Flags().StringVarP(&toolkitCorpus, "input", "i", "", "Corpus in fast_align format (required)")
	toolkitFastAlignCmd.Flags().StringVarP(&toolkitOutDir, "out", "o", "data/alignments", "Output directory")
	toolkitFastAlignCmd.MarkFlagRequired("input")

	toolkitCmd.AddCommand(toolkitDecodeCmd)
	toolkitCmd.AddCommand(toolkitFastAlignCmd)
	toolkitCmd.AddCommand(toolkitGizaCmd)
}
