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
	"os"

	"github.com/spf13/cobra"

	"github.com/valpere/smtalign/internal/config"
	"github.com/valpere/smtalign/internal/logging"
)

var version = "0.3.0"

var (
	configFile string
	appConfig  *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "smtalign",
	Short: "Statistical word alignment and phrase extraction",
	Long: `A CLI application that aligns a sentence with its translation word by word,
extracts consistent phrase pairs and rebuilds a phrase-segmented rendering of
the target sentence.

The target sentence comes from an external translation service (Google
Translate, MyMemory) or is supplied directly with "smtalign align".

Use "smtalign align --help" for offline alignment options.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		appConfig = cfg
		logging.Init(cfg.Production)
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		logging.Sync()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (YAML, TOML or JSON)")
}
