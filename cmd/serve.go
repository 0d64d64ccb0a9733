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
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/valpere/smtalign/internal/server"
)

var (
	serveAddr    string
	serveNoCache bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the alignment API over HTTP",
	Long: `Start an HTTP server exposing:

  GET  /api/languages   target languages, default first
  POST /api/translate   {text, target_language} -> alignment payload
  POST /api/download    {translated_text, target_language} -> text attachment
  GET  /healthz`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.Production {
			gin.SetMode(gin.ReleaseMode)
		}

		eng, cleanup, err := buildEngine(nil, serveNoCache)
		if err != nil {
			return err
		}
		defer cleanup()

		srv, err := server.New(eng, server.Config{
			DefaultLang: appConfig.DefaultTargetLang,
			Languages:   appConfig.Languages(),
			RateLimit:   appConfig.RateLimit,
			Timeout:     appConfig.TranslateTimeout * 2,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return srv.ListenAndServe(ctx, serveAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().BoolVar(&serveNoCache, "no-cache", false, "Disable translation memory")
}
