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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/valpere/smtalign/internal/engine"
	"github.com/valpere/smtalign/internal/orchestrator"
	"github.com/valpere/smtalign/internal/store"
	"github.com/valpere/smtalign/internal/translator"
	"github.com/valpere/smtalign/internal/validator"
)

// buildServices constructs the list of translation services by name.
func buildServices(serviceNames []string, sourceLang, mymemoryEmail string) ([]translator.TranslationService, error) {
	var list []translator.TranslationService

	for _, name := range serviceNames {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "google":
			list = append(list, translator.NewGoogleService(sourceLang))
		case "mymemory":
			list = append(list, translator.NewMyMemoryService(mymemoryEmail, sourceLang))
		default:
			fmt.Fprintf(os.Stderr, "Unknown service: %s, skipping\n", name)
		}
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("no valid services configured")
	}
	return list, nil
}

// buildEngine wires services, the orchestrator and, unless noCache is set,
// the SQLite store. The returned cleanup closes the store.
func buildEngine(serviceNames []string, noCache bool) (*engine.Engine, func(), error) {
	cfg := appConfig
	if len(serviceNames) == 0 {
		serviceNames = cfg.Services
	}

	serviceList, err := buildServices(serviceNames, cfg.SourceLanguage, cfg.MyMemoryEmail)
	if err != nil {
		return nil, nil, err
	}

	orchCfg := orchestrator.OrchestratorConfig{
		Timeout:        cfg.TranslateTimeout,
		SkipValidation: !cfg.ValidateTranslations,
	}
	if cfg.ValidateTranslations {
		orchCfg.Validator = validator.New(cfg.Languages()...)
	}
	orch := orchestrator.New(serviceList, orchCfg)

	engCfg := engine.Config{
		SourceLang:   cfg.SourceLanguage,
		DefaultLang:  cfg.DefaultTargetLang,
		Languages:    cfg.Languages(),
		Iterations:   cfg.Iterations,
		MaxPhraseLen: cfg.MaxPhraseLen,
		Timeout:      cfg.TranslateTimeout * 2,
		Service: translator.ServiceConfig{
			Credentials: cfg.GoogleCredentials,
			ProjectID:   cfg.GoogleProjectID,
			Timeout:     cfg.TranslateTimeout,
		},
	}

	cleanup := func() {}
	var opts []engine.Option
	if !noCache && cfg.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		db, err := store.New(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		opts = append(opts, engine.WithStore(db))
		cleanup = func() { db.Close() }
	}

	return engine.New(engCfg, orch, opts...), cleanup, nil
}

// readInput returns the contents of arg when it names a readable file,
// otherwise arg itself.
func readInput(arg string) (string, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}
	return arg, nil
}

// openStore opens the translation memory at path, or the configured database
// when path is empty.
func openStore(path string) (*store.Store, error) {
	if path == "" {
		path = appConfig.DBPath
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// lexiconPath picks the lexicon for lang: the corpus-built one when dynamic
// corpus mode is on, otherwise the shipped per-language or shared file.
func lexiconPath(lang string) string {
	if appConfig.UseDynamicCorpus {
		return appConfig.GeneratedLexiconFor(lang)
	}
	return appConfig.LexiconFor(lang)
}
