// Package config loads runtime settings from the environment, an optional
// .env file and an optional YAML config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "SMT"

// Config holds every setting the CLI, engine and server need.
type Config struct {
	DataDir              string
	PhraseTablePath      string
	LexiconPath          string
	TargetLanguages      []string
	DefaultTargetLang    string
	SourceLanguage       string
	UseDynamicCorpus     bool
	CorpusBackend        string
	CorpusMaxSentences   int
	DBPath               string
	Services             []string
	GoogleCredentials    string
	GoogleProjectID      string
	MyMemoryEmail        string
	TranslateTimeout     time.Duration
	ValidateTranslations bool
	RateLimit            float64
	Iterations           int
	MaxPhraseLen         int
	MosesPath            string
	FastAlignPath        string
	AtoolsPath           string
	Production           bool
}

// Load reads configuration. configFile may be empty; a missing .env file is
// not an error.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Toolkit binaries use their conventional unprefixed names.
	_ = v.BindEnv("moses_bin", "MOSES_BIN")
	_ = v.BindEnv("fast_align_bin", "FAST_ALIGN_BIN")
	_ = v.BindEnv("atools_bin", "ATOOLS_BIN")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")
	v.SetDefault("target_languages", "hi,bn,ta,te,mr,gu")
	v.SetDefault("source_language", "en")
	v.SetDefault("use_dynamic_corpus", false)
	v.SetDefault("corpus_backend", "tsv")
	v.SetDefault("corpus_max_sentences", 2000)
	v.SetDefault("services", "google")
	v.SetDefault("translate_timeout", 30*time.Second)
	v.SetDefault("validate_translations", false)
	v.SetDefault("rate_limit", 5.0)
	v.SetDefault("iterations", 8)
	v.SetDefault("max_phrase_len", 4)
	v.SetDefault("production", false)
}

func fromViper(v *viper.Viper) (*Config, error) {
	dataDir, err := filepath.Abs(v.GetString("data_dir"))
	if err != nil {
		return nil, fmt.Errorf("invalid data dir: %w", err)
	}

	langs := splitList(strings.ToLower(v.GetString("target_languages")))
	if len(langs) == 0 {
		langs = []string{"hi"}
	}
	defaultLang := strings.ToLower(strings.TrimSpace(v.GetString("default_target_language")))
	if defaultLang == "" {
		defaultLang = langs[0]
	}

	cfg := &Config{
		DataDir:              dataDir,
		PhraseTablePath:      v.GetString("phrase_table"),
		LexiconPath:          v.GetString("lexicon"),
		TargetLanguages:      langs,
		DefaultTargetLang:    defaultLang,
		SourceLanguage:       strings.ToLower(strings.TrimSpace(v.GetString("source_language"))),
		UseDynamicCorpus:     v.GetBool("use_dynamic_corpus"),
		CorpusBackend:        strings.ToLower(strings.TrimSpace(v.GetString("corpus_backend"))),
		CorpusMaxSentences:   v.GetInt("corpus_max_sentences"),
		DBPath:               v.GetString("db_path"),
		Services:             splitList(v.GetString("services")),
		GoogleCredentials:    v.GetString("google_credentials"),
		GoogleProjectID:      v.GetString("google_project"),
		MyMemoryEmail:        v.GetString("mymemory_email"),
		TranslateTimeout:     v.GetDuration("translate_timeout"),
		ValidateTranslations: v.GetBool("validate_translations"),
		RateLimit:            v.GetFloat64("rate_limit"),
		Iterations:           v.GetInt("iterations"),
		MaxPhraseLen:         v.GetInt("max_phrase_len"),
		MosesPath:            v.GetString("moses_bin"),
		FastAlignPath:        v.GetString("fast_align_bin"),
		AtoolsPath:           v.GetString("atools_bin"),
		Production:           v.GetBool("production"),
	}

	if cfg.PhraseTablePath == "" {
		cfg.PhraseTablePath = filepath.Join(dataDir, "models", "phrase_table.tsv")
	}
	if cfg.LexiconPath == "" {
		cfg.LexiconPath = filepath.Join(dataDir, "models", "lexicon.tsv")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(dataDir, "smtalign.db")
	}
	if cfg.TranslateTimeout <= 0 {
		cfg.TranslateTimeout = 30 * time.Second
	}

	return cfg, nil
}

// Supports reports whether lang is one of the configured target languages
// or the default.
func (c *Config) Supports(lang string) bool {
	lang = strings.ToLower(lang)
	if lang == c.DefaultTargetLang {
		return true
	}
	for _, l := range c.TargetLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// Languages returns the target languages with the default listed first.
func (c *Config) Languages() []string {
	out := make([]string, 0, len(c.TargetLanguages)+1)
	out = append(out, c.DefaultTargetLang)
	for _, l := range c.TargetLanguages {
		if l != c.DefaultTargetLang {
			out = append(out, l)
		}
	}
	return out
}

// PhraseTableFor returns the per-language phrase table when present,
// otherwise the shared one.
func (c *Config) PhraseTableFor(lang string) string {
	return firstExisting(c.modelPath("phrase_table."+lang+".tsv"), c.PhraseTablePath)
}

// LexiconFor returns the per-language lexicon when present, otherwise the
// shared one.
func (c *Config) LexiconFor(lang string) string {
	return firstExisting(c.modelPath("lexicon."+lang+".tsv"), c.LexiconPath)
}

// MosesIniFor returns the per-language moses.ini when present.
func (c *Config) MosesIniFor(lang string) string {
	return firstExisting(c.modelPath("moses."+lang+".ini"), c.modelPath("moses.ini"))
}

func (c *Config) GeneratedPhraseTableFor(lang string) string {
	return filepath.Join(c.DataDir, "models", "generated", "phrase_table."+lang+".tsv")
}

func (c *Config) GeneratedLexiconFor(lang string) string {
	return filepath.Join(c.DataDir, "models", "generated", "lexicon."+lang+".tsv")
}

func (c *Config) modelPath(name string) string {
	return filepath.Join(c.DataDir, "models", name)
}

func firstExisting(candidate, fallback string) string {
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
