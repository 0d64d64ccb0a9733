package translator

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// googleClient is the subset of *translate.Client used here.
type googleClient interface {
	Translate(ctx context.Context, inputs []string, target language.Tag, opts *translate.Options) ([]translate.Translation, error)
	Close() error
}

type GoogleService struct {
	sourceLang string
	newClient  func(ctx context.Context, cfg ServiceConfig) (googleClient, error)
}

// NewGoogleService returns a Google Cloud Translation client that translates
// from sourceLang. An empty or "auto" source lets the API detect it.
func NewGoogleService(sourceLang string) *GoogleService {
	return &GoogleService{sourceLang: sourceLang, newClient: newGoogleClient}
}

func newGoogleClient(ctx context.Context, cfg ServiceConfig) (googleClient, error) {
	var opts []option.ClientOption
	if cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
	}
	if cfg.ProjectID != "" {
		opts = append(opts, option.WithQuotaProject(cfg.ProjectID))
	}
	return translate.NewClient(ctx, opts...)
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	target, err := language.Parse(req.TargetLang)
	if err != nil {
		return fail(result, fmt.Errorf("invalid target language: %w", err))
	}

	var opts *translate.Options
	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = s.sourceLang
	}
	if sourceLang != "" && sourceLang != "auto" {
		source, err := language.Parse(sourceLang)
		if err != nil {
			return fail(result, fmt.Errorf("invalid source language: %w", err))
		}
		opts = &translate.Options{Source: source, Format: translate.Text}
	}

	client, err := s.newClient(ctx, cfg)
	if err != nil {
		return fail(result, fmt.Errorf("failed to create client: %w", err))
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{req.Text}, target, opts)
	if err != nil {
		return fail(result, fmt.Errorf("google translation failed: %w", err))
	}
	if len(translations) == 0 {
		return fail(result, ErrEmptyTranslation)
	}

	text := strings.TrimSpace(html.UnescapeString(translations[0].Text))
	if text == "" {
		return fail(result, ErrEmptyTranslation)
	}

	result.TranslatedText = text
	result.Confidence = 1.0
	if detected := translations[0].Source.String(); detected != "und" {
		result.Metadata = map[string]string{"detected_source": detected}
	}
	return result, nil
}

func (s *GoogleService) IsAvailable(ctx context.Context) error {
	return nil
}

func (s *GoogleService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return indicLanguages, nil
}
