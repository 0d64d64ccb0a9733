// Package translator obtains a sentence-level translation from an external
// service. The alignment core never calls out to the network itself; the
// engine asks one of these services for the target sentence first.
package translator

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyTranslation is returned when a service answers with no text.
var ErrEmptyTranslation = errors.New("translation returned empty output")

type ServiceConfig struct {
	Credentials string        `mapstructure:"credentials" json:"credentials"`
	APIKey      string        `mapstructure:"api_key" json:"api_key"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	ProjectID   string        `mapstructure:"project_id" json:"project_id"`
}

type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// ServiceResult carries the translated sentence together with what the
// service reported about it. Error mirrors the returned error so results can
// be persisted without losing the failure reason.
type ServiceResult struct {
	ServiceName    string            `json:"service_name"`
	TranslatedText string            `json:"translated_text"`
	Confidence     float64           `json:"confidence"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Latency        time.Duration     `json:"latency"`
	Error          string            `json:"error,omitempty"`
}

type TranslationService interface {
	Name() string
	Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error)
	IsAvailable(ctx context.Context) error
	SupportedLanguages(ctx context.Context) ([]string, error)
}

// fail records msg on result and returns it with err.
func fail(result *ServiceResult, err error) (*ServiceResult, error) {
	result.Error = err.Error()
	return result, err
}

// indicLanguages are the target languages the web front offers by default.
var indicLanguages = []string{"hi", "bn", "ta", "te", "mr", "gu", "kn", "ml", "pa"}
