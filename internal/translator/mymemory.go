package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const myMemoryURL = "https://api.mymemory.translated.net/get"

type MyMemoryService struct {
	email      string
	sourceLang string
	baseURL    string
	client     *http.Client
}

// NewMyMemoryService returns a client for the free MyMemory API. The email
// raises the daily quota when set.
func NewMyMemoryService(email, sourceLang string) *MyMemoryService {
	return &MyMemoryService{
		email:      email,
		sourceLang: sourceLang,
		baseURL:    myMemoryURL,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *MyMemoryService) Name() string {
	return "mymemory"
}

func (s *MyMemoryService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	sourceLang := req.SourceLang
	if sourceLang == "" || sourceLang == "auto" {
		sourceLang = s.sourceLang
	}
	if sourceLang == "" {
		sourceLang = "en"
	}

	base := s.baseURL
	if cfg.BaseURL != "" {
		base = cfg.BaseURL
	}

	q := url.Values{}
	q.Set("q", req.Text)
	q.Set("langpair", fmt.Sprintf("%s|%s", sourceLang, req.TargetLang))
	if s.email != "" {
		q.Set("de", s.email)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return fail(result, fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fail(result, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(result, fmt.Errorf("API returned status %d", resp.StatusCode))
	}

	var mymemResp struct {
		ResponseData struct {
			TranslatedText string  `json:"translatedText"`
			Match          float64 `json:"match"`
		} `json:"responseData"`
		ResponseStatus  int    `json:"responseStatus"`
		ResponseDetails string `json:"responseDetails"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&mymemResp); err != nil {
		return fail(result, fmt.Errorf("failed to decode response: %w", err))
	}

	if mymemResp.ResponseStatus != http.StatusOK {
		return fail(result, fmt.Errorf("API error: %s (%d)", mymemResp.ResponseDetails, mymemResp.ResponseStatus))
	}

	text := strings.TrimSpace(mymemResp.ResponseData.TranslatedText)
	if text == "" {
		return fail(result, ErrEmptyTranslation)
	}

	result.TranslatedText = text
	result.Confidence = mymemResp.ResponseData.Match
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}

	return result, nil
}

func (s *MyMemoryService) IsAvailable(ctx context.Context) error {
	return nil
}

func (s *MyMemoryService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return append([]string{"en", "es", "fr", "de", "it", "pt", "ru", "uk"}, indicLanguages...), nil
}
