package translator

import (
	"context"
	"errors"
	"testing"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
)

type fakeGoogleClient struct {
	translations []translate.Translation
	err          error
	gotTarget    language.Tag
	gotOpts      *translate.Options
	closed       bool
}

func (f *fakeGoogleClient) Translate(ctx context.Context, inputs []string, target language.Tag, opts *translate.Options) ([]translate.Translation, error) {
	f.gotTarget = target
	f.gotOpts = opts
	return f.translations, f.err
}

func (f *fakeGoogleClient) Close() error {
	f.closed = true
	return nil
}

func newFakeGoogle(sourceLang string, fake *fakeGoogleClient) *GoogleService {
	return &GoogleService{
		sourceLang: sourceLang,
		newClient: func(ctx context.Context, cfg ServiceConfig) (googleClient, error) {
			return fake, nil
		},
	}
}

func TestGoogleService_Translate_Success(t *testing.T) {
	fake := &fakeGoogleClient{translations: []translate.Translation{{Text: " नमस्ते &amp; स्वागत "}}}
	svc := newFakeGoogle("en", fake)

	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{Text: "Hello & welcome", TargetLang: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TranslatedText != "नमस्ते & स्वागत" {
		t.Errorf("unexpected translation %q", result.TranslatedText)
	}
	if result.ServiceName != "google" {
		t.Errorf("expected service name 'google', got %q", result.ServiceName)
	}
	if fake.gotTarget.String() != "hi" {
		t.Errorf("expected Hindi target, got %v", fake.gotTarget)
	}
	if fake.gotOpts == nil || fake.gotOpts.Source.String() != "en" {
		t.Errorf("expected English source option, got %+v", fake.gotOpts)
	}
	if !fake.closed {
		t.Error("expected client to be closed")
	}
}

func TestGoogleService_Translate_AutoSource(t *testing.T) {
	fake := &fakeGoogleClient{translations: []translate.Translation{{Text: "hola", Source: language.English}}}
	svc := newFakeGoogle("auto", fake)

	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{Text: "hello", TargetLang: "es"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.gotOpts != nil {
		t.Errorf("expected no source option for auto detection, got %+v", fake.gotOpts)
	}
	if result.Metadata["detected_source"] != "en" {
		t.Errorf("expected detected source 'en', got %v", result.Metadata)
	}
}

func TestGoogleService_Translate_Errors(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeGoogleClient
		req  TranslateRequest
	}{
		{"invalid target", &fakeGoogleClient{}, TranslateRequest{Text: "hi", TargetLang: "not a tag!"}},
		{"api error", &fakeGoogleClient{err: errors.New("quota exceeded")}, TranslateRequest{Text: "hi", TargetLang: "ta"}},
		{"no translations", &fakeGoogleClient{}, TranslateRequest{Text: "hi", TargetLang: "ta"}},
		{"blank translation", &fakeGoogleClient{translations: []translate.Translation{{Text: "  "}}}, TranslateRequest{Text: "hi", TargetLang: "ta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newFakeGoogle("en", tt.fake).Translate(context.Background(), ServiceConfig{}, tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if result == nil || result.Error == "" {
				t.Error("expected error message in result")
			}
		})
	}
}

func TestGoogleService_ClientError(t *testing.T) {
	svc := &GoogleService{
		sourceLang: "en",
		newClient: func(ctx context.Context, cfg ServiceConfig) (googleClient, error) {
			return nil, errors.New("no credentials")
		},
	}

	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{Text: "hi", TargetLang: "bn"})
	if err == nil {
		t.Fatal("expected error")
	}
	if result.Latency < 0 {
		t.Error("expected non-negative latency")
	}
}

func TestGoogleService_SupportedLanguages(t *testing.T) {
	langs, err := NewGoogleService("en").SupportedLanguages(context.Background())
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(langs) == 0 {
		t.Error("expected non-empty language list")
	}
}
