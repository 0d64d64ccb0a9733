package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valpere/smtalign/internal/translator"
)

type mockService struct {
	nameVal       string
	translateFunc func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error)
	callCount     atomic.Int32
}

func (m *mockService) Name() string { return m.nameVal }

func (m *mockService) Translate(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
	m.callCount.Add(1)
	if m.translateFunc != nil {
		return m.translateFunc(ctx, cfg, req)
	}
	return &translator.ServiceResult{ServiceName: m.nameVal, TranslatedText: m.nameVal + " result"}, nil
}

func (m *mockService) IsAvailable(ctx context.Context) error { return nil }

func (m *mockService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{"en", "hi"}, nil
}

type stubValidator struct {
	valid bool
	calls atomic.Int32
}

func (v *stubValidator) IsValid(text, lang string) (bool, error) {
	v.calls.Add(1)
	if v.valid {
		return true, nil
	}
	return false, errors.New("expected hi but detected en")
}

var testReq = translator.TranslateRequest{Text: "Hello", SourceLang: "en", TargetLang: "hi"}

func TestOrchestrator_New_Defaults(t *testing.T) {
	o := New([]translator.TranslationService{&mockService{nameVal: "mock"}}, OrchestratorConfig{SkipValidation: true})

	if o.config.MaxAttempts != 3 {
		t.Errorf("expected MaxAttempts=3, got %d", o.config.MaxAttempts)
	}
	if o.config.RetryDelay <= 0 {
		t.Error("expected positive RetryDelay default")
	}
	if o.config.Timeout <= 0 {
		t.Error("expected positive Timeout default")
	}
	if o.validator != nil {
		t.Error("expected no validator when validation is skipped")
	}
}

func TestOrchestrator_New_CustomValidator(t *testing.T) {
	v := &stubValidator{valid: true}
	o := New(nil, OrchestratorConfig{Validator: v})
	if o.validator != v {
		t.Error("expected the configured validator to be used")
	}
}

func TestOrchestrator_Execute_KeepsServiceOrder(t *testing.T) {
	slow := &mockService{
		nameVal: "slow",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			time.Sleep(50 * time.Millisecond)
			return &translator.ServiceResult{ServiceName: "slow", TranslatedText: "slow result"}, nil
		},
	}
	fast := &mockService{nameVal: "fast"}

	o := New([]translator.TranslationService{slow, fast}, OrchestratorConfig{
		Timeout:        5 * time.Second,
		SkipValidation: true,
	})

	result := o.Execute(context.Background(), translator.ServiceConfig{}, testReq)

	if result.Succeeded != 2 {
		t.Fatalf("expected 2 succeeded, got %d", result.Succeeded)
	}
	if result.Results[0].ServiceName != "slow" || result.Results[1].ServiceName != "fast" {
		t.Errorf("expected configured order, got %s then %s", result.Results[0].ServiceName, result.Results[1].ServiceName)
	}
}

func TestOrchestrator_Execute_WithFailures(t *testing.T) {
	failing := &mockService{
		nameVal: "failing",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			return &translator.ServiceResult{ServiceName: "failing", Error: "boom"}, errors.New("boom")
		},
	}
	ok := &mockService{nameVal: "ok"}

	o := New([]translator.TranslationService{failing, ok}, OrchestratorConfig{
		MaxAttempts:    2,
		RetryDelay:     time.Millisecond,
		SkipValidation: true,
	})

	result := o.Execute(context.Background(), translator.ServiceConfig{}, testReq)

	if result.Succeeded != 1 || result.Failed != 1 {
		t.Errorf("expected 1 succeeded and 1 failed, got %d/%d", result.Succeeded, result.Failed)
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %d", len(result.Errors))
	}
	if failing.callCount.Load() != 2 {
		t.Errorf("expected 2 attempts on failing service, got %d", failing.callCount.Load())
	}
}

func TestOrchestrator_Execute_WithRetry(t *testing.T) {
	calls := atomic.Int32{}
	svc := &mockService{
		nameVal: "retryable",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			if calls.Add(1) < 3 {
				return &translator.ServiceResult{ServiceName: "retryable", Error: "temporary failure"}, nil
			}
			return &translator.ServiceResult{ServiceName: "retryable", TranslatedText: "success on 3rd attempt"}, nil
		},
	}

	o := New([]translator.TranslationService{svc}, OrchestratorConfig{
		MaxAttempts:    3,
		RetryDelay:     10 * time.Millisecond,
		SkipValidation: true,
	})

	result := o.Execute(context.Background(), translator.ServiceConfig{}, testReq)

	if result.Succeeded != 1 {
		t.Errorf("expected 1 succeeded after retry, got %d", result.Succeeded)
	}
	if svc.callCount.Load() != 3 {
		t.Errorf("expected 3 calls (1 initial + 2 retries), got %d", svc.callCount.Load())
	}
}

func TestOrchestrator_Execute_Cancelled(t *testing.T) {
	svc := &mockService{
		nameVal: "flaky",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			return nil, errors.New("unavailable")
		},
	}

	o := New([]translator.TranslationService{svc}, OrchestratorConfig{
		MaxAttempts:    5,
		RetryDelay:     time.Second,
		SkipValidation: true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := o.Execute(ctx, translator.ServiceConfig{}, testReq)
	if result.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", result.Failed)
	}
	if !errors.Is(result.Errors[0], context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", result.Errors[0])
	}
	if svc.callCount.Load() != 1 {
		t.Errorf("expected retries to stop after cancellation, got %d calls", svc.callCount.Load())
	}
}

func TestOrchestrator_Execute_ValidationFailure(t *testing.T) {
	v := &stubValidator{valid: false}
	svc := &mockService{nameVal: "wrong-language"}

	o := New([]translator.TranslationService{svc}, OrchestratorConfig{
		MaxAttempts: 3,
		RetryDelay:  time.Millisecond,
		Validator:   v,
	})

	result := o.Execute(context.Background(), translator.ServiceConfig{}, testReq)

	// After retries are exhausted the last result is returned anyway.
	if result.Succeeded != 1 {
		t.Errorf("expected 1 succeeded, got %d", result.Succeeded)
	}
	if svc.callCount.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", svc.callCount.Load())
	}
	if v.calls.Load() != 3 {
		t.Errorf("expected 3 validations, got %d", v.calls.Load())
	}
}

func TestOrchestrator_Timeout(t *testing.T) {
	svc := &mockService{
		nameVal: "hanging",
		translateFunc: func(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	o := New([]translator.TranslationService{svc}, OrchestratorConfig{
		Timeout:        20 * time.Millisecond,
		MaxAttempts:    1,
		SkipValidation: true,
	})

	result := o.Execute(context.Background(), translator.ServiceConfig{}, testReq)
	if result.Failed != 1 || !errors.Is(result.Errors[0], context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %+v", result.Errors)
	}
}
