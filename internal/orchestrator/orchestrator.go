// Package orchestrator runs the configured sentence translation services in
// parallel, retrying transient failures, and picks the preferred result.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/smtalign/internal/logging"
	"github.com/valpere/smtalign/internal/translator"
	"github.com/valpere/smtalign/internal/validator"
)

// Validator checks that a translation is in the requested language.
type Validator interface {
	IsValid(translatedText, targetLang string) (bool, error)
}

type OrchestratorConfig struct {
	Timeout        time.Duration
	MaxAttempts    int // total attempts per service, including the first
	RetryDelay     time.Duration
	SkipValidation bool
	Validator      Validator
}

type OrchestratorResult struct {
	Results   []translator.ServiceResult
	Errors    []error
	Succeeded int
	Failed    int
}

type Orchestrator struct {
	services  []translator.TranslationService
	config    OrchestratorConfig
	validator Validator
	log       *zap.Logger
}

func New(services []translator.TranslationService, config OrchestratorConfig) *Orchestrator {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 500 * time.Millisecond
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	o := &Orchestrator{
		services: services,
		config:   config,
		log:      logging.L().Named("orchestrator"),
	}
	if !config.SkipValidation {
		o.validator = config.Validator
		if o.validator == nil {
			o.validator = validator.New()
		}
	}
	return o
}

// Execute calls every service concurrently. Successful results are ordered
// by the services' configured order.
func (o *Orchestrator) Execute(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) *OrchestratorResult {
	result := &OrchestratorResult{
		Results: make([]translator.ServiceResult, 0, len(o.services)),
		Errors:  make([]error, 0),
	}

	type outcome struct {
		index int
		res   *translator.ServiceResult
		err   error
	}

	outcomes := make(chan outcome, len(o.services))

	var wg sync.WaitGroup
	for i, svc := range o.services {
		wg.Add(1)
		go func(index int, service translator.TranslationService) {
			defer wg.Done()
			res, err := o.callWithRetry(ctx, service, cfg, req)
			outcomes <- outcome{index: index, res: res, err: err}
		}(i, svc)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var ok []outcome
	for oc := range outcomes {
		if oc.err != nil {
			result.Errors = append(result.Errors, oc.err)
			result.Failed++
			continue
		}
		ok = append(ok, oc)
		result.Succeeded++
	}

	sort.Slice(ok, func(i, j int) bool { return ok[i].index < ok[j].index })
	for _, oc := range ok {
		result.Results = append(result.Results, *oc.res)
	}

	return result
}

// callWithRetry attempts a service up to MaxAttempts times. A translation
// that fails validation is retried too; if the last attempt still fails
// validation its result is returned anyway.
func (o *Orchestrator) callWithRetry(ctx context.Context, service translator.TranslationService, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
	var lastErr error
	for attempt := 1; attempt <= o.config.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%s: %w", service.Name(), ctx.Err())
			case <-time.After(o.config.RetryDelay):
			}
		}

		res, err := o.callOnce(ctx, service, cfg, req)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%s: %w", service.Name(), err)
		case res == nil:
			lastErr = fmt.Errorf("%s: no result", service.Name())
		case res.Error != "":
			lastErr = fmt.Errorf("%s: %s", res.ServiceName, res.Error)
		default:
			if o.validator == nil {
				return res, nil
			}
			valid, verr := o.validator.IsValid(res.TranslatedText, req.TargetLang)
			if valid {
				return res, nil
			}
			if attempt == o.config.MaxAttempts {
				o.log.Warn("accepting translation that failed validation",
					zap.String("service", service.Name()), zap.Error(verr))
				return res, nil
			}
			lastErr = fmt.Errorf("%s: validation failed: %v", service.Name(), verr)
		}

		o.log.Debug("translation attempt failed",
			zap.String("service", service.Name()),
			zap.Int("attempt", attempt),
			zap.Error(lastErr))
	}
	return nil, lastErr
}

func (o *Orchestrator) callOnce(ctx context.Context, service translator.TranslationService, cfg translator.ServiceConfig, req translator.TranslateRequest) (*translator.ServiceResult, error) {
	serviceCtx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()
	return service.Translate(serviceCtx, cfg, req)
}
