// Package engine ties sentence translation to the alignment core: it obtains
// a target sentence, aligns it against the source, extracts phrase pairs and
// assembles the payload served to clients.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/valpere/smtalign/internal"
	"github.com/valpere/smtalign/internal/align"
	"github.com/valpere/smtalign/internal/logging"
	"github.com/valpere/smtalign/internal/orchestrator"
	"github.com/valpere/smtalign/internal/postprocess"
	"github.com/valpere/smtalign/internal/tokenize"
	"github.com/valpere/smtalign/internal/translator"
)

var (
	ErrEmptyInput            = errors.New("empty source text")
	ErrUnsupportedLanguage   = errors.New("unsupported target language")
	ErrTranslation           = errors.New("translation failed")
	ErrInconsistentAlignment = errors.New("inconsistent alignment")
)

// AlignmentModel labels payloads produced by the EM aligner.
const AlignmentModel = "EM-based (IBM-style) with punctuation-aware constraints"

// DefaultTimeout bounds a shared service call when Config.Timeout is unset.
const DefaultTimeout = 60 * time.Second

// Result is the alignment payload for one sentence pair.
type Result struct {
	RequestID              string             `json:"request_id,omitempty"`
	SourceTokens           []string           `json:"source_tokens"`
	TargetTokens           []string           `json:"target_tokens"`
	TargetText             string             `json:"target_text"`
	Alignments             []align.Point      `json:"alignments"`
	Backend                string             `json:"backend"`
	AlignmentGrid          [][]bool           `json:"alignment_grid"`
	AlignmentPairs         []align.WordPair   `json:"alignment_pairs"`
	TargetLanguage         string             `json:"target_language"`
	GizaAlignment          string             `json:"giza_alignment"`
	AlignmentModel         string             `json:"alignment_model"`
	PhrasePairs            []align.PhrasePair `json:"phrase_pairs"`
	PhraseBasedTranslation string             `json:"phrase_based_translation"`
	Cached                 bool               `json:"cached"`
}

// SentenceTranslator runs the configured translation services.
type SentenceTranslator interface {
	Execute(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) *orchestrator.OrchestratorResult
}

// Store persists translation memory and alignment history.
type Store interface {
	GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, string, bool, error)
	SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, translatedText, serviceUsed string) error
	SaveRequest(ctx context.Context, req internal.AlignmentRequest) error
	SaveResult(ctx context.Context, requestID, serviceName, translatedText string, confidence float64, latencyMs int, errMsg string) error
	SaveAlignment(ctx context.Context, rec internal.AlignmentRecord) error
}

// AlignFunc produces word links between two token sequences.
type AlignFunc func(src, tgt []string) []align.Point

type Config struct {
	SourceLang   string
	DefaultLang  string
	Languages    []string
	Iterations   int           // zero uses align.DefaultIterations
	MaxPhraseLen int           // zero uses align.DefaultMaxPhraseLen
	Timeout      time.Duration // bounds the shared service call; zero uses DefaultTimeout
	Service      translator.ServiceConfig
}

type Option func(*Engine)

// WithStore enables translation memory and alignment history.
func WithStore(s Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithAligner replaces the EM aligner; model is reported in the payload.
func WithAligner(fn AlignFunc, model string) Option {
	return func(e *Engine) {
		e.aligner = fn
		e.model = model
	}
}

type Engine struct {
	cfg        Config
	translator SentenceTranslator
	store      Store
	aligner    AlignFunc
	model      string
	supported  map[string]bool
	group      singleflight.Group
	log        *zap.Logger
}

// New creates an Engine. tr may be nil when only AlignTokens is used.
func New(cfg Config, tr SentenceTranslator, opts ...Option) *Engine {
	if cfg.Iterations == 0 {
		cfg.Iterations = align.DefaultIterations
	}
	if cfg.MaxPhraseLen <= 0 {
		cfg.MaxPhraseLen = align.DefaultMaxPhraseLen
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.DefaultLang = strings.ToLower(cfg.DefaultLang)

	e := &Engine{
		cfg:        cfg,
		translator: tr,
		model:      AlignmentModel,
		supported:  make(map[string]bool),
		log:        logging.L().Named("engine"),
	}
	e.aligner = func(src, tgt []string) []align.Point {
		return align.Align(src, tgt, align.WithIterations(cfg.Iterations))
	}
	for _, l := range cfg.Languages {
		e.supported[strings.ToLower(l)] = true
	}
	if cfg.DefaultLang != "" {
		e.supported[cfg.DefaultLang] = true
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TranslateWithAlignment translates text into targetLang and aligns the
// result against the source. An empty targetLang selects the default
// language.
func (e *Engine) TranslateWithAlignment(ctx context.Context, text, targetLang string) (*Result, error) {
	lang := strings.ToLower(strings.TrimSpace(targetLang))
	if lang == "" {
		lang = e.cfg.DefaultLang
	}
	if len(e.supported) > 0 && !e.supported[lang] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	req := internal.AlignmentRequest{
		ID:         uuid.New().String(),
		SourceText: text,
		SourceLang: e.cfg.SourceLang,
		TargetLang: lang,
		Timestamp:  time.Now(),
	}

	translated, svc, cached, err := e.translate(ctx, req)
	if err != nil {
		return nil, err
	}

	res, err := e.AlignTokens(tokenize.Preprocess(text), tokenize.Preprocess(translated.TranslatedText))
	if err != nil {
		return nil, err
	}
	res.RequestID = req.ID
	res.TargetText = translated.TranslatedText
	res.Backend = svc
	res.TargetLanguage = lang
	res.Cached = cached

	e.persist(ctx, req, translated, cached, res)

	e.log.Info("aligned sentence",
		zap.String("request_id", req.ID),
		zap.String("lang", lang),
		zap.String("backend", svc),
		zap.Bool("cached", cached),
		zap.Int("links", len(res.Alignments)),
		zap.Int("phrase_pairs", len(res.PhrasePairs)))

	return res, nil
}

// AlignTokens aligns two pre-tokenized sequences and builds the payload. No
// network access is involved.
func (e *Engine) AlignTokens(src, tgt []string) (*Result, error) {
	if src == nil {
		src = []string{}
	}
	if tgt == nil {
		tgt = []string{}
	}

	points := e.aligner(src, tgt)
	align.SortPoints(points)
	if err := align.Verify(len(src), len(tgt), points, nil, e.cfg.MaxPhraseLen); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInconsistentAlignment, err)
	}

	pairs := align.Extract(src, tgt, points, e.cfg.MaxPhraseLen)
	if err := align.Verify(len(src), len(tgt), points, pairs, e.cfg.MaxPhraseLen); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInconsistentAlignment, err)
	}

	res := &Result{
		SourceTokens:           src,
		TargetTokens:           tgt,
		TargetText:             tokenize.Detokenize(tgt),
		Alignments:             nonNil(points),
		AlignmentGrid:          align.Grid(src, tgt, points),
		AlignmentPairs:         nonNil(align.Pairs(src, tgt, points)),
		TargetLanguage:         e.cfg.DefaultLang,
		GizaAlignment:          align.GizaString(points),
		AlignmentModel:         e.model,
		PhrasePairs:            nonNil(pairs),
		PhraseBasedTranslation: align.Project(src, tgt, points, pairs),
	}
	return res, nil
}

// translate returns the target sentence from translation memory or the
// services. Identical concurrent requests share one service call.
func (e *Engine) translate(ctx context.Context, req internal.AlignmentRequest) (*translator.ServiceResult, string, bool, error) {
	if e.store != nil {
		text, svc, found, err := e.store.GetCachedTranslation(ctx, req.SourceText, req.SourceLang, req.TargetLang)
		if err != nil {
			e.log.Warn("translation memory lookup failed", zap.Error(err))
		} else if found {
			return &translator.ServiceResult{ServiceName: svc, TranslatedText: text}, svc, true, nil
		}
	}

	if e.translator == nil {
		return nil, "", false, fmt.Errorf("%w: no translation services configured", ErrTranslation)
	}

	key := req.SourceLang + "\x00" + req.TargetLang + "\x00" + req.SourceText
	ch := e.group.DoChan(key, func() (interface{}, error) {
		// Detached from the first caller; every waiter gives up on its own ctx.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.Timeout)
		defer cancel()

		out := e.translator.Execute(callCtx, e.cfg.Service, translator.TranslateRequest{
			Text:       req.SourceText,
			SourceLang: req.SourceLang,
			TargetLang: req.TargetLang,
		})
		if out.Succeeded == 0 || len(out.Results) == 0 {
			if len(out.Errors) == 0 {
				return nil, fmt.Errorf("%w: no service produced a translation", ErrTranslation)
			}
			return nil, fmt.Errorf("%w: %v", ErrTranslation, errors.Join(out.Errors...))
		}
		best := out.Results[0]
		best.TranslatedText = postprocess.Clean(req.SourceText, best.TranslatedText)
		if best.TranslatedText == "" {
			return nil, fmt.Errorf("%w: %v", ErrTranslation, translator.ErrEmptyTranslation)
		}
		return &best, nil
	})

	var r singleflight.Result
	select {
	case <-ctx.Done():
		return nil, "", false, fmt.Errorf("%w: %w", ErrTranslation, ctx.Err())
	case r = <-ch:
	}
	if r.Err != nil {
		return nil, "", false, r.Err
	}
	if r.Shared {
		e.log.Debug("shared in-flight translation", zap.String("request_id", req.ID))
	}

	res := r.Val.(*translator.ServiceResult)
	return res, res.ServiceName, false, nil
}

// persist records the request and its outcome. Storage failures are logged
// and never fail the request.
func (e *Engine) persist(ctx context.Context, req internal.AlignmentRequest, tr *translator.ServiceResult, cached bool, res *Result) {
	if e.store == nil {
		return
	}
	warn := func(msg string, err error) {
		if err != nil {
			e.log.Warn(msg, zap.String("request_id", req.ID), zap.Error(err))
		}
	}

	warn("failed to save request", e.store.SaveRequest(ctx, req))
	if !cached {
		warn("failed to save service result", e.store.SaveResult(ctx, req.ID, tr.ServiceName, tr.TranslatedText,
			tr.Confidence, int(tr.Latency.Milliseconds()), tr.Error))
		warn("failed to save translation memory", e.store.SaveToMemory(ctx, req.SourceText, req.SourceLang,
			req.TargetLang, tr.TranslatedText, tr.ServiceName))
	}
	warn("failed to save alignment", e.store.SaveAlignment(ctx, internal.AlignmentRecord{
		RequestID:       req.ID,
		TargetText:      res.TargetText,
		GizaAlignment:   res.GizaAlignment,
		PhraseCount:     len(res.PhrasePairs),
		PhraseBasedText: res.PhraseBasedTranslation,
		Backend:         res.Backend,
		CreatedAt:       req.Timestamp,
	}))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
