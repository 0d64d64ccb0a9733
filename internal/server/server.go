// Package server exposes the alignment engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/valpere/smtalign/internal/engine"
	"github.com/valpere/smtalign/internal/logging"
)

const (
	msgEmptyText    = "Enter a sentence to translate."
	msgNoDownload   = "No translated text available."
	limiterCapacity = 1024
)

// LanguageLabels names the languages offered by default.
var LanguageLabels = map[string]string{
	"hi": "Hindi",
	"bn": "Bengali",
	"ta": "Tamil",
	"te": "Telugu",
	"mr": "Marathi",
	"gu": "Gujarati",
	"kn": "Kannada",
	"ml": "Malayalam",
	"pa": "Punjabi",
}

// Aligner is the part of the engine the HTTP handlers use.
type Aligner interface {
	TranslateWithAlignment(ctx context.Context, text, targetLang string) (*engine.Result, error)
}

type Language struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type Config struct {
	DefaultLang string
	Languages   []string // default first
	RateLimit   float64  // requests per second per client; ≤ 0 disables limiting
	Timeout     time.Duration
}

type Server struct {
	aligner   Aligner
	cfg       Config
	languages []Language
	known     map[string]bool
	limiters  *lru.Cache[string, *rate.Limiter]
	log       *zap.Logger
}

func New(a Aligner, cfg Config) (*Server, error) {
	cfg.DefaultLang = strings.ToLower(cfg.DefaultLang)
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	limiters, err := lru.New[string, *rate.Limiter](limiterCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create limiter cache: %w", err)
	}

	s := &Server{
		aligner:  a,
		cfg:      cfg,
		known:    make(map[string]bool),
		limiters: limiters,
		log:      logging.L().Named("server"),
	}

	codes := append([]string{cfg.DefaultLang}, cfg.Languages...)
	for _, code := range codes {
		code = strings.ToLower(code)
		if code == "" || s.known[code] {
			continue
		}
		s.known[code] = true
		s.languages = append(s.languages, Language{Code: code, Label: labelFor(code)})
	}
	return s, nil
}

// Router builds the gin engine with logging and recovery middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(s.requestLogger(), s.recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/languages", s.handleLanguages)
	api.POST("/translate", s.rateLimit(), s.handleTranslate)
	api.POST("/download", s.handleDownload)

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type translateRequest struct {
	Text           string `json:"text" form:"text"`
	TargetLanguage string `json:"target_language" form:"target_language"`
}

type downloadRequest struct {
	TranslatedText string `json:"translated_text" form:"translated_text"`
	TargetLanguage string `json:"target_language" form:"target_language"`
}

func (s *Server) handleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, s.languages)
}

func (s *Server) handleTranslate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lang := s.resolveLanguage(req.TargetLanguage)
	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgEmptyText, "target_language": lang})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.Timeout)
	defer cancel()

	res, err := s.aligner.TranslateWithAlignment(ctx, text, lang)
	if err != nil {
		_ = c.Error(err)
		status := http.StatusBadGateway
		if errors.Is(err, engine.ErrEmptyInput) || errors.Is(err, engine.ErrUnsupportedLanguage) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": "Translation failed: " + failureDetail(err), "target_language": lang})
		return
	}

	c.JSON(http.StatusOK, res)
}

func (s *Server) handleDownload(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lang := strings.ToLower(strings.TrimSpace(req.TargetLanguage))
	if lang == "" {
		lang = s.cfg.DefaultLang
	}
	text := strings.TrimSpace(req.TranslatedText)
	if text == "" {
		text = msgNoDownload
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="translation_%s.txt"`, lang))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// resolveLanguage falls back to the default for unknown codes.
func (s *Server) resolveLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if !s.known[code] {
		return s.cfg.DefaultLang
	}
	return code
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.RateLimit <= 0 {
			c.Next()
			return
		}

		key := c.ClientIP()
		limiter, ok := s.limiters.Get(key)
		if !ok {
			burst := int(s.cfg.RateLimit)
			if burst < 1 {
				burst = 1
			}
			limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), burst)
			s.limiters.Add(key, limiter)
		}

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, try again later."})
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}
		s.log.Info("http request", fields...)
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error("panic recovered",
					zap.Any("error", err),
					zap.ByteString("stack", debug.Stack()),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

// failureDetail drops the engine's own "translation failed" prefix so the
// client message does not repeat it.
func failureDetail(err error) string {
	return strings.TrimPrefix(err.Error(), engine.ErrTranslation.Error()+": ")
}

func labelFor(code string) string {
	if label, ok := LanguageLabels[code]; ok {
		return label
	}
	return strings.ToUpper(code)
}
