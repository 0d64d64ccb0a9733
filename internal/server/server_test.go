package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/valpere/smtalign/internal/engine"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAligner struct {
	calls    int
	lastLang string
	err      error
	panics   bool
}

func (f *fakeAligner) TranslateWithAlignment(ctx context.Context, text, lang string) (*engine.Result, error) {
	f.calls++
	f.lastLang = lang
	if f.panics {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	e := engine.New(engine.Config{DefaultLang: lang}, nil)
	res, err := e.AlignTokens([]string{"hello", "!"}, []string{"नमस्ते", "!"})
	if err != nil {
		return nil, err
	}
	res.TargetLanguage = lang
	res.Backend = "fake"
	return res, nil
}

func newTestServer(t *testing.T, a Aligner, rateLimit float64) *gin.Engine {
	t.Helper()
	s, err := New(a, Config{DefaultLang: "hi", Languages: []string{"hi", "bn", "ta", "xx"}, RateLimit: rateLimit})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s.Router()
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var got map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return got
}

func TestHealthz(t *testing.T) {
	r := newTestServer(t, &fakeAligner{}, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestLanguages(t *testing.T) {
	r := newTestServer(t, &fakeAligner{}, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/languages", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var langs []Language
	if err := json.Unmarshal(w.Body.Bytes(), &langs); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	want := []Language{{"hi", "Hindi"}, {"bn", "Bengali"}, {"ta", "Tamil"}, {"xx", "XX"}}
	if len(langs) != len(want) {
		t.Fatalf("expected %d languages, got %v", len(want), langs)
	}
	for i := range want {
		if langs[i] != want[i] {
			t.Errorf("language %d = %+v, want %+v", i, langs[i], want[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	a := &fakeAligner{}
	r := newTestServer(t, a, 0)

	w := postJSON(r, "/api/translate", `{"text":"Hello!","target_language":"TA"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if a.lastLang != "ta" {
		t.Errorf("expected language ta, got %s", a.lastLang)
	}

	got := decode(t, w)
	for _, key := range []string{"source_tokens", "target_tokens", "alignments", "alignment_grid",
		"alignment_pairs", "giza_alignment", "alignment_model", "phrase_pairs", "phrase_based_translation"} {
		if _, ok := got[key]; !ok {
			t.Errorf("response missing %s", key)
		}
	}
	if got["giza_alignment"] != "0-0 1-1" {
		t.Errorf("unexpected giza alignment %v", got["giza_alignment"])
	}
}

func TestTranslate_FormEncoded(t *testing.T) {
	a := &fakeAligner{}
	r := newTestServer(t, a, 0)

	form := url.Values{"text": {"Hello!"}, "target_language": {"bn"}}
	req := httptest.NewRequest(http.MethodPost, "/api/translate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if a.lastLang != "bn" {
		t.Errorf("expected language bn, got %s", a.lastLang)
	}
}

func TestTranslate_UnknownLanguageFallsBack(t *testing.T) {
	a := &fakeAligner{}
	r := newTestServer(t, a, 0)

	w := postJSON(r, "/api/translate", `{"text":"Hello","target_language":"klingon"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if a.lastLang != "hi" {
		t.Errorf("expected fallback to hi, got %s", a.lastLang)
	}
}

func TestTranslate_EmptyText(t *testing.T) {
	a := &fakeAligner{}
	r := newTestServer(t, a, 0)

	w := postJSON(r, "/api/translate", `{"text":"   ","target_language":"hi"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if got := decode(t, w); got["error"] != "Enter a sentence to translate." {
		t.Errorf("unexpected error message %v", got["error"])
	}
	if a.calls != 0 {
		t.Error("engine should not be called for empty text")
	}
}

func TestTranslate_Failure(t *testing.T) {
	a := &fakeAligner{err: fmt.Errorf("%w: quota exceeded", engine.ErrTranslation)}
	r := newTestServer(t, a, 0)

	w := postJSON(r, "/api/translate", `{"text":"Hello","target_language":"hi"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	msg, _ := decode(t, w)["error"].(string)
	if msg != "Translation failed: quota exceeded" {
		t.Errorf("unexpected error message %q", msg)
	}
}

func TestTranslate_BadJSON(t *testing.T) {
	r := newTestServer(t, &fakeAligner{}, 0)

	w := postJSON(r, "/api/translate", `{"text":`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestTranslate_RateLimited(t *testing.T) {
	r := newTestServer(t, &fakeAligner{}, 1)

	first := postJSON(r, "/api/translate", `{"text":"Hello"}`)
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}
	second := postJSON(r, "/api/translate", `{"text":"Hello"}`)
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", second.Code)
	}

	// Other endpoints are not limited.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/languages", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for languages, got %d", w.Code)
	}
}

func TestTranslate_PanicRecovered(t *testing.T) {
	r := newTestServer(t, &fakeAligner{panics: true}, 0)

	w := postJSON(r, "/api/translate", `{"text":"Hello"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestDownload(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantBody string
		wantFile string
	}{
		{"text", `{"translated_text":" नमस्ते दुनिया ","target_language":"hi"}`, "नमस्ते दुनिया", "translation_hi.txt"},
		{"empty", `{"translated_text":"","target_language":"TA"}`, "No translated text available.", "translation_ta.txt"},
		{"default language", `{"translated_text":"x"}`, "x", "translation_hi.txt"},
	}

	r := newTestServer(t, &fakeAligner{}, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/api/download", tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
				t.Errorf("unexpected content type %q", ct)
			}
			if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, tt.wantFile) || !strings.HasPrefix(cd, "attachment") {
				t.Errorf("unexpected content disposition %q", cd)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}
