// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lens

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AleutianAI/i18nlens/services/lens/config"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter builds a router over a temp workspace holding dict as ja.json.
func newTestRouter(t *testing.T, dict string, rc RouterConfig) *gin.Engine {
	t.Helper()
	ws := t.TempDir()
	if dict != "" {
		dir := filepath.Join(ws, "src", "locales")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "ja.json"), []byte(dict), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if rc.ServiceName == "" {
		rc.ServiceName = "i18nlens-test"
	}
	return NewRouter(NewService(ServiceConfig{Workspace: ws, Config: config.Default()}), rc)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHandleAnnotate_Success(t *testing.T) {
	router := newTestRouter(t, `{"greeting": "こんにちは"}`, RouterConfig{})

	w := doJSON(t, router, http.MethodPost, "/v1/lens/annotate", DocumentRequest{
		Source: `const s = t("greeting") + t("missing");`,
		Path:   "src/app.ts",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode[AnnotateResponse](t, w)
	if resp.Variant != "typescript" {
		t.Errorf("Variant = %q", resp.Variant)
	}
	if len(resp.Annotations) != 2 {
		t.Fatalf("expected 2 annotations, got %d", len(resp.Annotations))
	}

	first := resp.Annotations[0]
	if first.Key != "greeting" || first.Text != "こんにちは" || !first.Found {
		t.Errorf("unexpected first annotation %+v", first)
	}
	if first.Range.Start != 10 || first.StartUTF16.Column != 10 {
		t.Errorf("unexpected first position %+v / %+v", first.Range, first.StartUTF16)
	}

	second := resp.Annotations[1]
	if second.Found || second.Text != "No translation" {
		t.Errorf("unexpected second annotation %+v", second)
	}
}

func TestHandleAnnotate_RequestPatterns(t *testing.T) {
	router := newTestRouter(t, `{"saved": "保存しました"}`, RouterConfig{})

	w := doJSON(t, router, http.MethodPost, "/v1/lens/annotate", map[string]any{
		"source":                `snackbarOperations.open("saved"); t("saved");`,
		"object_property_calls": map[string][]string{"snackbarOperations": {"open"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode[AnnotateResponse](t, w)
	if len(resp.Annotations) != 1 || resp.Annotations[0].Callee != "snackbarOperations.open" {
		t.Errorf("unexpected annotations %+v", resp.Annotations)
	}
}

func TestHandleAnnotate_TSXByLanguageID(t *testing.T) {
	router := newTestRouter(t, `{"title": "タイトル"}`, RouterConfig{})

	w := doJSON(t, router, http.MethodPost, "/v1/lens/annotate", DocumentRequest{
		Source:     `const App = () => <h1>{t("title")}</h1>;`,
		LanguageID: "typescriptreact",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode[AnnotateResponse](t, w)
	if resp.Variant != "tsx" || len(resp.Annotations) != 1 || resp.Annotations[0].Text != "タイトル" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHandleAnnotate_MissingDictionary(t *testing.T) {
	router := newTestRouter(t, "", RouterConfig{})

	w := doJSON(t, router, http.MethodPost, "/v1/lens/annotate", DocumentRequest{Source: `t("k")`})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decode[AnnotateResponse](t, w)
	if len(resp.Annotations) != 1 || resp.Annotations[0].Found {
		t.Errorf("unexpected annotations %+v", resp.Annotations)
	}
}

func TestHandleAnnotate_BadRequests(t *testing.T) {
	router := newTestRouter(t, `{}`, RouterConfig{})

	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed", `{"source": `, CodeInvalidRequest},
		{"empty body", ``, CodeInvalidRequest},
		{"unsupported path", `{"source": "x", "path": "main.go"}`, CodeUnsupportedLanguage},
		{"unsupported language id", `{"source": "x", "language_id": "python"}`, CodeUnsupportedLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/lens/annotate", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			resp := decode[ErrorResponse](t, w)
			if resp.Code != tt.code {
				t.Errorf("Code = %q, want %q", resp.Code, tt.code)
			}
			if resp.RequestID == "" {
				t.Error("expected request id in error response")
			}
		})
	}
}

func TestHandleExtract(t *testing.T) {
	router := newTestRouter(t, `{}`, RouterConfig{})

	w := doJSON(t, router, http.MethodPost, "/v1/lens/extract", DocumentRequest{
		Source: `t(flag ? "a" : "b")`,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode[ExtractResponse](t, w)
	if len(resp.CallSites) != 1 {
		t.Fatalf("expected 1 call site, got %d", len(resp.CallSites))
	}
	keys := resp.CallSites[0].Keys
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Errorf("Keys = %v, want [b a]", keys)
	}
}

func TestHandleResolve(t *testing.T) {
	router := newTestRouter(t, `{"home": {"title": "ホーム"}}`, RouterConfig{})

	w := doJSON(t, router, http.MethodGet, "/v1/lens/resolve?key=home.title", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decode[ResolveResponse](t, w)
	if !resp.Found || resp.Text != "ホーム" || resp.Display != "ホーム" {
		t.Errorf("unexpected response %+v", resp)
	}

	w = doJSON(t, router, http.MethodGet, "/v1/lens/resolve?key=nope", nil)
	resp = decode[ResolveResponse](t, w)
	if resp.Found || resp.Display != "No translation" {
		t.Errorf("unexpected response %+v", resp)
	}

	w = doJSON(t, router, http.MethodGet, "/v1/lens/resolve", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without key, got %d", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	router := newTestRouter(t, `{"a": "1", "b": "2"}`, RouterConfig{})

	w := doJSON(t, router, http.MethodGet, "/v1/lens/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decode[HealthResponse](t, w)
	if resp.Status != "healthy" || resp.DictionaryEntries != 2 || resp.DisplayLanguage != "ja" {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(resp.DictionaryPaths) != 1 || !strings.HasSuffix(resp.DictionaryPaths[0], filepath.Join("src", "locales", "ja.json")) {
		t.Errorf("DictionaryPaths = %v", resp.DictionaryPaths)
	}
}

func TestRequestID(t *testing.T) {
	router := newTestRouter(t, `{}`, RouterConfig{})

	w := doJSON(t, router, http.MethodGet, "/v1/lens/health", nil)
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("expected generated request id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/lens/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestRateLimit(t *testing.T) {
	router := newTestRouter(t, `{}`, RouterConfig{RateLimit: 0.001, Burst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, doJSON(t, router, http.MethodGet, "/v1/lens/health", nil).Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	w := doJSON(t, router, http.MethodGet, "/v1/lens/health", nil)
	if resp := decode[ErrorResponse](t, w); resp.Code != CodeRateLimited {
		t.Errorf("Code = %q, want %q", resp.Code, CodeRateLimited)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, `{}`, RouterConfig{})
	doJSON(t, router, http.MethodGet, "/v1/lens/health", nil)

	w := doJSON(t, router, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "lens_http_requests_total") {
		t.Error("expected lens_http_requests_total in metrics output")
	}
}
