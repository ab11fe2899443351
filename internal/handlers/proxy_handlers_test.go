package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"watchtrade_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

func newProxyRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := handlers.NewProxyHandler()
	r := gin.New()
	r.GET("/proxy/image", h.ProxyImage)
	r.OPTIONS("/proxy/image", h.ProxyImage)
	r.POST("/proxy/llm", h.ProxyLLM)
	r.OPTIONS("/proxy/llm", h.ProxyLLM)
	return r
}

func TestProxyImageRejectsMissingURL(t *testing.T) {
	r := newProxyRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/proxy/image", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestProxyImageRejectsNonImageURL(t *testing.T) {
	r := newProxyRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/proxy/image?url=https://example.com/page.html", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestProxyImagePassesUpstreamStatusThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	r := newProxyRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/proxy/image?url="+upstream.URL+"/missing.jpg", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want upstream 404", w.Code)
	}
}

func TestProxyImageStreamsUpstreamBody(t *testing.T) {
	payload := "fake-image-bytes"
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		io.WriteString(w, payload)
	}))
	defer upstream.Close()

	r := newProxyRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/proxy/image?url="+upstream.URL+"/watch.png", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != payload {
		t.Errorf("body = %q, want %q", got, payload)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=86400" {
		t.Errorf("Cache-Control = %q, want public, max-age=86400", cc)
	}
	if cors := w.Header().Get("Access-Control-Allow-Origin"); cors != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", cors)
	}
}

func TestProxyImageOptionsPreflight(t *testing.T) {
	r := newProxyRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/proxy/image", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestProxyLLMOptionsPreflight(t *testing.T) {
	r := newProxyRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/proxy/llm", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if cors := w.Header().Get("Access-Control-Allow-Origin"); cors != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", cors)
	}
}

func TestProxyLLMFailsWithoutCredential(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	r := newProxyRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/proxy/llm", strings.NewReader(`{"messages":[]}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 when the key is missing", w.Code)
	}
}

func TestProxyLLMForwardsVerbatim(t *testing.T) {
	var gotAuth, gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		b, _ := io.ReadAll(req.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		io.WriteString(w, `{"upstream":"says no"}`)
	}))
	defer upstream.Close()

	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("LLM_API_URL", upstream.URL)
	r := newProxyRouter(t)

	body := `{"model":"gpt-4o-mini","messages":[{"role":"user","content":"hi"}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/proxy/llm", strings.NewReader(body))
	r.ServeHTTP(w, req)

	if gotAuth != "Bearer sk-test" {
		t.Errorf("upstream Authorization = %q, want Bearer sk-test", gotAuth)
	}
	if gotBody != body {
		t.Errorf("upstream body = %q, want the request body verbatim", gotBody)
	}
	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want the upstream status passed through", w.Code)
	}
	if got := w.Body.String(); got != `{"upstream":"says no"}` {
		t.Errorf("body = %q, want the upstream body verbatim", got)
	}
	if cors := w.Header().Get("Access-Control-Allow-Origin"); cors != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", cors)
	}
}
