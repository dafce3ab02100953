package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-salesbot-backend/internal/config"
	"github.com/tbourn/go-salesbot-backend/internal/http/middleware"
	"github.com/tbourn/go-salesbot-backend/internal/salesbot"
	"github.com/tbourn/go-salesbot-backend/internal/store"
	"github.com/tbourn/go-salesbot-backend/internal/upstream"
)

type stubModel struct{ configured bool }

func (stubModel) Complete(context.Context, upstream.CompletionRequest) (upstream.Completion, error) {
	return upstream.Completion{Text: "model says hi"}, nil
}
func (m stubModel) Configured() bool { return m.configured }
func (stubModel) Name() string       { return "anthropic" }

func testConfig() config.Config {
	return config.Config{
		Env:            config.EnvProduction,
		MaxBodyBytes:   1 << 20,
		RateRPS:        100,
		RateBurst:      100,
		IdempotencyTTL: time.Hour,
		OTEL:           config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newTestRouter(t *testing.T, cfg config.Config) (*gin.Engine, *store.Set) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	set := store.NewMemorySet()
	r := gin.New()
	RegisterRoutes(r, cfg, Deps{
		Stores: set,
		Model:  stubModel{},
		Log:    zerolog.Nop(),
		Rand:   salesbot.FixedRand(0),
	})
	return r, set
}

func serve(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_HealthMetricsFallbacks(t *testing.T) {
	r, _ := newTestRouter(t, testConfig())

	for _, p := range []string{"/health", "/api/health"} {
		w := serve(r, http.MethodGet, p, "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"healthy"`) {
			t.Fatalf("GET %s = %d %s", p, w.Code, w.Body.String())
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Fatalf("GET %s: missing X-Request-ID", p)
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Fatalf("GET %s: expected allow-all CORS", p)
		}
	}

	w := serve(r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "salesbot_http_requests_total") {
		t.Fatalf("GET /metrics = %d", w.Code)
	}

	w = serve(r, http.MethodGet, "/api/nope", "")
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "Endpoint not found") {
		t.Fatalf("GET /api/nope = %d %s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodPost, "/health", "{}")
	if w.Code != http.StatusMethodNotAllowed || !strings.Contains(w.Body.String(), "method_not_allowed") {
		t.Fatalf("POST /health = %d", w.Code)
	}

	w = serve(r, http.MethodGet, "/swagger/index.html", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("swagger must be off by default, got %d", w.Code)
	}
}

func TestRegisterRoutes_EndToEndBotFlow(t *testing.T) {
	r, set := newTestRouter(t, testConfig())

	cfg := `{"businessName":"Acme Spa","businessType":"wellness","botName":"Lily","primaryGoal":"book","services":"Facial - RM150"}`
	w := serve(r, http.MethodPost, "/api/generate-bot", cfg, middleware.HeaderIdempotencyKey, "k-1")
	var gen struct {
		BotID   string `json:"botId"`
		BotType string `json:"botType"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &gen); err != nil || w.Code != 200 {
		t.Fatalf("generate = %d %s", w.Code, w.Body.String())
	}
	if gen.BotType != "template_generated" {
		t.Fatalf("unconfigured model must fall back to template, got %q", gen.BotType)
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Fatal("API responses must be no-store")
	}

	w = serve(r, http.MethodPost, "/api/generate-bot", cfg, middleware.HeaderIdempotencyKey, "k-1")
	if !strings.Contains(w.Body.String(), gen.BotID) {
		t.Fatalf("replay returned a different bot: %s", w.Body.String())
	}
	st, _ := set.Stats(context.Background())
	if st.Bots != 1 {
		t.Fatalf("bots stored = %d, want 1", st.Bots)
	}

	w = serve(r, http.MethodPost, "/api/chat", `{"message":"hello","botId":"`+gen.BotID+`"}`)
	if w.Code != 200 || !strings.Contains(w.Body.String(), "Lily") {
		t.Fatalf("chat = %d %s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodGet, "/api/admin/sessions", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("admin in production = %d", w.Code)
	}

	w = serve(r, http.MethodPost, "/api/generate-bot", cfg, middleware.HeaderIdempotencyKey, "bad key!")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad idempotency key = %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins(t *testing.T) {
	cfg := testConfig()
	cfg.CORS.AllowedOrigins = []string{"http://example.com"}
	r, _ := newTestRouter(t, cfg)

	w := serve(r, http.MethodGet, "/health", "", "Origin", "http://example.com")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
	w = serve(r, http.MethodGet, "/health", "", "Origin", "http://evil.test")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unlisted origin got ACAO %q", got)
	}
}

func TestRegisterRoutes_RateLimitsAPIButNotHealth(t *testing.T) {
	cfg := testConfig()
	cfg.RateRPS, cfg.RateBurst = 0.0001, 2
	r, _ := newTestRouter(t, cfg)

	for i := 0; i < 5; i++ {
		if w := serve(r, http.MethodGet, "/health", ""); w.Code != 200 {
			t.Fatalf("health check %d limited: %d", i, w.Code)
		}
	}
	var codes []int
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, http.MethodGet, "/api/session/a@b.com", "").Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
	// A different user has their own bucket.
	if w := serve(r, http.MethodGet, "/api/session/c@d.com", ""); w.Code != 200 {
		t.Fatalf("other user = %d", w.Code)
	}
}

func TestRegisterRoutes_StaticFrontEndAndSwagger(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>salesbot</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.StaticDir = dir
	cfg.SwaggerEnabled = true
	r, _ := newTestRouter(t, cfg)

	w := serve(r, http.MethodGet, "/", "")
	if w.Code != 200 || !strings.Contains(w.Body.String(), "salesbot") {
		t.Fatalf("GET / = %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("Content-Security-Policy") == "" {
		t.Fatal("front-end must carry a CSP")
	}
	if w := serve(r, http.MethodGet, "/../../etc/passwd", ""); w.Code != http.StatusNotFound {
		t.Fatalf("traversal = %d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/swagger/doc.json", ""); w.Code != 200 || !strings.Contains(w.Body.String(), "/api/generate-bot") {
		t.Fatalf("swagger doc = %d", w.Code)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}
