// Package httpapi wires the HTTP transport (Gin) to the salesbot services,
// middleware, and route handlers. It centralizes cross-cutting concerns:
// tracing, correlation ids, redacted logging, panic recovery, metrics,
// idempotency, rate limiting, CORS, security headers, and compression.
package httpapi

import (
	"context"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/tbourn/go-salesbot-backend/docs"
	"github.com/tbourn/go-salesbot-backend/internal/config"
	"github.com/tbourn/go-salesbot-backend/internal/http/handlers"
	"github.com/tbourn/go-salesbot-backend/internal/http/middleware"
	"github.com/tbourn/go-salesbot-backend/internal/salesbot"
	"github.com/tbourn/go-salesbot-backend/internal/services"
	"github.com/tbourn/go-salesbot-backend/internal/store"
	"github.com/tbourn/go-salesbot-backend/internal/upstream"
)

const apiPrefix = "/api"

// Deps are the backends the routes are built on.
type Deps struct {
	Stores   *store.Set
	Model    upstream.ModelClient
	Notifier upstream.Notifier
	Log      zerolog.Logger
	// Rand drives template choices; nil means salesbot.DefaultRand.
	Rand salesbot.Rand
}

// idempotencyLookup adapts an IdempotencyStore to the middleware callback.
func idempotencyLookup(st store.IdempotencyStore) middleware.IdempotencyLookup {
	return func(ctx context.Context, scope, key string, now time.Time) (middleware.IdempotentResult, bool, error) {
		rec, err := st.LookupIdempotency(ctx, scope, key, now)
		if err != nil || rec == nil {
			return middleware.IdempotentResult{}, false, nil
		}
		return middleware.IdempotentResult{ResourceID: rec.ResourceID, Status: rec.Status}, true, nil
	}
}

// unlimited reports routes exempt from rate limiting: health checks, docs, and
// the static front-end.
func unlimited(c *gin.Context) bool {
	p := c.Request.URL.Path
	return !strings.HasPrefix(p, apiPrefix+"/") || p == apiPrefix+"/health"
}

// RegisterRoutes attaches all middleware and endpoints to r.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per user email or IP, bypass on replay)
//  9. CORS, security headers, gzip
func RegisterRoutes(r *gin.Engine, cfg config.Config, d Deps) {
	r.HandleMethodNotAllowed = true
	dev := cfg.IsDevelopment()

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key", "Token"},
		SkipPaths:   []string{"/health", "/metrics"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery(middleware.RecoveryOptions{ExposeDetails: dev}))

	// 5) Global body size limit
	r.Use(limitBody(cfg.MaxBodyBytes))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		idempotencyLookup(d.Stores.Idempotency),
	))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByEmailOrIP()).Skip(unlimited)
	r.Use(rl.Handler())

	// 9) CORS, security headers, compression
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:            cfg.Security.EnableHSTS,
		HSTSMaxAge:            cfg.Security.HSTSMaxAge,
		NoStorePrefixes:       []string{apiPrefix},
		ContentSecurityPolicy: middleware.DefaultContentSecurityPolicy,
		APIPrefix:             apiPrefix,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// Fallbacks
	static := staticFallback(cfg.StaticDir)
	r.NoRoute(func(c *gin.Context) {
		if static(c) {
			return
		}
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "Endpoint not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Dependency injection: services ← stores/upstreams
	rnd := d.Rand
	if rnd == nil {
		rnd = salesbot.DefaultRand
	}
	quota := services.NewQuotaService(d.Stores.Sessions, d.Log.With().Str("service", "quota").Logger())
	h := handlers.New(handlers.Deps{
		Quota: quota,
		Proxy: &services.ProxyService{
			Model: d.Model,
			Quota: quota,
			Log:   d.Log.With().Str("service", "proxy").Logger(),
		},
		Bots: &services.BotService{
			Model:       d.Model,
			Quota:       quota,
			Bots:        d.Stores.Bots,
			Submissions: d.Stores.Submissions,
			Responder:   salesbot.NewResponder(rnd),
			Log:         d.Log.With().Str("service", "bots").Logger(),
		},
		Submissions: &services.SubmissionService{
			Submissions: d.Stores.Submissions,
			Log:         d.Log.With().Str("service", "submissions").Logger(),
		},
		Notify: &services.NotifyService{
			Notifier: d.Notifier,
			Log:      d.Log.With().Str("service", "notify").Logger(),
		},
		Stats:          d.Stores,
		Idempotency:    d.Stores.Idempotency,
		IdempotencyTTL: cfg.IdempotencyTTL,
		Status: handlers.Status{
			Environment:      cfg.Env,
			ModelProvider:    d.Model.Name(),
			ModelConfigured:  d.Model.Configured(),
			NotifyChannel:    notifierName(d.Notifier),
			NotifyConfigured: d.Notifier != nil && d.Notifier.Configured(),
		},
		Development: dev,
	})

	// Liveness/health
	r.GET("/health", h.Health)

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Public API
	api := r.Group(apiPrefix)
	{
		api.GET("/health", h.Health)

		// Model proxy and notifications
		api.POST("/claude", h.Claude)
		api.POST("/notify", h.Notify)

		// Sessions
		api.GET("/session/:email", h.GetSession)
		api.POST("/session", h.IncrementSession)
		api.POST("/session/reset", h.ResetSession)
		api.GET("/admin/sessions", h.AdminSessions)

		// Bots
		api.POST("/generate-bot", h.GenerateBot)
		api.POST("/chat", h.Chat)
		api.POST("/submit-bot", h.SubmitBot)
		api.GET("/bot/:botId", h.GetBot)
		api.GET("/bots", h.ListBots)
	}
}

func notifierName(n upstream.Notifier) string {
	if n == nil {
		return ""
	}
	return n.Name()
}

// corsMiddleware allows every origin when none are configured, and otherwise
// echoes allow-listed origins.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderIdempotencyKey},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		base.AllowAllOrigins = true
		// Force ACAO: * even for requests without an Origin header.
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{cors.New(base)}
}

// staticFallback serves files from dir for GET/HEAD requests outside the
// API, with "/" mapped to index.html. It reports whether it responded.
func staticFallback(dir string) func(*gin.Context) bool {
	root, err := filepath.Abs(dir)
	if dir == "" || err != nil {
		return func(*gin.Context) bool { return false }
	}
	return func(c *gin.Context) bool {
		m := c.Request.Method
		p := c.Request.URL.Path
		if (m != http.MethodGet && m != http.MethodHead) || strings.HasPrefix(p, apiPrefix+"/") {
			return false
		}
		rel := path.Clean("/" + p)
		if rel == "/" {
			rel = "/index.html"
		}
		full := filepath.Join(root, filepath.FromSlash(rel))
		if fi, err := os.Stat(full); err != nil || fi.IsDir() {
			return false
		}
		c.File(full)
		return true
	}
}

// limitBody caps the request body for all endpoints to maxBytes using
// http.MaxBytesReader. Reads past the cap fail and binding returns 400.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
