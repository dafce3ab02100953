package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(*gin.Context) string

// maxPeekBytes bounds how much of a JSON body KeyByEmailOrIP reads.
const maxPeekBytes = 64 << 10

// KeyByEmailOrIP charges requests to the user email they carry, from the
// :email path parameter or a top-level "userEmail" JSON field, and falls back
// to the client IP. The body is restored for the handler.
func KeyByEmailOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if e := strings.TrimSpace(c.Param("email")); e != "" {
			return "user:" + strings.ToLower(e)
		}
		if e := peekUserEmail(c); e != "" {
			return "user:" + strings.ToLower(e)
		}
		return "ip:" + c.ClientIP()
	}
}

func peekUserEmail(c *gin.Context) string {
	r := c.Request
	if r.Body == nil || r.Method == http.MethodGet || !strings.HasPrefix(c.ContentType(), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes+1))
	rest := r.Body
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(raw), rest), rest}
	if err != nil || len(raw) > maxPeekBytes {
		return ""
	}
	var peek struct {
		UserEmail string `json:"userEmail"`
	}
	if json.Unmarshal(raw, &peek) != nil {
		return ""
	}
	return strings.TrimSpace(peek.UserEmail)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local token bucket per key. Idle buckets are
// evicted every gcEvery lookups.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn KeyFunc
	skip  func(*gin.Context) bool

	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	lookups  uint64
}

const gcEvery = 5000

// NewRateLimiter returns a limiter refilling rps tokens per second up to
// burst (at least 1).
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// Skip exempts requests for which fn returns true, such as health checks.
func (rl *RateLimiter) Skip(fn func(*gin.Context) bool) *RateLimiter {
	rl.skip = fn
	return rl
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Evict before the lookup so a stale bucket for key is replaced too.
	rl.lookups++
	if rl.lookups >= gcEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Handler rejects requests over the limit with 429 and Retry-After.
// Idempotent replays marked by IdempotencyValidator are never limited.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsReplay(c) || (rl.skip != nil && rl.skip(c)) {
			c.Next()
			return
		}
		if rl.limiterFor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": GetRequestID(c),
			"code":       "too_many_requests",
			"message":    "rate limit exceeded",
		})
	}
}
