package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client's idempotency key on POSTs.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
)

var defaultIdemPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// IdempotentResult is what a previously completed keyed request produced.
type IdempotentResult struct {
	ResourceID string
	Status     int
}

// IdempotencyLookup finds the unexpired result recorded for (scope, key).
// Lookup errors are treated as a miss.
type IdempotencyLookup func(ctx context.Context, scope, key string, now time.Time) (IdempotentResult, bool, error)

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps key length; 0 means 200.
	MaxLen int
	// Pattern restricts key characters; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
	// Now is the clock used for expiry; nil means time.Now.
	Now func() time.Time
}

// IdempotencyScope is the namespace keys are recorded under: the route
// pattern, so the same key on two endpoints does not collide.
func IdempotencyScope(c *gin.Context) string {
	return c.Request.Method + " " + c.FullPath()
}

// GetIdempotencyKey returns the validated key stashed by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, _ := c.Get(ctxKeyIdemKey)
	s, _ := v.(string)
	return s, s != ""
}

// Replay returns the stored result when this request repeats a completed one.
func Replay(c *gin.Context) (IdempotentResult, bool) {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return IdempotentResult{}, false
	}
	r, ok := v.(IdempotentResult)
	return r, ok
}

// IsReplay reports whether Replay would succeed.
func IsReplay(c *gin.Context) bool {
	_, ok := Replay(c)
	return ok
}

// IdempotencyValidator validates the Idempotency-Key header on unsafe
// methods and looks up a prior result. It never serves the replay itself;
// handlers call Replay and rebuild their response from the stored resource.
// A malformed key is rejected with 400.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultIdemPattern
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": GetRequestID(c),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			res, ok, err := lookup(c.Request.Context(), IdempotencyScope(c), key, now().UTC())
			if err == nil && ok {
				c.Set(ctxKeyIdemReplay, res)
			}
		}
		c.Next()
	}
}
