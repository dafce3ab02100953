// Package store holds the state the salesbot keeps between requests: per-user
// session counters, generated bot artifacts, submissions, and idempotency
// keys. Each concern is an interface with memory, sqlite, and (for session
// counters) redis implementations; Open picks them from configuration.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
)

var (
	// ErrNotFound is returned when a bot, submission, or idempotency key does
	// not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when an idempotency key is already recorded.
	ErrDuplicate = errors.New("store: duplicate")
)

// SessionStore tracks how many model-backed operations each user has made.
// It never enforces a ceiling; callers check before incrementing.
type SessionStore interface {
	Count(ctx context.Context, userID string) (int, error)
	Increment(ctx context.Context, userID string) (int, error)
	Reset(ctx context.Context, userID string) error
	List(ctx context.Context) ([]domain.Session, error)
	Len(ctx context.Context) (int, error)
}

// SlotReserver is implemented by session stores shared between processes,
// where an in-process lock cannot order check and increment. Reserve
// increments the count only while it is below max, atomically on the
// server, and reports the resulting (or current, when refused) count.
// Release takes back one reservation whose work did not count.
type SlotReserver interface {
	Reserve(ctx context.Context, userID string, max int) (count int, ok bool, err error)
	Release(ctx context.Context, userID string) (int, error)
}

// BotStore keeps generated bot artifacts. Artifacts are write-once.
type BotStore interface {
	SaveBot(ctx context.Context, b *domain.Bot) error
	Bot(ctx context.Context, id string) (*domain.Bot, error)
	ListBots(ctx context.Context, offset, limit int) ([]domain.Bot, int64, error)
}

// SubmissionStore is the append-only submission log.
type SubmissionStore interface {
	SaveSubmission(ctx context.Context, s *domain.Submission) error
	Submission(ctx context.Context, id string) (*domain.Submission, error)
	ListSubmissions(ctx context.Context, offset, limit int) ([]domain.Submission, int64, error)
}

// IdempotencyStore remembers which resource a keyed POST produced.
type IdempotencyStore interface {
	LookupIdempotency(ctx context.Context, scope, key string, now time.Time) (*domain.Idempotency, error)
	SaveIdempotency(ctx context.Context, scope, key, resourceID string, status int, ttl time.Duration) error
}
