package handlers

import (
	"context"
	"time"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
	"github.com/tbourn/go-salesbot-backend/internal/services"
	"github.com/tbourn/go-salesbot-backend/internal/store"
	"github.com/tbourn/go-salesbot-backend/internal/upstream"
)

//
// Service contracts (context-aware)
//

// QuotaService reads and changes per-user session counters.
type QuotaService interface {
	Usage(ctx context.Context, userID string) (services.Usage, error)
	Increment(ctx context.Context, userID string) (services.Usage, error)
	Reset(ctx context.Context, userID string) (services.Usage, error)
	List(ctx context.Context) ([]services.SessionUsage, error)
}

// ProxyService forwards messages to the model under the caller's quota.
type ProxyService interface {
	Complete(ctx context.Context, userEmail string, messages []upstream.Message) (services.ProxyResult, error)
}

// BotService generates, answers for, and looks up bots.
type BotService interface {
	Generate(ctx context.Context, cfg domain.BotConfig, userEmail string) (*services.GenerateResult, error)
	Chat(ctx context.Context, req services.ChatRequest) (*services.ChatReply, error)
	Get(ctx context.Context, id string) (*services.Lookup, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Bot, int64, error)
}

// SubmissionService records bot configurations submitted for follow-up.
type SubmissionService interface {
	Submit(ctx context.Context, cfg domain.BotConfig, userEmail, userName string) (*domain.Submission, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Submission, int64, error)
}

// NotifyService delivers notifications to the business team.
type NotifyService interface {
	Send(ctx context.Context, req services.NotifyRequest) error
}

// StatsSource reports collection sizes for the health endpoint.
type StatsSource interface {
	Stats(ctx context.Context) (store.Stats, error)
}

// IdempotencyRecorder remembers the resource a keyed POST created.
type IdempotencyRecorder interface {
	SaveIdempotency(ctx context.Context, scope, key, resourceID string, status int, ttl time.Duration) error
}

//
// Handler wiring
//

// Status describes the configured upstreams for /health.
type Status struct {
	Environment      string
	ModelProvider    string
	ModelConfigured  bool
	NotifyChannel    string
	NotifyConfigured bool
}

// Deps are the collaborators of Handlers. Stats and Idempotency may be nil.
type Deps struct {
	Quota       QuotaService
	Proxy       ProxyService
	Bots        BotService
	Submissions SubmissionService
	Notify      NotifyService
	Stats       StatsSource
	Idempotency IdempotencyRecorder

	IdempotencyTTL time.Duration
	Status         Status
	// Development enables /api/admin/sessions and error details.
	Development bool
	Now         func() time.Time
}

// Handlers groups the salesbot HTTP endpoints.
type Handlers struct {
	quota  QuotaService
	proxy  ProxyService
	bots   BotService
	subs   SubmissionService
	notify NotifyService
	stats  StatsSource
	idem   IdempotencyRecorder

	idemTTL time.Duration
	status  Status
	dev     bool
	now     func() time.Time
}

// New constructs Handlers from d.
func New(d Deps) *Handlers {
	h := &Handlers{
		quota:   d.Quota,
		proxy:   d.Proxy,
		bots:    d.Bots,
		subs:    d.Submissions,
		notify:  d.Notify,
		stats:   d.Stats,
		idem:    d.Idempotency,
		idemTTL: d.IdempotencyTTL,
		status:  d.Status,
		dev:     d.Development,
		now:     d.Now,
	}
	if h.idemTTL <= 0 {
		h.idemTTL = 24 * time.Hour
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}
