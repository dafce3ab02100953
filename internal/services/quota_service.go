package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-salesbot-backend/internal/observability"
	"github.com/tbourn/go-salesbot-backend/internal/store"
)

// MaxSessionsPerUser is the number of model-backed operations a user may
// make before an explicit reset.
const MaxSessionsPerUser = 50

// Usage is a user's position against the session ceiling.
type Usage struct {
	Count     int `json:"sessionCount"`
	Remaining int `json:"remaining"`
	Max       int `json:"maxSessions"`
}

func usageOf(count int) Usage {
	rem := MaxSessionsPerUser - count
	if rem < 0 {
		rem = 0
	}
	return Usage{Count: count, Remaining: rem, Max: MaxSessionsPerUser}
}

// SessionUsage is one row of the admin session dump.
type SessionUsage struct {
	Email        string `json:"email"`
	SessionCount int    `json:"sessionCount"`
	Remaining    int    `json:"remaining"`
}

// QuotaService enforces the per-user session ceiling on top of a
// store.SessionStore. Check, work, and increment for one user run under a
// per-user lock so concurrent requests cannot both pass the last slot.
// When the store is shared between processes (store.SlotReserver) the slot
// is reserved on the store before the work runs and released if the work
// does not count.
type QuotaService struct {
	Store store.SessionStore
	Log   zerolog.Logger

	locks keyLock
}

// NewQuotaService returns a QuotaService over st.
func NewQuotaService(st store.SessionStore, log zerolog.Logger) *QuotaService {
	return &QuotaService{Store: st, Log: log}
}

// NormalizeUserID trims surrounding whitespace; ids are otherwise compared
// verbatim.
func NormalizeUserID(id string) string { return strings.TrimSpace(id) }

// Usage reports the user's current count. Unseen users have a count of 0.
func (s *QuotaService) Usage(ctx context.Context, userID string) (Usage, error) {
	ctx, span := otel.Tracer("services/QuotaService").Start(ctx, "Usage")
	defer span.End()

	n, err := s.Store.Count(ctx, NormalizeUserID(userID))
	if err != nil {
		return Usage{}, err
	}
	return usageOf(n), nil
}

// Consume runs op if the user is below the ceiling and increments the count
// when op succeeds and reports counted. At the ceiling it returns
// ErrQuotaExceeded without calling op.
func (s *QuotaService) Consume(ctx context.Context, userID string, op func(context.Context) (counted bool, err error)) (Usage, error) {
	userID = NormalizeUserID(userID)
	ctx, span := otel.Tracer("services/QuotaService").Start(ctx, "Consume",
		trace.WithAttributes(attribute.Int("quota.max", MaxSessionsPerUser)),
	)
	defer span.End()

	unlock := s.locks.Lock(userID)
	defer unlock()

	if rs, ok := s.Store.(store.SlotReserver); ok {
		return s.consumeReserved(ctx, span, rs, userID, op)
	}

	n, err := s.Store.Count(ctx, userID)
	if err != nil {
		return Usage{}, err
	}
	if n >= MaxSessionsPerUser {
		observability.QuotaRejections.Inc()
		span.SetAttributes(attribute.Bool("quota.exceeded", true))
		return usageOf(n), ErrQuotaExceeded
	}

	counted, err := op(ctx)
	if err != nil {
		return usageOf(n), err
	}
	if !counted {
		return usageOf(n), nil
	}

	n, err = s.Store.Increment(ctx, userID)
	if err != nil {
		return Usage{}, err
	}
	s.Log.Info().Int("session_count", n).Int("max", MaxSessionsPerUser).Msg("session consumed")
	return usageOf(n), nil
}

func (s *QuotaService) consumeReserved(ctx context.Context, span trace.Span, rs store.SlotReserver, userID string, op func(context.Context) (bool, error)) (Usage, error) {
	n, ok, err := rs.Reserve(ctx, userID, MaxSessionsPerUser)
	if err != nil {
		return Usage{}, err
	}
	if !ok {
		observability.QuotaRejections.Inc()
		span.SetAttributes(attribute.Bool("quota.exceeded", true))
		return usageOf(n), ErrQuotaExceeded
	}

	counted, err := op(ctx)
	if err != nil || !counted {
		// The request may already be cancelled; the slot must still go back.
		left, rerr := rs.Release(context.WithoutCancel(ctx), userID)
		if rerr != nil {
			s.Log.Warn().Err(rerr).Msg("release session slot")
			left = n - 1
		}
		return usageOf(left), err
	}
	s.Log.Info().Int("session_count", n).Int("max", MaxSessionsPerUser).Msg("session consumed")
	return usageOf(n), nil
}

// Increment counts one session for the user unless the ceiling is reached.
func (s *QuotaService) Increment(ctx context.Context, userID string) (Usage, error) {
	return s.Consume(ctx, userID, func(context.Context) (bool, error) { return true, nil })
}

// Reset sets the user's count to zero.
func (s *QuotaService) Reset(ctx context.Context, userID string) (Usage, error) {
	userID = NormalizeUserID(userID)
	ctx, span := otel.Tracer("services/QuotaService").Start(ctx, "Reset")
	defer span.End()

	unlock := s.locks.Lock(userID)
	defer unlock()

	if err := s.Store.Reset(ctx, userID); err != nil {
		return Usage{}, err
	}
	s.Log.Info().Msg("session reset")
	return usageOf(0), nil
}

// List returns every tracked user with their count.
func (s *QuotaService) List(ctx context.Context) ([]SessionUsage, error) {
	ctx, span := otel.Tracer("services/QuotaService").Start(ctx, "List")
	defer span.End()

	rows, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SessionUsage, 0, len(rows))
	for _, r := range rows {
		u := usageOf(r.Count)
		out = append(out, SessionUsage{Email: r.UserID, SessionCount: u.Count, Remaining: u.Remaining})
	}
	return out, nil
}
