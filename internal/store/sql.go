package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
	"github.com/tbourn/go-salesbot-backend/internal/repo"
)

// SQL implements every store interface on a GORM database, delegating to the
// repo package and translating its errors into store errors.
type SQL struct {
	db *gorm.DB
}

// NewSQL wraps an already migrated database.
func NewSQL(db *gorm.DB) *SQL { return &SQL{db: db} }

// Count implements SessionStore.
func (s *SQL) Count(ctx context.Context, userID string) (int, error) {
	return repo.GetSessionCount(ctx, s.db, userID)
}

// Increment implements SessionStore.
func (s *SQL) Increment(ctx context.Context, userID string) (int, error) {
	return repo.IncrementSession(ctx, s.db, userID)
}

// Reset implements SessionStore.
func (s *SQL) Reset(ctx context.Context, userID string) error {
	return repo.ResetSession(ctx, s.db, userID)
}

// List implements SessionStore.
func (s *SQL) List(ctx context.Context) ([]domain.Session, error) {
	return repo.ListSessions(ctx, s.db)
}

// Len implements SessionStore.
func (s *SQL) Len(ctx context.Context) (int, error) {
	n, err := repo.CountSessions(ctx, s.db)
	return int(n), err
}

// SaveBot implements BotStore.
func (s *SQL) SaveBot(ctx context.Context, b *domain.Bot) error {
	return repo.CreateBot(ctx, s.db, b)
}

// Bot implements BotStore.
func (s *SQL) Bot(ctx context.Context, id string) (*domain.Bot, error) {
	b, err := repo.GetBot(ctx, s.db, id)
	return b, mapErr(err)
}

// ListBots implements BotStore.
func (s *SQL) ListBots(ctx context.Context, offset, limit int) ([]domain.Bot, int64, error) {
	total, err := repo.CountBots(ctx, s.db)
	if err != nil {
		return nil, 0, err
	}
	items, err := repo.ListBotsPage(ctx, s.db, offset, limit)
	return items, total, err
}

// SaveSubmission implements SubmissionStore.
func (s *SQL) SaveSubmission(ctx context.Context, sub *domain.Submission) error {
	return repo.CreateSubmission(ctx, s.db, sub)
}

// Submission implements SubmissionStore.
func (s *SQL) Submission(ctx context.Context, id string) (*domain.Submission, error) {
	sub, err := repo.GetSubmission(ctx, s.db, id)
	return sub, mapErr(err)
}

// ListSubmissions implements SubmissionStore.
func (s *SQL) ListSubmissions(ctx context.Context, offset, limit int) ([]domain.Submission, int64, error) {
	total, err := repo.CountSubmissions(ctx, s.db)
	if err != nil {
		return nil, 0, err
	}
	items, err := repo.ListSubmissionsPage(ctx, s.db, offset, limit)
	return items, total, err
}

// LookupIdempotency implements IdempotencyStore.
func (s *SQL) LookupIdempotency(ctx context.Context, scope, key string, now time.Time) (*domain.Idempotency, error) {
	rec, err := repo.GetIdempotency(ctx, s.db, scope, key, now)
	return rec, mapErr(err)
}

// SaveIdempotency implements IdempotencyStore.
func (s *SQL) SaveIdempotency(ctx context.Context, scope, key, resourceID string, status int, ttl time.Duration) error {
	_, err := repo.CreateIdempotency(ctx, s.db, scope, key, resourceID, status, ttl)
	return mapErr(err)
}

// Stats reports table sizes in one pass.
func (s *SQL) Stats(ctx context.Context) (Stats, error) {
	st, err := repo.CollectStats(ctx, s.db)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Sessions: st.Sessions, Bots: st.Bots, Submissions: st.Submissions}, nil
}

// Close releases the underlying connection pool.
func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repo.ErrDuplicate):
		return ErrDuplicate
	default:
		return err
	}
}
