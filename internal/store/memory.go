package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
)

type idemKey struct{ scope, key string }

// Memory implements every store interface on process memory. Restarting the
// process discards everything.
type Memory struct {
	mu          sync.RWMutex
	sessions    map[string]domain.Session
	bots        map[string]domain.Bot
	botOrder    []string
	submissions []domain.Submission
	idem        map[idemKey]domain.Idempotency
	now         func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]domain.Session),
		bots:     make(map[string]domain.Bot),
		idem:     make(map[idemKey]domain.Idempotency),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Count implements SessionStore.
func (m *Memory) Count(_ context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[userID].Count, nil
}

// Increment implements SessionStore.
func (m *Memory) Increment(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[userID]
	s.UserID = userID
	s.Count++
	s.UpdatedAt = m.now()
	m.sessions[userID] = s
	return s.Count, nil
}

// Reset implements SessionStore.
func (m *Memory) Reset(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = domain.Session{UserID: userID, UpdatedAt: m.now()}
	return nil
}

// List implements SessionStore. Sessions are ordered by user id.
func (m *Memory) List(_ context.Context) ([]domain.Session, error) {
	m.mu.RLock()
	out := make([]domain.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// Len implements SessionStore.
func (m *Memory) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}

// SaveBot implements BotStore.
func (m *Memory) SaveBot(_ context.Context, b *domain.Bot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bots[b.ID]; ok {
		return ErrDuplicate
	}
	m.bots[b.ID] = cloneBot(*b)
	m.botOrder = append(m.botOrder, b.ID)
	return nil
}

// Bot implements BotStore.
func (m *Memory) Bot(_ context.Context, id string) (*domain.Bot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bots[id]
	if !ok {
		return nil, ErrNotFound
	}
	b = cloneBot(b)
	return &b, nil
}

// ListBots implements BotStore, newest first.
func (m *Memory) ListBots(_ context.Context, offset, limit int) ([]domain.Bot, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := len(m.botOrder)
	lo, hi := window(total, offset, limit)
	out := make([]domain.Bot, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, cloneBot(m.bots[m.botOrder[total-1-i]]))
	}
	return out, int64(total), nil
}

// SaveSubmission implements SubmissionStore.
func (m *Memory) SaveSubmission(_ context.Context, s *domain.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.submissions {
		if m.submissions[i].ID == s.ID {
			return ErrDuplicate
		}
	}
	m.submissions = append(m.submissions, cloneSubmission(*s))
	return nil
}

// Submission implements SubmissionStore.
func (m *Memory) Submission(_ context.Context, id string) (*domain.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.submissions {
		if m.submissions[i].ID == id {
			s := cloneSubmission(m.submissions[i])
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

// ListSubmissions implements SubmissionStore, newest first.
func (m *Memory) ListSubmissions(_ context.Context, offset, limit int) ([]domain.Submission, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := len(m.submissions)
	lo, hi := window(total, offset, limit)
	out := make([]domain.Submission, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, cloneSubmission(m.submissions[total-1-i]))
	}
	return out, int64(total), nil
}

// Stored records own their config maps; callers only ever see copies.
func cloneBot(b domain.Bot) domain.Bot {
	b.Config = b.Config.Clone()
	return b
}

func cloneSubmission(s domain.Submission) domain.Submission {
	s.Config = s.Config.Clone()
	return s
}

// LookupIdempotency implements IdempotencyStore.
func (m *Memory) LookupIdempotency(_ context.Context, scope, key string, now time.Time) (*domain.Idempotency, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.idem[idemKey{scope, key}]
	if !ok || !rec.ExpiresAt.After(now) {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// SaveIdempotency implements IdempotencyStore. An expired entry is replaced.
func (m *Memory) SaveIdempotency(_ context.Context, scope, key, resourceID string, status int, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	k := idemKey{scope, key}
	if rec, ok := m.idem[k]; ok && rec.ExpiresAt.After(now) {
		return ErrDuplicate
	}
	m.idem[k] = domain.Idempotency{
		ID:         uuid.NewString(),
		Scope:      scope,
		Key:        key,
		ResourceID: resourceID,
		Status:     status,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	return nil
}

// Stats reports collection sizes.
func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		Sessions:    int64(len(m.sessions)),
		Bots:        int64(len(m.bots)),
		Submissions: int64(len(m.submissions)),
	}, nil
}

// window clamps [offset, offset+limit) to [0, total).
func window(total, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return offset, end
}
