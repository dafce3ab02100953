package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tbourn/go-salesbot-backend/internal/config"
	"github.com/tbourn/go-salesbot-backend/internal/repo"
)

var (
	// ErrInvalidDriver is returned for an unknown STORE_DRIVER or QUOTA_DRIVER.
	ErrInvalidDriver = errors.New("store: invalid driver")
)

// Stats is a snapshot of collection sizes for the health endpoint.
type Stats struct {
	Sessions    int64 `json:"sessions"`
	Bots        int64 `json:"bots"`
	Submissions int64 `json:"submissions"`
}

type statsSource interface {
	Stats(ctx context.Context) (Stats, error)
}

// Set bundles the stores selected by configuration.
type Set struct {
	Sessions    SessionStore
	Bots        BotStore
	Submissions SubmissionStore
	Idempotency IdempotencyStore

	closers []io.Closer
}

// NewMemorySet returns a Set backed entirely by one in-memory store.
func NewMemorySet() *Set {
	m := NewMemory()
	return &Set{Sessions: m, Bots: m, Submissions: m, Idempotency: m}
}

// Options let callers inject pre-built backends (tests, or a shared pool).
type Options struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// Open builds the stores named by cfg. Artifacts, submissions and
// idempotency keys follow cfg.Driver; session counters follow
// cfg.QuotaDriver. A sqlite database is opened and migrated at most once.
func Open(ctx context.Context, cfg config.StoreConfig, opts Options) (*Set, error) {
	set := &Set{}
	mem := NewMemory()

	var sqlStore *SQL
	openSQL := func() (*SQL, error) {
		if sqlStore != nil {
			return sqlStore, nil
		}
		db := opts.DB
		if db == nil {
			var err error
			if db, err = repo.OpenSQLite(cfg.DBPath); err != nil {
				return nil, fmt.Errorf("open sqlite %q: %w", cfg.DBPath, err)
			}
		}
		if err := repo.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		sqlStore = NewSQL(db)
		if opts.DB == nil {
			set.closers = append(set.closers, sqlStore)
		}
		return sqlStore, nil
	}

	switch cfg.Driver {
	case config.DriverMemory, "":
		set.Bots, set.Submissions, set.Idempotency = mem, mem, mem
	case config.DriverSQLite:
		s, err := openSQL()
		if err != nil {
			return nil, err
		}
		set.Bots, set.Submissions, set.Idempotency = s, s, s
	default:
		return nil, fmt.Errorf("%w: store %q", ErrInvalidDriver, cfg.Driver)
	}

	switch cfg.QuotaDriver {
	case config.DriverMemory, "":
		set.Sessions = mem
	case config.DriverSQLite:
		s, err := openSQL()
		if err != nil {
			_ = set.Close()
			return nil, err
		}
		set.Sessions = s
	case config.DriverRedis:
		client := opts.Redis
		if client == nil {
			o, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				_ = set.Close()
				return nil, fmt.Errorf("parse REDIS_URL: %w", err)
			}
			client = redis.NewClient(o)
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = set.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		rs := NewRedisSessions(client)
		if opts.Redis == nil {
			set.closers = append(set.closers, rs)
		}
		set.Sessions = rs
	default:
		_ = set.Close()
		return nil, fmt.Errorf("%w: quota %q", ErrInvalidDriver, cfg.QuotaDriver)
	}

	return set, nil
}

// Stats reports collection sizes. Session counters may live in a different
// backend from artifacts, so they are always counted on their own store.
func (s *Set) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if src, ok := s.Bots.(statsSource); ok {
		var err error
		if st, err = src.Stats(ctx); err != nil {
			return Stats{}, err
		}
	} else {
		_, bots, err := s.Bots.ListBots(ctx, 0, 1)
		if err != nil {
			return Stats{}, err
		}
		_, subs, err := s.Submissions.ListSubmissions(ctx, 0, 1)
		if err != nil {
			return Stats{}, err
		}
		st.Bots, st.Submissions = bots, subs
	}
	n, err := s.Sessions.Len(ctx)
	if err != nil {
		return Stats{}, err
	}
	st.Sessions = int64(n)
	return st, nil
}

// Close releases backends opened by Open. Injected backends are left open.
func (s *Set) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
