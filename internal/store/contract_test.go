package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
	"github.com/tbourn/go-salesbot-backend/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:store_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// testSessionStore exercises the SessionStore contract against any backend.
func testSessionStore(t *testing.T, s SessionStore) {
	t.Helper()
	ctx := context.Background()

	if n, err := s.Count(ctx, "unseen@example.com"); err != nil || n != 0 {
		t.Fatalf("unseen Count = (%d, %v); want (0, nil)", n, err)
	}

	for i := 1; i <= 7; i++ {
		n, err := s.Increment(ctx, "a@b.com")
		if err != nil || n != i {
			t.Fatalf("Increment #%d = (%d, %v)", i, n, err)
		}
	}
	if n, _ := s.Count(ctx, "a@b.com"); n != 7 {
		t.Fatalf("Count after 7 increments = %d", n)
	}

	if _, err := s.Increment(ctx, "z@b.com"); err != nil {
		t.Fatalf("Increment z: %v", err)
	}
	if err := s.Reset(ctx, "a@b.com"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if n, _ := s.Count(ctx, "a@b.com"); n != 0 {
		t.Fatalf("Count after reset = %d", n)
	}
	if err := s.Reset(ctx, "never@b.com"); err != nil {
		t.Fatalf("Reset unseen: %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("List len = %d; want 3 (%+v)", len(list), list)
	}
	if list[0].UserID != "a@b.com" || list[0].Count != 0 || list[2].UserID != "z@b.com" || list[2].Count != 1 {
		t.Fatalf("unexpected list: %+v", list)
	}
	if n, err := s.Len(ctx); err != nil || n != 3 {
		t.Fatalf("Len = (%d, %v); want 3", n, err)
	}
}

func testSessionStoreConcurrent(t *testing.T, s SessionStore, workers int) {
	t.Helper()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Increment(ctx, "race@b.com"); err != nil {
				t.Errorf("Increment: %v", err)
			}
		}()
	}
	wg.Wait()
	if n, _ := s.Count(ctx, "race@b.com"); n != workers {
		t.Fatalf("concurrent increments lost updates: %d != %d", n, workers)
	}
}

func testArtifactStores(t *testing.T, bots BotStore, subs SubmissionStore) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		b := &domain.Bot{
			ID:        fmt.Sprintf("bot_%d", i),
			Kind:      domain.KindTemplateGenerated,
			Prompt:    "prompt",
			Config:    domain.BotConfig{BusinessName: "Acme Spa"},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := bots.SaveBot(ctx, b); err != nil {
			t.Fatalf("SaveBot: %v", err)
		}
	}
	got, err := bots.Bot(ctx, "bot_2")
	if err != nil || got.Config.BusinessName != "Acme Spa" {
		t.Fatalf("Bot = (%+v, %v)", got, err)
	}
	if _, err := bots.Bot(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	page, total, err := bots.ListBots(ctx, 1, 2)
	if err != nil || total != 4 || len(page) != 2 || page[0].ID != "bot_2" || page[1].ID != "bot_1" {
		t.Fatalf("ListBots = (%+v, %d, %v)", page, total, err)
	}

	for i := 0; i < 2; i++ {
		s := &domain.Submission{
			ID:          fmt.Sprintf("sub_%d", i),
			Status:      domain.SubmissionPending,
			SubmittedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := subs.SaveSubmission(ctx, s); err != nil {
			t.Fatalf("SaveSubmission: %v", err)
		}
	}
	sub, err := subs.Submission(ctx, "sub_0")
	if err != nil || sub.Status != domain.SubmissionPending {
		t.Fatalf("Submission = (%+v, %v)", sub, err)
	}
	if _, err := subs.Submission(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	items, n, err := subs.ListSubmissions(ctx, 0, 10)
	if err != nil || n != 2 || len(items) != 2 || items[0].ID != "sub_1" {
		t.Fatalf("ListSubmissions = (%+v, %d, %v)", items, n, err)
	}
}

func testIdempotencyStore(t *testing.T, s IdempotencyStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.LookupIdempotency(ctx, "/api/submit-bot", "k1", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}
	if err := s.SaveIdempotency(ctx, "/api/submit-bot", "k1", "sub_1", 200, time.Hour); err != nil {
		t.Fatalf("SaveIdempotency: %v", err)
	}
	rec, err := s.LookupIdempotency(ctx, "/api/submit-bot", "k1", time.Now())
	if err != nil || rec.ResourceID != "sub_1" || rec.Status != 200 {
		t.Fatalf("Lookup = (%+v, %v)", rec, err)
	}
	if err := s.SaveIdempotency(ctx, "/api/submit-bot", "k1", "sub_2", 200, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	// Past the TTL the key is forgotten.
	if _, err := s.LookupIdempotency(ctx, "/api/submit-bot", "k1", time.Now().Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired key to miss, got %v", err)
	}
}
