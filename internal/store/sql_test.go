package store

import (
	"context"
	"testing"
)

func TestSQL_SessionStore(t *testing.T) {
	testSessionStore(t, NewSQL(newTestDB(t)))
}

func TestSQL_ArtifactStores(t *testing.T) {
	s := NewSQL(newTestDB(t))
	testArtifactStores(t, s, s)
}

func TestSQL_IdempotencyStore(t *testing.T) {
	testIdempotencyStore(t, NewSQL(newTestDB(t)))
}

func TestSQL_Stats(t *testing.T) {
	ctx := context.Background()
	s := NewSQL(newTestDB(t))
	_, _ = s.Increment(ctx, "a@b.com")
	_, _ = s.Increment(ctx, "c@d.com")
	testArtifactStores(t, s, s)

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st != (Stats{Sessions: 2, Bots: 4, Submissions: 2}) {
		t.Fatalf("unexpected stats %+v", st)
	}
}
