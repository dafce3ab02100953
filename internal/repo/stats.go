package repo

import (
	"context"

	"gorm.io/gorm"
)

// Stats is a snapshot of table sizes reported by the health endpoint.
type Stats struct {
	Sessions    int64
	Bots        int64
	Submissions int64
}

// CollectStats counts rows in the session, bot, and submission tables.
func CollectStats(ctx context.Context, db *gorm.DB) (Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.Sessions, err = CountSessions(ctx, db); err != nil {
		return Stats{}, err
	}
	if st.Bots, err = CountBots(ctx, db); err != nil {
		return Stats{}, err
	}
	if st.Submissions, err = CountSubmissions(ctx, db); err != nil {
		return Stats{}, err
	}
	return st, nil
}
