package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
)

// GetSessionCount returns the stored count for userID, or 0 when no row exists.
func GetSessionCount(ctx context.Context, db *gorm.DB, userID string) (int, error) {
	var s domain.Session
	err := db.WithContext(ctx).First(&s, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return s.Count, nil
}

// IncrementSession adds one to the user's count, creating the row on first
// use, and returns the new value. The upsert and read-back share a
// transaction so concurrent callers each observe their own increment.
func IncrementSession(ctx context.Context, db *gorm.DB, userID string) (int, error) {
	var n int
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		row := domain.Session{UserID: userID, Count: 1, UpdatedAt: now}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"count":      gorm.Expr("sessions.count + 1"),
				"updated_at": now,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		var s domain.Session
		if err := tx.First(&s, "user_id = ?", userID).Error; err != nil {
			return err
		}
		n = s.Count
		return nil
	})
	return n, err
}

// ResetSession sets the user's count to zero, creating the row if needed.
func ResetSession(ctx context.Context, db *gorm.DB, userID string) error {
	now := time.Now().UTC()
	row := domain.Session{UserID: userID, Count: 0, UpdatedAt: now}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{"count": 0, "updated_at": now}),
	}).Create(&row).Error
}

// ListSessions returns every session row ordered by user id.
func ListSessions(ctx context.Context, db *gorm.DB) ([]domain.Session, error) {
	var out []domain.Session
	err := db.WithContext(ctx).Order("user_id asc").Find(&out).Error
	return out, err
}

// CountSessions returns the number of tracked users.
func CountSessions(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Session{}).Count(&n).Error
	return n, err
}
