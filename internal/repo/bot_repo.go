package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
)

// CreateBot inserts a generated bot artifact. Artifacts are never updated.
func CreateBot(ctx context.Context, db *gorm.DB, b *domain.Bot) error {
	return db.WithContext(ctx).Create(b).Error
}

// GetBot fetches an artifact by id or returns ErrNotFound.
func GetBot(ctx context.Context, db *gorm.DB, id string) (*domain.Bot, error) {
	var b domain.Bot
	if err := db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// CountBots returns the number of stored artifacts.
func CountBots(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Bot{}).Count(&n).Error
	return n, err
}

// ListBotsPage returns artifacts newest first. The caller computes offset
// and limit from the requested page.
func ListBotsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Bot, error) {
	var out []domain.Bot
	err := db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
