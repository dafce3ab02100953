package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
)

// CreateSubmission appends a submission record.
func CreateSubmission(ctx context.Context, db *gorm.DB, s *domain.Submission) error {
	return db.WithContext(ctx).Create(s).Error
}

// GetSubmission fetches a submission by id or returns ErrNotFound.
func GetSubmission(ctx context.Context, db *gorm.DB, id string) (*domain.Submission, error) {
	var s domain.Submission
	if err := db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CountSubmissions returns the number of stored submissions.
func CountSubmissions(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Submission{}).Count(&n).Error
	return n, err
}

// ListSubmissionsPage returns submissions newest first.
func ListSubmissionsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Submission, error) {
	var out []domain.Submission
	err := db.WithContext(ctx).
		Order("submitted_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
