package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
	"github.com/tbourn/go-salesbot-backend/internal/store"
)

// SubmissionService appends bot configurations for follow-up by the
// business team. Submissions are not validated; a partial configuration is
// still worth a call back.
type SubmissionService struct {
	Submissions store.SubmissionStore
	Log         zerolog.Logger
	Now         func() time.Time
}

// Submit stores cfg as a pending submission with a fresh id.
func (s *SubmissionService) Submit(ctx context.Context, cfg domain.BotConfig, userEmail, userName string) (*domain.Submission, error) {
	ctx, span := otel.Tracer("services/SubmissionService").Start(ctx, "Submit")
	defer span.End()

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	sub := &domain.Submission{
		ID:          newBotID(now),
		Config:      cfg.Normalize(),
		UserEmail:   NormalizeUserID(userEmail),
		UserName:    userName,
		Status:      domain.SubmissionPending,
		SubmittedAt: now,
	}
	if err := s.Submissions.SaveSubmission(ctx, sub); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("submission.id", sub.ID))
	s.Log.Info().Str("submission_id", sub.ID).Msg("bot submitted")
	return sub, nil
}

// ListPage returns submissions newest first.
func (s *SubmissionService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Submission, int64, error) {
	ctx, span := otel.Tracer("services/SubmissionService").Start(ctx, "ListPage",
		trace.WithAttributes(attribute.Int("page", page), attribute.Int("page_size", pageSize)),
	)
	defer span.End()

	offset, limit := pageBounds(page, pageSize)
	return s.Submissions.ListSubmissions(ctx, offset, limit)
}
