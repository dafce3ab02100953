package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
	"github.com/tbourn/go-salesbot-backend/internal/upstream"
)

// NotifyRequest carries what the business team is told about a user.
type NotifyRequest struct {
	Kind               string
	UserEmail          string
	UserName           string
	Config             domain.BotConfig
	SessionCount       int
	ConversationLength int
	Prompt             string
}

// NotifyService formats and sends notifications to the business team.
type NotifyService struct {
	Notifier upstream.Notifier
	Log      zerolog.Logger
	Now      func() time.Time
}

// Send formats req and delivers it. A missing credential is reported as
// upstream.ErrNotConfigured before anything is formatted.
func (s *NotifyService) Send(ctx context.Context, req NotifyRequest) error {
	ctx, span := otel.Tracer("services/NotifyService").Start(ctx, "Send",
		trace.WithAttributes(attribute.String("notify.kind", req.Kind)),
	)
	defer span.End()

	if s.Notifier == nil || !s.Notifier.Configured() {
		return upstream.ErrNotConfigured
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	n := upstream.FormatNotification(req.Kind, upstream.NotifyPayload{
		UserName:           req.UserName,
		UserEmail:          req.UserEmail,
		Config:             req.Config,
		SessionCount:       req.SessionCount,
		MaxSessions:        MaxSessionsPerUser,
		ConversationLength: req.ConversationLength,
		Prompt:             req.Prompt,
	}, now)

	if err := s.Notifier.Send(ctx, n); err != nil {
		s.Log.Error().Err(err).Str("channel", s.Notifier.Name()).Msg("notification failed")
		return err
	}
	s.Log.Info().Str("channel", s.Notifier.Name()).Str("kind", req.Kind).Msg("notification sent")
	return nil
}
