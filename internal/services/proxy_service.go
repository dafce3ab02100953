package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-salesbot-backend/internal/upstream"
)

// FallbackReply is returned when the model answers without any text.
const FallbackReply = "Sorry, I couldn't generate a response."

// ProxyResult is a proxied model answer with the caller's updated usage.
type ProxyResult struct {
	Message string
	Usage   Usage
}

// ProxyService forwards chat messages to the model on behalf of a user,
// charging one session per successful call.
type ProxyService struct {
	Model upstream.ModelClient
	Quota *QuotaService
	Log   zerolog.Logger
}

// Complete validates the request, then calls the model under the user's
// quota. A missing credential is reported before the quota is checked.
func (s *ProxyService) Complete(ctx context.Context, userEmail string, messages []upstream.Message) (ProxyResult, error) {
	ctx, span := otel.Tracer("services/ProxyService").Start(ctx, "Complete",
		trace.WithAttributes(attribute.Int("messages.count", len(messages))),
	)
	defer span.End()

	if !s.Model.Configured() {
		return ProxyResult{}, upstream.ErrNotConfigured
	}
	var missing []string
	if len(messages) == 0 {
		missing = append(missing, "messages")
	}
	if NormalizeUserID(userEmail) == "" {
		missing = append(missing, "userEmail")
	}
	if len(missing) > 0 {
		return ProxyResult{}, &ValidationError{Fields: missing}
	}

	var text string
	usage, err := s.Quota.Consume(ctx, userEmail, func(ctx context.Context) (bool, error) {
		out, err := s.Model.Complete(ctx, upstream.CompletionRequest{Messages: messages})
		if err != nil {
			return false, err
		}
		text = out.Text
		return true, nil
	})
	if err != nil {
		if !errors.Is(err, ErrQuotaExceeded) {
			s.Log.Error().Err(err).Str("provider", s.Model.Name()).Msg("model call failed")
		}
		return ProxyResult{Usage: usage}, err
	}
	if text == "" {
		text = FallbackReply
	}
	return ProxyResult{Message: text, Usage: usage}, nil
}
