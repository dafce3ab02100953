package upstream

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-salesbot-backend/internal/observability"
)

var tracer = otel.Tracer("github.com/tbourn/go-salesbot-backend/internal/upstream")

// instrument starts a client span for a gateway call. The returned func must
// be called with the call's error; it ends the span and records metrics.
func instrument(ctx context.Context, service, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, service+"."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("upstream.service", service)),
	)
	return ctx, func(err error) {
		observability.UpstreamLatency.WithLabelValues(service).Observe(time.Since(start).Seconds())
		outcome := observability.OutcomeOK
		switch {
		case errors.Is(err, ErrNotConfigured):
			outcome = observability.OutcomeNotConfigured
		case err != nil:
			outcome = observability.OutcomeError
		}
		observability.UpstreamRequests.WithLabelValues(service, outcome).Inc()

		var ue *Error
		if errors.As(err, &ue) && ue.Status > 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", ue.Status))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
