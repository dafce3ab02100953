// Package handlers provides the HTTP handlers of the salesbot API.
//
// This file defines the response helpers every endpoint uses, so that
// failures share one envelope and service errors map to statuses in one
// place.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "Bot not found"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-salesbot-backend/internal/http/middleware"
	"github.com/tbourn/go-salesbot-backend/internal/services"
	"github.com/tbourn/go-salesbot-backend/internal/upstream"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"Bot not found"`
	// Underlying error text, only in development
	Details string `json:"details,omitempty"`
	// Set on quota rejections
	Remaining    *int `json:"remaining,omitempty"    example:"0"`
	SessionCount *int `json:"sessionCount,omitempty" example:"50"`
}

// fail aborts the request with a structured error. Server errors (>=500)
// are logged with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	abort(c, status, ErrorResponse{Code: code, Message: msg})
}

func abort(c *gin.Context, status int, resp ErrorResponse) {
	resp.RequestID = middleware.GetRequestID(c)
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", resp.Code).
			Str("message", resp.Message).
			Str("details", resp.Details).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail for the router's fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// failQuota rejects a request made at the session ceiling.
func failQuota(c *gin.Context, count int) {
	zero := 0
	abort(c, http.StatusTooManyRequests, ErrorResponse{
		Code:         ErrCodeQuotaExceeded,
		Message:      msgQuotaExceeded,
		Remaining:    &zero,
		SessionCount: &count,
	})
}

// failErr maps a service error to a response. notConfigured is the message
// used when the required upstream has no credential.
//
//   - *services.ValidationError → 400
//   - services.ErrBotNotFound → 404
//   - upstream.ErrNotConfigured → 500 not_configured
//   - *upstream.Error with 400/404/429 → same status; anything else → 502
//   - everything else → 500 internal_error
func (h *Handlers) failErr(c *gin.Context, err error, notConfigured string) {
	var (
		ve *services.ValidationError
		ue *upstream.Error
	)
	switch {
	case errors.As(err, &ve):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, ve.Error())
	case errors.Is(err, services.ErrBotNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, msgBotNotFound)
	case errors.Is(err, upstream.ErrNotConfigured):
		fail(c, http.StatusInternalServerError, ErrCodeNotConfigured, notConfigured)
	case errors.As(err, &ue):
		status, code := upstreamStatus(ue.Status)
		msg := ue.Message
		if msg == "" {
			msg = ue.Service + " request failed"
		}
		abort(c, status, ErrorResponse{Code: code, Message: msg, Details: h.details(err)})
	default:
		abort(c, http.StatusInternalServerError, ErrorResponse{
			Code:    ErrCodeInternal,
			Message: msgInternal,
			Details: h.details(err),
		})
	}
}

// upstreamStatus passes through client-class statuses the caller can act
// on. Credential failures and outages are the server's problem.
func upstreamStatus(status int) (int, string) {
	switch status {
	case http.StatusBadRequest:
		return status, ErrCodeBadRequest
	case http.StatusNotFound:
		return status, ErrCodeNotFound
	case http.StatusTooManyRequests:
		return status, ErrCodeRateLimited
	default:
		return http.StatusBadGateway, ErrCodeUpstream
	}
}

func (h *Handlers) details(err error) string {
	if !h.dev || err == nil {
		return ""
	}
	return err.Error()
}
