// Package handlers defines the error codes returned in the error envelope.
//
// Codes are lowercase snake_case and stable; clients branch on them rather
// than on messages. Every error response carries an HTTP status and one of
// these codes.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "quota_exceeded",
//	  "message": "Session limit reached. Please reset your session.",
//	  "remaining": 0,
//	  "sessionCount": 50
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeQuotaExceeded = "quota_exceeded"
	ErrCodeUpstream      = "upstream_error"
	ErrCodeNotConfigured = "not_configured"
)

// User-facing messages shared by several endpoints.
const (
	msgInvalidJSON      = "invalid JSON body"
	msgQuotaExceeded    = "Session limit reached. Please reset your session."
	msgInternal         = "Internal server error"
	msgBotNotFound      = "Bot not found"
	msgEndpointNotFound = "Endpoint not found"
)
