// Package services holds the salesbot's application logic: per-user quota
// accounting, the model proxy, bot generation and chat, submissions, and
// notifications. Services return the sentinel and typed errors below;
// translating them to HTTP statuses is the handlers' job.
package services

import (
	"errors"
	"strings"
)

var (
	// ErrQuotaExceeded is returned when a user has used all model-backed
	// operations. The stored count is left unchanged.
	ErrQuotaExceeded = errors.New("session limit reached")

	// ErrBotNotFound indicates that no artifact or submission has the id.
	ErrBotNotFound = errors.New("bot not found")
)

// ValidationError lists request fields that are missing or malformed.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}
