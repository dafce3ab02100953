// Package upstream adapts the external gateways the salesbot talks to: a
// language-model API (Anthropic, Bedrock, or Gemini) and a notification
// channel (Wassenger WhatsApp or SendGrid email). Every adapter translates
// gateway failures into *Error so callers can map them to HTTP statuses.
package upstream

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when a gateway's credential is missing.
var ErrNotConfigured = errors.New("upstream: not configured")

// Error is a failed call to a gateway. Status is the gateway's HTTP status,
// or 0 when the request never got a response.
type Error struct {
	Service string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status > 0:
		return fmt.Sprintf("%s: status %d: %s", e.Service, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Service, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Service, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Temporary reports whether a retry could succeed.
func (e *Error) Temporary() bool {
	return e.Status == 0 || e.Status == 429 || e.Status >= 500
}
