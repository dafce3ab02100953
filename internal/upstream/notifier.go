package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tbourn/go-salesbot-backend/internal/config"
)

// Notification is an outbound message for the business team.
type Notification struct {
	Subject string
	Body    string
}

// Notifier delivers notifications over a single channel.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
	// Configured reports whether a credential is present.
	Configured() bool
	Name() string
}

// NewNotifier builds the notifier selected by cfg.Channel. hc carries the
// upstream timeout; SendGrid uses its own client and takes only the timeout.
func NewNotifier(cfg config.NotifyConfig, hc *http.Client) (Notifier, error) {
	if hc == nil {
		hc = http.DefaultClient
	}
	switch cfg.Channel {
	case config.ChannelWhatsApp, "":
		return NewWassenger(WassengerConfig{
			Token:   cfg.WassengerToken,
			BaseURL: cfg.WassengerBaseURL,
			Phone:   cfg.WhatsAppPhone,
		}, hc), nil
	case config.ChannelEmail:
		return NewSendGrid(SendGridConfig{
			APIKey:  cfg.SendGridAPIKey,
			From:    cfg.EmailFrom,
			To:      cfg.EmailTo,
			Timeout: hc.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("upstream: unknown notification channel %q", cfg.Channel)
	}
}
