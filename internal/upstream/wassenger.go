package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const serviceWassenger = "wassenger"

// WassengerConfig configures the Wassenger WhatsApp gateway.
type WassengerConfig struct {
	Token   string
	BaseURL string
	Phone   string
}

// Wassenger sends WhatsApp messages through the Wassenger REST API.
type Wassenger struct {
	cfg WassengerConfig
	hc  *http.Client
}

// NewWassenger returns a WhatsApp notifier. A nil hc uses
// http.DefaultClient.
func NewWassenger(cfg WassengerConfig, hc *http.Client) *Wassenger {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.wassenger.com"
	}
	cfg.Phone = strings.TrimPrefix(strings.TrimSpace(cfg.Phone), "+")
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Wassenger{cfg: cfg, hc: hc}
}

func (w *Wassenger) Name() string     { return serviceWassenger }
func (w *Wassenger) Configured() bool { return w.cfg.Token != "" }

type wassengerMessage struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type wassengerError struct {
	Message string `json:"message"`
}

// Send posts the notification body to the configured phone number. The
// subject is not used; WhatsApp messages carry the body only.
func (w *Wassenger) Send(ctx context.Context, n Notification) (err error) {
	ctx, done := instrument(ctx, serviceWassenger, "send")
	defer func() { done(err) }()

	if !w.Configured() {
		return ErrNotConfigured
	}
	status, raw, err := postJSON(ctx, w.hc, serviceWassenger, w.cfg.BaseURL+"/v1/messages",
		map[string]string{"Token": w.cfg.Token},
		wassengerMessage{Phone: w.cfg.Phone, Message: n.Body})
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		msg := snippet(raw)
		var we wassengerError
		if json.Unmarshal(raw, &we) == nil && we.Message != "" {
			msg = we.Message
		}
		return &Error{Service: serviceWassenger, Status: status, Message: msg}
	}
	return nil
}

