package upstream

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const serviceSendGrid = "sendgrid"

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridConfig configures the email channel.
type SendGridConfig struct {
	APIKey string
	From   string
	To     string
	// Timeout bounds each send; zero leaves only the caller's deadline.
	Timeout time.Duration
}

// SendGrid emails notifications through the SendGrid v3 API.
type SendGrid struct {
	client  mailSender
	from    string
	to      string
	timeout time.Duration
}

// NewSendGrid returns an email notifier. It is unconfigured when the key or
// recipient is blank.
func NewSendGrid(cfg SendGridConfig) *SendGrid {
	s := &SendGrid{from: cfg.From, to: strings.TrimSpace(cfg.To), timeout: cfg.Timeout}
	if cfg.APIKey != "" {
		s.client = sendgrid.NewSendClient(cfg.APIKey)
	}
	return s
}

func (s *SendGrid) Name() string     { return serviceSendGrid }
func (s *SendGrid) Configured() bool { return s.client != nil && s.to != "" }

// Send emails n to the configured recipient as plain text.
func (s *SendGrid) Send(ctx context.Context, n Notification) (err error) {
	ctx, done := instrument(ctx, serviceSendGrid, "send")
	defer func() { done(err) }()

	if !s.Configured() {
		return ErrNotConfigured
	}
	from := mail.NewEmail("Salesbot", s.from)
	to := mail.NewEmail("", s.to)
	msg := mail.NewSingleEmail(from, n.Subject, to, n.Body, "<pre>"+html.EscapeString(n.Body)+"</pre>")

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return &Error{Service: serviceSendGrid, Message: "send failed", Err: err}
	}
	if resp.StatusCode >= 400 {
		return &Error{Service: serviceSendGrid, Status: resp.StatusCode, Message: snippet([]byte(resp.Body))}
	}
	return nil
}
