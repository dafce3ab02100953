package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	serviceAnthropic = "anthropic"
	anthropicVersion = "2023-06-01"
)

// AnthropicConfig configures the Claude Messages API client.
type AnthropicConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int
	HTTPClient *http.Client
}

// Anthropic calls the Claude Messages API through the official SDK. The SDK
// runs on HTTPClient so the upstream timeout and trace propagation apply.
type Anthropic struct {
	cfg    AnthropicConfig
	client anthropic.Client
}

// NewAnthropic returns a client for cfg. A nil HTTPClient uses
// http.DefaultClient.
func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Anthropic{
		cfg: cfg,
		client: anthropic.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.BaseURL+"/"),
			option.WithHTTPClient(hc),
			option.WithHeader("anthropic-version", anthropicVersion),
			// Quota accounting assumes one upstream call per request.
			option.WithMaxRetries(0),
		),
	}
}

func (a *Anthropic) Name() string     { return serviceAnthropic }
func (a *Anthropic) Configured() bool { return a.cfg.APIKey != "" }

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends req to /v1/messages and returns the first text block.
func (a *Anthropic) Complete(ctx context.Context, req CompletionRequest) (out Completion, err error) {
	ctx, done := instrument(ctx, serviceAnthropic, "complete")
	defer func() { done(err) }()

	if !a.Configured() {
		return Completion{}, ErrNotConfigured
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.cfg.Model),
		MaxTokens: int64(req.MaxTokens),
		Messages:  anthropicMessages(req.Messages),
	}
	if params.MaxTokens <= 0 {
		params.MaxTokens = int64(a.cfg.MaxTokens)
	}
	if s := strings.TrimSpace(req.System); s != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return Completion{}, anthropicErr(ctx, err)
	}

	out = Completion{Model: string(msg.Model), StopReason: string(msg.StopReason)}
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.Text = block.Text
			break
		}
	}
	return out, nil
}

// anthropicMessages converts role-tagged turns; any role other than user is
// sent as the assistant.
func anthropicMessages(msgs []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == "user" {
			out = append(out, anthropic.NewUserMessage(block))
		} else {
			out = append(out, anthropic.NewAssistantMessage(block))
		}
	}
	return out
}

// anthropicErr maps SDK failures onto *Error. API errors keep the HTTP status
// and the message from the error body; everything else is transport-class.
func anthropicErr(ctx context.Context, err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		msg := "Claude API Error"
		var ae anthropicError
		if json.Unmarshal([]byte(apiErr.RawJSON()), &ae) == nil && ae.Error.Message != "" {
			msg = ae.Error.Message
		}
		return &Error{Service: serviceAnthropic, Status: apiErr.StatusCode, Message: msg, Err: err}
	}
	if cerr := ctx.Err(); cerr != nil {
		return &Error{Service: serviceAnthropic, Message: "request canceled", Err: cerr}
	}
	return &Error{Service: serviceAnthropic, Message: "request failed", Err: err}
}
