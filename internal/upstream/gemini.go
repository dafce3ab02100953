package upstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const serviceGemini = "gemini"

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	// Timeout bounds each call; zero leaves only the caller's deadline.
	Timeout time.Duration
}

// Gemini calls Google's Gemini API. It is an alternative model backend; a
// blank key leaves it unconfigured.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int
	timeout   time.Duration

	send func(*genai.ChatSession, context.Context, ...genai.Part) (*genai.GenerateContentResponse, error)
}

// NewGemini dials the Gemini API when an API key is present.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	g := &Gemini{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		send:      (*genai.ChatSession).SendMessage,
	}
	if g.model == "" {
		g.model = "gemini-1.5-flash"
	}
	if g.maxTokens <= 0 {
		g.maxTokens = 1000
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return g, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("upstream: create gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *Gemini) Name() string     { return serviceGemini }
func (g *Gemini) Configured() bool { return g.client != nil }

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Complete replays all but the last message as chat history and sends the
// last one.
func (g *Gemini) Complete(ctx context.Context, req CompletionRequest) (out Completion, err error) {
	ctx, done := instrument(ctx, serviceGemini, "complete")
	defer func() { done(err) }()

	if !g.Configured() {
		return Completion{}, ErrNotConfigured
	}
	history, last, err := geminiHistory(req.Messages)
	if err != nil {
		return Completion{}, err
	}

	model := g.client.GenerativeModel(g.model)
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = g.maxTokens
	}
	model.SetMaxOutputTokens(int32(maxTokens))
	if s := strings.TrimSpace(req.System); s != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(s))
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cs := model.StartChat()
	cs.History = history
	resp, err := g.send(cs, ctx, genai.Text(last))
	if err != nil {
		return Completion{}, geminiError(err)
	}

	out = Completion{Model: g.model}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out, nil
	}
	cand := resp.Candidates[0]
	out.StopReason = cand.FinishReason.String()
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	out.Text = sb.String()
	return out, nil
}

// geminiHistory splits messages into prior turns and the final prompt.
// Gemini names the assistant role "model".
func geminiHistory(msgs []Message) ([]*genai.Content, string, error) {
	if len(msgs) == 0 {
		return nil, "", &Error{Service: serviceGemini, Status: 400, Message: "messages must not be empty"}
	}
	history := make([]*genai.Content, 0, len(msgs)-1)
	for _, m := range msgs[:len(msgs)-1] {
		role := "model"
		if m.Role == "user" {
			role = "user"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return history, msgs[len(msgs)-1].Content, nil
}

func geminiError(err error) error {
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		return &Error{Service: serviceGemini, Status: ge.Code, Message: ge.Message, Err: err}
	}
	return &Error{Service: serviceGemini, Message: "generate failed", Err: err}
}
