package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tbourn/go-salesbot-backend/internal/observability"
)

// messagesRequest is the wire shape of a Messages API call.
type messagesRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	System    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func newAnthropicServer(t *testing.T, status int, body string, check func(*http.Request, messagesRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if check != nil {
			check(r, req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnthropic_Complete_Success(t *testing.T) {
	srv := newAnthropicServer(t, http.StatusOK,
		`{"model":"claude-test","stop_reason":"end_turn","content":[{"type":"text","text":"Hello there"},{"type":"text","text":"ignored"}]}`,
		func(r *http.Request, req messagesRequest) {
			if r.Method != http.MethodPost || r.URL.Path != "/v1/messages" {
				t.Errorf("got %s %s", r.Method, r.URL.Path)
			}
			if got := r.Header.Get("x-api-key"); got != "k" {
				t.Errorf("x-api-key = %q", got)
			}
			if got := r.Header.Get("anthropic-version"); got != anthropicVersion {
				t.Errorf("anthropic-version = %q", got)
			}
			if req.Model != "claude-test" || req.MaxTokens != 1000 || len(req.System) != 1 || req.System[0].Text != "sys" {
				t.Errorf("unexpected body: %+v", req)
			}
			if len(req.Messages) != 2 || req.Messages[0].Role != "user" || req.Messages[1].Role != "assistant" {
				t.Fatalf("messages = %+v", req.Messages)
			}
			if c := req.Messages[0].Content; len(c) != 1 || c[0].Type != "text" || c[0].Text != "hi" {
				t.Errorf("content = %+v", c)
			}
		})

	before := testutil.ToFloat64(observability.UpstreamRequests.WithLabelValues(serviceAnthropic, observability.OutcomeOK))

	a := NewAnthropic(AnthropicConfig{APIKey: "k", Model: "claude-test", BaseURL: srv.URL + "/", HTTPClient: srv.Client()})
	out, err := a.Complete(context.Background(), CompletionRequest{
		System:   "sys",
		Messages: []Message{{Role: "user", Content: "hi"}, {Role: "bot", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out.Text != "Hello there" || out.Model != "claude-test" || out.StopReason != "end_turn" {
		t.Fatalf("unexpected completion: %+v", out)
	}

	after := testutil.ToFloat64(observability.UpstreamRequests.WithLabelValues(serviceAnthropic, observability.OutcomeOK))
	if after != before+1 {
		t.Fatalf("ok counter = %v, want %v", after, before+1)
	}
}

func TestAnthropic_Complete_RequestMaxTokensWins(t *testing.T) {
	srv := newAnthropicServer(t, http.StatusOK, `{"content":[{"type":"text","text":"x"}]}`,
		func(_ *http.Request, req messagesRequest) {
			if req.MaxTokens != 2000 {
				t.Errorf("max_tokens = %d, want 2000", req.MaxTokens)
			}
		})
	a := NewAnthropic(AnthropicConfig{APIKey: "k", BaseURL: srv.URL, MaxTokens: 10, HTTPClient: srv.Client()})
	if _, err := a.Complete(context.Background(), CompletionRequest{MaxTokens: 2000, Messages: []Message{{Role: "user", Content: "x"}}}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
}

func TestAnthropic_Complete_NoTextBlock(t *testing.T) {
	srv := newAnthropicServer(t, http.StatusOK, `{"content":[{"type":"tool_use"}]}`, nil)
	a := NewAnthropic(AnthropicConfig{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()})
	out, err := a.Complete(context.Background(), CompletionRequest{Messages: []Message{{Role: "user", Content: "x"}}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out.Text != "" {
		t.Fatalf("text = %q, want empty", out.Text)
	}
}

func TestAnthropic_Complete_UpstreamError(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"error message", http.StatusTooManyRequests, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`, "slow down"},
		{"no message", http.StatusInternalServerError, `{"type":"error"}`, "Claude API Error"},
		{"auth", http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, "invalid x-api-key"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newAnthropicServer(t, tc.status, tc.body, nil)
			a := NewAnthropic(AnthropicConfig{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()})
			_, err := a.Complete(context.Background(), CompletionRequest{Messages: []Message{{Role: "user", Content: "x"}}})

			var ue *Error
			if !errors.As(err, &ue) {
				t.Fatalf("want *Error, got %T (%v)", err, err)
			}
			if ue.Status != tc.status || ue.Message != tc.wantMsg || ue.Service != serviceAnthropic {
				t.Fatalf("unexpected error: %+v", ue)
			}
		})
	}
}

func TestAnthropic_Complete_MalformedBody(t *testing.T) {
	srv := newAnthropicServer(t, http.StatusOK, `{not json`, nil)
	a := NewAnthropic(AnthropicConfig{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := a.Complete(context.Background(), CompletionRequest{Messages: []Message{{Role: "user", Content: "x"}}})
	var ue *Error
	if !errors.As(err, &ue) || ue.Status != 0 {
		t.Fatalf("want transport-class *Error, got %v", err)
	}
}

func TestAnthropic_Complete_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	a := NewAnthropic(AnthropicConfig{APIKey: "k", BaseURL: url})
	_, err := a.Complete(context.Background(), CompletionRequest{Messages: []Message{{Role: "user", Content: "x"}}})
	var ue *Error
	if !errors.As(err, &ue) {
		t.Fatalf("want *Error, got %T", err)
	}
	if ue.Status != 0 || ue.Err == nil || !ue.Temporary() {
		t.Fatalf("unexpected error: %+v", ue)
	}
}

func TestAnthropic_NotConfigured(t *testing.T) {
	before := testutil.ToFloat64(observability.UpstreamRequests.WithLabelValues(serviceAnthropic, observability.OutcomeNotConfigured))

	a := NewAnthropic(AnthropicConfig{})
	if a.Configured() {
		t.Fatal("client without key reports configured")
	}
	if _, err := a.Complete(context.Background(), CompletionRequest{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}

	after := testutil.ToFloat64(observability.UpstreamRequests.WithLabelValues(serviceAnthropic, observability.OutcomeNotConfigured))
	if after != before+1 {
		t.Fatalf("not_configured counter = %v, want %v", after, before+1)
	}
}

func TestAnthropic_ContextCanceled(t *testing.T) {
	srv := newAnthropicServer(t, http.StatusOK, `{"content":[]}`, nil)
	a := NewAnthropic(AnthropicConfig{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Complete(ctx, CompletionRequest{Messages: []Message{{Role: "user", Content: "x"}}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestAnthropic_Complete_DoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	srv := newAnthropicServer(t, http.StatusTooManyRequests,
		`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`,
		func(*http.Request, messagesRequest) { hits.Add(1) })
	a := NewAnthropic(AnthropicConfig{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()})

	if _, err := a.Complete(context.Background(), CompletionRequest{Messages: []Message{{Role: "user", Content: "x"}}}); err == nil {
		t.Fatal("expected error")
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("upstream hit %d times, want 1", n)
	}
}
