package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-salesbot-backend/internal/upstream"
)

func newProxy(m *fakeModel) *ProxyService {
	return &ProxyService{Model: m, Quota: newQuota(), Log: zerolog.Nop()}
}

var hello = []upstream.Message{{Role: "user", Content: "hello"}}

func TestProxy_Complete(t *testing.T) {
	m := &fakeModel{configured: true, text: "Hi!"}
	p := newProxy(m)

	res, err := p.Complete(context.Background(), "a@b.com", hello)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Message != "Hi!" || res.Usage.Count != 1 || res.Usage.Remaining != 49 {
		t.Fatalf("result = %+v", res)
	}
	if m.last.MaxTokens != 0 || len(m.last.Messages) != 1 {
		t.Fatalf("forwarded request = %+v", m.last)
	}
}

func TestProxy_EmptyTextUsesFallback(t *testing.T) {
	p := newProxy(&fakeModel{configured: true})
	res, err := p.Complete(context.Background(), "a@b.com", hello)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Message != FallbackReply || res.Usage.Count != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestProxy_NotConfigured(t *testing.T) {
	p := newProxy(&fakeModel{})
	if _, err := p.Complete(context.Background(), "", nil); !errors.Is(err, upstream.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestProxy_Validation(t *testing.T) {
	p := newProxy(&fakeModel{configured: true})
	_, err := p.Complete(context.Background(), " ", nil)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(ve.Fields) != 2 || ve.Fields[0] != "messages" || ve.Fields[1] != "userEmail" {
		t.Fatalf("fields = %v", ve.Fields)
	}
}

func TestProxy_UpstreamErrorDoesNotCount(t *testing.T) {
	m := &fakeModel{configured: true, err: &upstream.Error{Service: "fake", Status: 429, Message: "slow"}}
	p := newProxy(m)

	res, err := p.Complete(context.Background(), "a@b.com", hello)
	var ue *upstream.Error
	if !errors.As(err, &ue) || ue.Status != 429 {
		t.Fatalf("err = %v", err)
	}
	if res.Usage.Count != 0 {
		t.Fatalf("failed call was counted: %+v", res.Usage)
	}
}

func TestProxy_QuotaExceeded(t *testing.T) {
	m := &fakeModel{configured: true, text: "x"}
	p := newProxy(m)
	ctx := context.Background()
	for i := 0; i < MaxSessionsPerUser; i++ {
		if _, err := p.Complete(ctx, "a@b.com", hello); err != nil {
			t.Fatal(err)
		}
	}
	res, err := p.Complete(ctx, "a@b.com", hello)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("err = %v", err)
	}
	if res.Usage.Remaining != 0 || res.Usage.Count != MaxSessionsPerUser {
		t.Fatalf("usage = %+v", res.Usage)
	}
	if m.calls != MaxSessionsPerUser {
		t.Fatalf("model calls = %d", m.calls)
	}
}
