package services

import (
	"context"
	"sync"

	"github.com/tbourn/go-salesbot-backend/internal/upstream"
)

type fakeModel struct {
	mu         sync.Mutex
	configured bool
	text       string
	err        error
	calls      int
	last       upstream.CompletionRequest
}

func (m *fakeModel) Complete(_ context.Context, req upstream.CompletionRequest) (upstream.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.last = req
	if m.err != nil {
		return upstream.Completion{}, m.err
	}
	return upstream.Completion{Text: m.text}, nil
}

func (m *fakeModel) Configured() bool { return m.configured }
func (m *fakeModel) Name() string     { return "fake" }

type fakeNotifier struct {
	configured bool
	err        error
	sent       []upstream.Notification
}

func (n *fakeNotifier) Send(_ context.Context, msg upstream.Notification) error {
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *fakeNotifier) Configured() bool { return n.configured }
func (n *fakeNotifier) Name() string     { return "fake" }
