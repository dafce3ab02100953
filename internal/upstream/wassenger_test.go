package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWassenger_Send(t *testing.T) {
	var got wassengerMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if tok := r.Header.Get("Token"); tok != "secret" {
			t.Errorf("Token = %q", tok)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"m1"}`))
	}))
	defer srv.Close()

	w := NewWassenger(WassengerConfig{Token: "secret", BaseURL: srv.URL, Phone: "+60127998080"}, srv.Client())
	if err := w.Send(context.Background(), Notification{Subject: "s", Body: "hello"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Phone != "60127998080" || got.Message != "hello" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestWassenger_Send_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer srv.Close()

	w := NewWassenger(WassengerConfig{Token: "bad", BaseURL: srv.URL}, srv.Client())
	err := w.Send(context.Background(), Notification{Body: "x"})
	var ue *Error
	if !errors.As(err, &ue) {
		t.Fatalf("want *Error, got %T", err)
	}
	if ue.Status != http.StatusUnauthorized || ue.Message != "invalid token" {
		t.Fatalf("unexpected error: %+v", ue)
	}
}

func TestWassenger_NotConfigured(t *testing.T) {
	w := NewWassenger(WassengerConfig{}, nil)
	if w.Configured() {
		t.Fatal("notifier without token reports configured")
	}
	if w.cfg.BaseURL != "https://api.wassenger.com" {
		t.Fatalf("default base = %q", w.cfg.BaseURL)
	}
	if err := w.Send(context.Background(), Notification{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}
