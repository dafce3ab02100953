package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
	"github.com/tbourn/go-salesbot-backend/internal/http/middleware"
	"github.com/tbourn/go-salesbot-backend/internal/services"
)

func TestGenerateBot_ValidationAndTemplateFallback(t *testing.T) {
	hs := newHarness(t, harnessOpts{})

	w := hs.do(t, http.MethodPost, "/api/generate-bot", map[string]any{"botName": "Lily"})
	er := decode[ErrorResponse](t, w)
	if w.Code != 400 || !strings.Contains(er.Message, "businessName") || strings.Contains(er.Message, "botName") {
		t.Fatalf("validation = %d %+v", w.Code, er)
	}

	w = hs.do(t, http.MethodPost, "/api/generate-bot", acmeBody())
	resp := decode[GenerateBotResponse](t, w)
	if w.Code != 200 || !resp.Success || resp.BotType != domain.KindTemplateGenerated {
		t.Fatalf("generate = %d %+v", w.Code, resp)
	}
	if !strings.HasPrefix(resp.BotID, "bot_") || !strings.Contains(resp.Prompt, "Acme Spa") {
		t.Fatalf("artifact = %+v", resp)
	}
	if resp.Remaining != nil {
		t.Fatal("anonymous generation must not report usage")
	}

	lookup := decode[BotLookupResponse](t, hs.do(t, http.MethodGet, "/api/bot/"+resp.BotID, nil))
	if lookup.Type != "bot" || lookup.Bot == nil || lookup.Bot.Prompt != resp.Prompt {
		t.Fatalf("lookup = %+v", lookup)
	}
}

func TestGenerateBot_ChargesUserForModelPrompt(t *testing.T) {
	hs := newHarness(t, harnessOpts{})
	hs.model.configured, hs.model.text = true, "You are Lily."

	body := acmeBody()
	body["userEmail"] = "jane@example.com"
	resp := decode[GenerateBotResponse](t, hs.do(t, http.MethodPost, "/api/generate-bot", body))
	if resp.BotType != domain.KindModelGenerated || resp.Prompt != "You are Lily." {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.SessionCount == nil || *resp.SessionCount != 1 || *resp.Remaining != 49 {
		t.Fatalf("usage = %v %v", resp.SessionCount, resp.Remaining)
	}

	for i := 1; i < services.MaxSessionsPerUser; i++ {
		if _, err := hs.set.Sessions.Increment(context.Background(), "jane@example.com"); err != nil {
			t.Fatal(err)
		}
	}
	w := hs.do(t, http.MethodPost, "/api/generate-bot", body)
	er := decode[ErrorResponse](t, w)
	if w.Code != 429 || er.SessionCount == nil || *er.SessionCount != 50 || *er.Remaining != 0 {
		t.Fatalf("ceiling = %d %+v", w.Code, er)
	}
}

func TestGenerateBot_IdempotentReplay(t *testing.T) {
	hs := newHarness(t, harnessOpts{})

	first := hs.do(t, http.MethodPost, "/api/generate-bot", acmeBody(), middleware.HeaderIdempotencyKey, "gen-1")
	second := hs.do(t, http.MethodPost, "/api/generate-bot", acmeBody(), middleware.HeaderIdempotencyKey, "gen-1")
	a, b := decode[GenerateBotResponse](t, first), decode[GenerateBotResponse](t, second)
	if a.BotID == "" || a.BotID != b.BotID {
		t.Fatalf("ids = %q %q", a.BotID, b.BotID)
	}
	if second.Header().Get("Idempotent-Replay") != "true" {
		t.Fatal("replay header missing")
	}

	list := decode[ListBotsResponse](t, hs.do(t, http.MethodGet, "/api/bots", nil))
	if list.Pagination.Total != 1 {
		t.Fatalf("stored %d bots, want 1", list.Pagination.Total)
	}
}

func TestChat(t *testing.T) {
	hs := newHarness(t, harnessOpts{})
	gen := decode[GenerateBotResponse](t, hs.do(t, http.MethodPost, "/api/generate-bot", acmeBody()))

	w := hs.do(t, http.MethodPost, "/api/chat", ChatRequest{Message: "hi", BotID: gen.BotID})
	resp := decode[ChatResponse](t, w)
	if w.Code != 200 || resp.Source != services.SourceTemplate || resp.BotID != gen.BotID {
		t.Fatalf("chat = %d %+v", w.Code, resp)
	}
	if !strings.Contains(resp.Response, "Lily") || !strings.Contains(resp.Response, "Acme Spa") {
		t.Fatalf("intro = %q", resp.Response)
	}

	cfg := domain.BotConfig{BusinessName: "Acme Spa", BotName: "Lily", Services: "Facial - RM150\nMassage - RM200"}
	resp = decode[ChatResponse](t, hs.do(t, http.MethodPost, "/api/chat", ChatRequest{
		Message: "what is the price",
		Config:  &cfg,
		History: []domain.Turn{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "Hello"}},
	}))
	if !strings.Contains(resp.Response, "RM150") || !strings.Contains(resp.Response, "RM200") {
		t.Fatalf("prices = %q", resp.Response)
	}

	cases := []struct {
		name string
		body ChatRequest
		code int
	}{
		{"missing message", ChatRequest{BotID: gen.BotID}, 400},
		{"no bot", ChatRequest{Message: "hi"}, 400},
		{"unknown bot", ChatRequest{Message: "hi", BotID: "bot_nope"}, 404},
	}
	for _, tc := range cases {
		if w := hs.do(t, http.MethodPost, "/api/chat", tc.body); w.Code != tc.code {
			t.Errorf("%s: %d %s", tc.name, w.Code, w.Body.String())
		}
	}
}

func TestSubmitBot(t *testing.T) {
	hs := newHarness(t, harnessOpts{})

	body := map[string]any{"botName": "Lily", "userEmail": "jane@example.com", "userName": "Jane"}
	a := decode[SubmitBotResponse](t, hs.do(t, http.MethodPost, "/api/submit-bot", body))
	b := decode[SubmitBotResponse](t, hs.do(t, http.MethodPost, "/api/submit-bot", body))
	if !a.Success || a.Message != "Bot submitted successfully" || a.BotID == "" || a.BotID == b.BotID {
		t.Fatalf("submissions = %+v %+v", a, b)
	}

	c1 := decode[SubmitBotResponse](t, hs.do(t, http.MethodPost, "/api/submit-bot", body, middleware.HeaderIdempotencyKey, "sub-1"))
	c2 := decode[SubmitBotResponse](t, hs.do(t, http.MethodPost, "/api/submit-bot", body, middleware.HeaderIdempotencyKey, "sub-1"))
	if c1.BotID != c2.BotID {
		t.Fatalf("keyed retry created a new submission: %q %q", c1.BotID, c2.BotID)
	}

	lookup := decode[BotLookupResponse](t, hs.do(t, http.MethodGet, "/api/bot/"+a.BotID, nil))
	if lookup.Type != "submission" || lookup.Submission == nil || lookup.Submission.Status != domain.SubmissionPending {
		t.Fatalf("lookup = %+v", lookup)
	}

	list := decode[ListSubmissionsResponse](t, hs.do(t, http.MethodGet, "/api/bots?kind=submissions&page_size=2", nil))
	if list.Pagination.Total != 3 || len(list.Submissions) != 2 || !list.Pagination.HasNext || list.Pagination.TotalPages != 2 {
		t.Fatalf("list = %+v", list.Pagination)
	}
}

func TestListBots(t *testing.T) {
	hs := newHarness(t, harnessOpts{})

	w := hs.do(t, http.MethodGet, "/api/bots", nil)
	if w.Code != 200 || !strings.Contains(w.Body.String(), `"bots":[]`) {
		t.Fatalf("empty list = %d %s", w.Code, w.Body.String())
	}
	if w := hs.do(t, http.MethodGet, "/api/bots?kind=widgets", nil); w.Code != 400 {
		t.Fatalf("unknown kind = %d", w.Code)
	}
	if w := hs.do(t, http.MethodGet, "/api/bot/bot_missing", nil); w.Code != 404 || decode[ErrorResponse](t, w).Message != msgBotNotFound {
		t.Fatalf("missing bot = %d", w.Code)
	}
}
