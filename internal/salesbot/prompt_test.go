package salesbot

import (
	"strings"
	"testing"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
)

func TestTemplatePrompt_SectionsAndFields(t *testing.T) {
	cfg := acmeSpa()
	cfg.PrimaryGoal = "book facials"
	cfg.DiscoveryQuestions = "- What is your skin type?"
	cfg.QualificationCriteria = "has a budget above RM100"
	cfg.CustomFields = map[string]string{"address": "1 Jalan Ampang", "empty": " "}

	got := TemplatePrompt(cfg)

	for _, section := range []string{"# IDENTITY", "# COMMUNICATION STYLE", "# OBJECTIVE", "# CONVERSATION STAGES", "# CLOSING"} {
		if !strings.Contains(got, section) {
			t.Fatalf("missing section %q in:\n%s", section, got)
		}
	}
	for _, want := range []string{
		"You are Lily", "Acme Spa", "Wellness business", "book facials",
		"• Facial - RM150", "• Massage - RM200", "Mon-Fri 9-6",
		"What is your skin type?", "has a budget above RM100", "Address: 1 Jalan Ampang",
		"friendly and professional", "English",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in prompt:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Empty:") {
		t.Fatalf("blank custom fields should be skipped:\n%s", got)
	}
	if strings.Index(got, "# IDENTITY") > strings.Index(got, "# CLOSING") {
		t.Fatalf("sections out of order")
	}
}

func TestTemplatePrompt_SparseConfig(t *testing.T) {
	got := TemplatePrompt(domain.BotConfig{BusinessName: "Solo Studio"})
	if strings.TrimSpace(got) == "" || !strings.Contains(got, "Solo Studio") {
		t.Fatalf("prompt must be non-empty and name the business:\n%s", got)
	}
	if strings.Contains(got, "Services we offer") {
		t.Fatalf("no services block expected without services:\n%s", got)
	}
	if !strings.Contains(got, domain.DefaultWorkingHours) {
		t.Fatalf("default working hours expected:\n%s", got)
	}
}

func TestGenerationPrompt_EmbedsAllFields(t *testing.T) {
	cfg := acmeSpa()
	cfg.PrimaryGoal = "book facials"
	cfg.Tone = "playful"
	cfg.DiscoveryQuestions = "Skin type?"
	cfg.QualificationCriteria = "budget"
	cfg.CustomFields = map[string]string{"promo": "10% off"}

	got := GenerationPrompt(cfg)
	for _, want := range []string{
		"Business name: Acme Spa", "Business type: wellness", "Bot name: Lily",
		"Primary goal: book facials", "Tone: playful", "Language: English",
		"Working hours: Mon-Fri 9-6", "  Facial - RM150", "  Skin type?",
		"Qualification criteria: budget", "promo: 10% off",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in generation prompt:\n%s", want, got)
		}
	}
}
