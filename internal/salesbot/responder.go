// Package salesbot holds the deterministic side of the sales bot: the
// keyword-driven template engine that answers chat turns without a model,
// and the prompt builders used to synthesize a bot's system prompt.
package salesbot

import (
	"fmt"
	"strings"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
)

// Rule names the branch of the decision table that produced a reply.
type Rule string

// Rules in evaluation order. RuleFirstTurn answers an empty history.
const (
	RuleFirstTurn   Rule = "first_turn"
	RuleGreeting    Rule = "greeting"
	RuleService     Rule = "service"
	RulePrice       Rule = "price"
	RuleBooking     Rule = "booking"
	RuleAffirmative Rule = "affirmative"
	RuleProblem     Rule = "problem"
	RuleLocation    Rule = "location"
	RuleGratitude   Rule = "gratitude"
	RuleDiscovery   Rule = "discovery"
	RuleDefault     Rule = "default"
)

const (
	maxServiceBullets = 5
	maxPriceBullets   = 6
	discoveryPrefix   = "Thanks for sharing! "
)

var defaultReplies = [...]string{
	"That's a great question! Could you tell me a bit more so I can point you in the right direction?",
	"I'd be happy to help with that. Would you like to hear about our services or check our availability?",
	"Thanks for your message! Let me know what you're looking for and I'll do my best to help.",
	"Interesting! Tell me a little more about what you need, and I'll find the best option for you.",
}

// Reply is a template answer together with the rule that produced it.
type Reply struct {
	Text string
	Rule Rule
}

type group struct {
	rule  Rule
	kw    keywords
	build func(r *Responder, cfg domain.BotConfig, prev string) string
}

// groups is the fixed priority order; the first match wins.
var groups = []group{
	{RuleGreeting, kwGreeting, (*Responder).greetingAgain},
	{RuleService, kwService, (*Responder).services},
	{RulePrice, kwPrice, (*Responder).prices},
	{RuleBooking, kwBooking, (*Responder).booking},
	{RuleAffirmative, kwAffirmative, (*Responder).affirmative},
	{RuleProblem, kwProblem, (*Responder).problem},
	{RuleLocation, kwLocation, (*Responder).location},
	{RuleGratitude, kwGratitude, (*Responder).gratitude},
}

// Responder answers chat turns with canned, lightly parameterized text.
// It has no failure path: missing configuration fields read as empty.
type Responder struct {
	rnd Rand
}

// NewResponder returns a Responder drawing random picks from rnd, or from
// DefaultRand when rnd is nil.
func NewResponder(rnd Rand) *Responder {
	if rnd == nil {
		rnd = DefaultRand
	}
	return &Responder{rnd: rnd}
}

// Reply returns only the text of Respond.
func (r *Responder) Reply(message string, cfg domain.BotConfig, history []domain.Turn) string {
	return r.Respond(message, cfg, history).Text
}

// Respond picks a reply for message given the bot configuration and the
// conversation so far, excluding message itself.
func (r *Responder) Respond(message string, cfg domain.BotConfig, history []domain.Turn) Reply {
	cfg = cfg.Normalize()
	prev := lastServiceTurn(history)

	if len(history) == 0 {
		// A first message that already asks something concrete gets the
		// introduction followed by the matching answer.
		for _, g := range groups[1:] {
			if g.kw.match(message) {
				return Reply{Text: r.intro(cfg) + "\n\n" + g.build(r, cfg, prev), Rule: RuleFirstTurn}
			}
		}
		return Reply{Text: r.intro(cfg) + "\n\n" + firstTurnQuestion, Rule: RuleFirstTurn}
	}

	for _, g := range groups {
		if g.kw.match(message) {
			return Reply{Text: g.build(r, cfg, prev), Rule: g.rule}
		}
	}

	if qs := discoveryQuestions(cfg.DiscoveryQuestions); len(qs) > 0 {
		return Reply{Text: discoveryPrefix + qs[r.rnd.IntN(len(qs))], Rule: RuleDiscovery}
	}
	return Reply{Text: defaultReplies[r.rnd.IntN(len(defaultReplies))], Rule: RuleDefault}
}

const firstTurnQuestion = "What brings you here today? Are you looking for something specific, or would you like to hear about what we offer?"

func (r *Responder) intro(cfg domain.BotConfig) string {
	return fmt.Sprintf("Hi there! 👋 I'm %s from %s, your friendly %s specialist.",
		cfg.BotName, cfg.BusinessName, category(cfg.BusinessType))
}

func (r *Responder) greetingAgain(cfg domain.BotConfig, _ string) string {
	return fmt.Sprintf("Hello again! 😊 %s here. How can I help you today? I can tell you about our services, share our pricing, or help you book an appointment.", cfg.BotName)
}

func (r *Responder) services(cfg domain.BotConfig, _ string) string {
	entries := serviceLines(cfg.Services)
	if len(entries) == 0 {
		return fmt.Sprintf("At %s, we offer a range of %s services tailored to your needs. What are you looking for specifically?",
			cfg.BusinessName, category(cfg.BusinessType))
	}
	shown := entries
	if len(shown) > maxServiceBullets {
		shown = shown[:maxServiceBullets]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Here's what we offer at %s:\n", cfg.BusinessName)
	b.WriteString(bullets(shown))
	if len(entries) > maxServiceBullets {
		b.WriteString("\n...and more!")
	}
	b.WriteString("\n\nWhich of these would you like to know more about?")
	return b.String()
}

func (r *Responder) prices(cfg domain.BotConfig, _ string) string {
	priced := pricedLines(serviceLines(cfg.Services))
	if len(priced) == 0 {
		return "Our pricing depends on the service and your specific needs, and I'd be happy to put together a quote for you. Which service are you interested in?"
	}
	if len(priced) > maxPriceBullets {
		priced = priced[:maxPriceBullets]
	}
	return "Here are our rates:\n" + bullets(priced) + "\n\nWhich of these are you interested in?"
}

func (r *Responder) booking(cfg domain.BotConfig, _ string) string {
	return fmt.Sprintf("I'd love to help you book! 📅 We're available %s. What day and time works best for you? Please also share your name and phone number so we can confirm your slot.",
		cfg.WorkingHours)
}

func (r *Responder) affirmative(_ domain.BotConfig, prev string) string {
	switch {
	case kwPricingContext.match(prev):
		return "Great! Would you like me to book an appointment for you? Just let me know your preferred day and time."
	case kwServiceContext.match(prev):
		return "Awesome! Which service are you most interested in? I can share more details about any of them."
	default:
		return "Great! What would you like to do next? I can tell you about our services, share pricing, or help you book."
	}
}

func (r *Responder) problem(cfg domain.BotConfig, _ string) string {
	return fmt.Sprintf("I'm sorry to hear that. Helping with exactly this kind of thing is what we do at %s. Could you tell me a bit more about what you're dealing with so I can suggest the right option?",
		cfg.BusinessName)
}

func (r *Responder) location(cfg domain.BotConfig, _ string) string {
	addr := strings.TrimSpace(cfg.CustomFields["address"])
	if addr == "" {
		addr = strings.TrimSpace(cfg.CustomFields["location"])
	}
	if addr != "" {
		return fmt.Sprintf("You'll find %s at %s. We're open %s. Would you like me to book a visit for you?",
			cfg.BusinessName, addr, cfg.WorkingHours)
	}
	return fmt.Sprintf("You can reach %s right here in this chat, and our team will share the full location and contact details once you book. Is there anything else I can help with?",
		cfg.BusinessName)
}

func (r *Responder) gratitude(domain.BotConfig, string) string {
	return "You're very welcome! 😊 Is there anything else I can help you with today?"
}

// lastServiceTurn returns the content of the most recent non-user turn.
func lastServiceTurn(history []domain.Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].IsUser() {
			return history[i].Content
		}
	}
	return ""
}
