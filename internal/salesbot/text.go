package salesbot

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// keywords is one group of the decision table. Phrases match as
// case-insensitive substrings of the message; words match only as whole
// tokens, which keeps "hi" from firing inside "this" and "fee" inside
// "coffee".
type keywords struct {
	phrases []string
	words   []string
}

func (k keywords) match(message string) bool {
	msg := lower(message)
	for _, p := range k.phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	if len(k.words) == 0 {
		return false
	}
	for _, tok := range strings.FieldsFunc(msg, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if slices.Contains(k.words, tok) {
			return true
		}
	}
	return false
}

var (
	kwGreeting = keywords{
		phrases: []string{"hello", "hiya", "howdy", "greetings", "good morning", "good afternoon", "good evening"},
		words:   []string{"hi", "hey"},
	}
	kwService = keywords{
		phrases: []string{"service", "offer", "provide", "treatment", "package", "product", "what do you do"},
	}
	kwPrice = keywords{
		phrases: []string{"price", "pricing", "cost", "how much", "rate", "charge", "expensive", "cheap", "budget"},
		words:   []string{"fee", "fees"},
	}
	kwBooking = keywords{
		phrases: []string{"book", "appointment", "schedul", "reserv", "availab", "slot"},
	}
	kwAffirmative = keywords{
		phrases: []string{"yeah", "okay", "sounds good", "interested", "definitely", "of course"},
		words:   []string{"yes", "yep", "yup", "ok", "sure"},
	}
	kwProblem = keywords{
		phrases: []string{"problem", "issue", "help", "need", "concern", "struggl", "trouble"},
	}
	kwLocation = keywords{
		phrases: []string{"where", "location", "address", "located", "direction", "contact", "phone", "whatsapp", "email"},
		words:   []string{"call"},
	}
	kwGratitude = keywords{
		phrases: []string{"thank", "thx", "appreciat", "cheers"},
	}

	// Previous-turn context for affirmative replies.
	kwPricingContext = keywords{phrases: []string{"pricing", "rate"}}
	kwServiceContext = keywords{phrases: []string{"service", "offer"}}

	reCurrency = regexp.MustCompile(`(?i)(?:\bRM\s?\d|\$|€|£|\b(?:USD|MYR|SGD|EUR|GBP)\b)`)
)

// Casers carry state, so each call builds its own.
func lower(s string) string { return cases.Lower(language.Und).String(s) }

func title(s string) string { return cases.Title(language.Und).String(s) }

// lines splits free text on newlines and drops blank entries.
func lines(s string) []string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// cleanServiceLine strips list markers and markdown bold from one entry.
func cleanServiceLine(s string) string {
	s = strings.TrimLeft(s, "-*•· \t")
	s = strings.ReplaceAll(s, "**", "")
	return strings.TrimSpace(s)
}

// serviceLines returns the cleaned, non-empty service entries.
func serviceLines(services string) []string {
	var out []string
	for _, l := range lines(services) {
		if c := cleanServiceLine(l); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// pricedLines keeps the entries carrying a currency marker.
func pricedLines(entries []string) []string {
	var out []string
	for _, e := range entries {
		if reCurrency.MatchString(e) {
			out = append(out, e)
		}
	}
	return out
}

// discoveryQuestions returns the configured questions with a leading dash removed.
func discoveryQuestions(s string) []string {
	var out []string
	for _, l := range lines(s) {
		if q := strings.TrimSpace(strings.TrimLeft(l, "-")); q != "" {
			out = append(out, q)
		}
	}
	return out
}

func bullets(items []string) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• ")
		b.WriteString(it)
	}
	return b.String()
}

func category(cfg string) string {
	if c := strings.TrimSpace(cfg); c != "" {
		return lower(c)
	}
	return "business"
}
