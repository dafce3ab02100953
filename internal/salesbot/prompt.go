package salesbot

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
)

// GenerationMaxTokens bounds the model call that writes a bot prompt.
const GenerationMaxTokens = 2000

// GenerationPrompt is the instruction sent to the model to write a sales
// bot system prompt for cfg.
func GenerationPrompt(cfg domain.BotConfig) string {
	cfg = cfg.Normalize()
	var b strings.Builder
	b.WriteString("You are an expert conversational designer. Write a complete system prompt for a WhatsApp sales assistant.\n\n")
	b.WriteString("BUSINESS DETAILS\n")
	fmt.Fprintf(&b, "- Business name: %s\n", cfg.BusinessName)
	fmt.Fprintf(&b, "- Business type: %s\n", cfg.BusinessType)
	fmt.Fprintf(&b, "- Bot name: %s\n", cfg.BotName)
	fmt.Fprintf(&b, "- Primary goal: %s\n", cfg.PrimaryGoal)
	fmt.Fprintf(&b, "- Tone: %s\n", cfg.Tone)
	fmt.Fprintf(&b, "- Language: %s\n", cfg.Language)
	fmt.Fprintf(&b, "- Working hours: %s\n", cfg.WorkingHours)
	fmt.Fprintf(&b, "- Services and prices:\n%s\n", indent(cfg.Services))
	if cfg.DiscoveryQuestions != "" {
		fmt.Fprintf(&b, "- Discovery questions:\n%s\n", indent(cfg.DiscoveryQuestions))
	}
	if cfg.QualificationCriteria != "" {
		fmt.Fprintf(&b, "- Qualification criteria: %s\n", cfg.QualificationCriteria)
	}
	for _, k := range sortedKeys(cfg.CustomFields) {
		fmt.Fprintf(&b, "- %s: %s\n", k, cfg.CustomFields[k])
	}
	b.WriteString("\nREQUIREMENTS\n")
	b.WriteString("- Give the assistant a clear identity and personality matching the tone.\n")
	b.WriteString("- Keep replies short and suited to WhatsApp, one question at a time.\n")
	b.WriteString("- Guide the conversation through greeting, discovery, recommendation, objection handling and closing.\n")
	b.WriteString("- Only quote prices listed above and never invent services.\n")
	b.WriteString("- Always steer towards the primary goal and collect name and phone number before closing.\n\n")
	b.WriteString("Return only the system prompt text, without commentary.")
	return b.String()
}

var templatePrompt = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"title":   title,
	"bullets": bullets,
}).Parse(`# IDENTITY
You are {{.Config.BotName}}, the sales assistant for {{.Config.BusinessName}}, a {{title .Config.BusinessType}} business.
You speak {{.Config.Language}} and your primary goal is to {{.Config.PrimaryGoal}}.

# COMMUNICATION STYLE
- Tone: {{.Config.Tone}}.
- Keep messages short, warm and easy to read on a phone.
- Ask one question at a time and use the customer's name once you know it.

# OBJECTIVE
Help every visitor find the right service and move them towards: {{.Config.PrimaryGoal}}.
{{- if .Services}}
Services we offer:
{{bullets .Services}}
{{- end}}
Working hours: {{.Config.WorkingHours}}.
{{- if .Config.QualificationCriteria}}
A lead is qualified when: {{.Config.QualificationCriteria}}.
{{- end}}
{{- range .Custom}}
{{.Key}}: {{.Value}}
{{- end}}

# CONVERSATION STAGES
1. Greeting: introduce yourself as {{.Config.BotName}} from {{.Config.BusinessName}}.
2. Discovery: understand what the customer needs.
{{- range .Questions}}
   - {{.}}
{{- end}}
3. Recommendation: suggest the services that fit, quoting listed prices only.
4. Objections: answer concerns honestly and reassure.
5. Booking: propose a time within working hours and collect name and phone number.

# CLOSING
Confirm the details back to the customer, thank them for choosing {{.Config.BusinessName}}, and let them know the team will follow up shortly.
`))

type kv struct{ Key, Value string }

// TemplatePrompt fills the fixed prompt skeleton from cfg. It is the
// fallback used whenever the model cannot write the prompt.
func TemplatePrompt(cfg domain.BotConfig) string {
	cfg = cfg.Normalize()
	data := struct {
		Config    domain.BotConfig
		Services  []string
		Questions []string
		Custom    []kv
	}{
		Config:    cfg,
		Services:  serviceLines(cfg.Services),
		Questions: discoveryQuestions(cfg.DiscoveryQuestions),
	}
	for _, k := range sortedKeys(cfg.CustomFields) {
		data.Custom = append(data.Custom, kv{Key: title(k), Value: cfg.CustomFields[k]})
	}

	var buf bytes.Buffer
	if err := templatePrompt.Execute(&buf, data); err != nil {
		// The template is static and the data is plain strings.
		panic(err)
	}
	return buf.String()
}

func indent(s string) string {
	ls := lines(s)
	for i, l := range ls {
		ls[i] = "  " + l
	}
	return strings.Join(ls, "\n")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if strings.TrimSpace(v) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
