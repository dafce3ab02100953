package upstream

import (
	"fmt"
	"strings"
	"time"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
)

// Notification kinds.
const (
	KindSubmission   = "submission"
	KindLimitReached = "limit_reached"
)

const previewRunes = 500

// NotifyPayload is the data embedded in a formatted notification.
type NotifyPayload struct {
	UserName           string
	UserEmail          string
	Config             domain.BotConfig
	SessionCount       int
	MaxSessions        int
	ConversationLength int
	Prompt             string
}

// NotificationSubject returns the headline for kind.
func NotificationSubject(kind string) string {
	if kind == KindLimitReached {
		return "FREE AI BOT GENERATOR - LIMIT REACHED"
	}
	return "FREE AI BOT GENERATOR - SUBMISSION"
}

// FormatNotification renders the fixed notification text. Any kind other than
// KindLimitReached renders the submission variant.
func FormatNotification(kind string, p NotifyPayload, now time.Time) Notification {
	subject := NotificationSubject(kind)

	usage := fmt.Sprintf("%d/%d API calls", p.SessionCount, p.MaxSessions)
	convLabel := "Conversations"
	if kind == KindLimitReached {
		usage = fmt.Sprintf("%d/%d API calls completed", p.MaxSessions, p.MaxSessions)
		convLabel = "Total conversations"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🤖 %s\n\n", subject)
	fmt.Fprintf(&b, "👤 User: %s\n", p.UserName)
	fmt.Fprintf(&b, "📧 Email: %s\n\n", p.UserEmail)
	fmt.Fprintf(&b, "🏢 Business: %s\n", p.Config.BusinessName)
	fmt.Fprintf(&b, "🎯 Service: %s\n", p.Config.BusinessType)
	fmt.Fprintf(&b, "🤖 Bot Name: %s\n\n", p.Config.BotName)
	fmt.Fprintf(&b, "📊 Usage: %s\n", usage)
	fmt.Fprintf(&b, "💬 %s: %d\n\n", convLabel, p.ConversationLength)
	fmt.Fprintf(&b, "📝 Generated Prompt Preview:\n%s...\n\n", preview(p.Prompt))
	fmt.Fprintf(&b, "⏰ %s", now.Format("1/2/2006, 3:04:05 PM"))

	return Notification{Subject: subject, Body: b.String()}
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > previewRunes {
		r = r[:previewRunes]
	}
	return string(r)
}
