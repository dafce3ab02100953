// Package domain defines the records the salesbot backend works with: bot
// configurations supplied by callers, generated bot artifacts, submissions,
// per-user session counters, and conversation turns. The persisted types are
// mapped with GORM so the SQLite store can use them directly; the in-memory
// and Redis stores use the same shapes.
package domain

import (
	"maps"
	"strings"
	"time"
)

// Origin kinds of a synthesized prompt.
const (
	KindModelGenerated    = "model_generated"
	KindTemplateGenerated = "template_generated"
)

// Submission statuses.
const (
	SubmissionPending = "pending"
)

// Conversation roles. Anything other than RoleUser counts as a service turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultWorkingHours is used whenever a configuration leaves the hours blank.
const DefaultWorkingHours = "Monday–Sunday, 10am–8pm"

const (
	defaultTone     = "friendly and professional"
	defaultLanguage = "English"
)

// BotConfig describes a business for which a sales bot is generated.
// It is supplied by the caller on every request and never mutated server-side
// beyond Normalize.
type BotConfig struct {
	BusinessName          string            `json:"businessName"                    yaml:"businessName"          example:"Acme Spa"`
	BusinessType          string            `json:"businessType"                    yaml:"businessType"          example:"wellness"`
	BotName               string            `json:"botName"                         yaml:"botName"               example:"Lily"`
	PrimaryGoal           string            `json:"primaryGoal"                     yaml:"primaryGoal"           example:"book appointments"`
	Tone                  string            `json:"tone,omitempty"                  yaml:"tone"`
	Language              string            `json:"language,omitempty"              yaml:"language"`
	Services              string            `json:"services"                        yaml:"services"              example:"Facial - RM150\nMassage - RM200"`
	DiscoveryQuestions    string            `json:"discoveryQuestions,omitempty"    yaml:"discoveryQuestions"`
	WorkingHours          string            `json:"workingHours,omitempty"          yaml:"workingHours"          example:"Mon-Fri 9-6"`
	QualificationCriteria string            `json:"qualificationCriteria,omitempty" yaml:"qualificationCriteria"`
	CustomFields          map[string]string `json:"customFields,omitempty"          yaml:"customFields"`
}

// Normalize returns a copy with surrounding whitespace trimmed and documented
// defaults applied to working hours, tone, and language.
func (c BotConfig) Normalize() BotConfig {
	c.BusinessName = strings.TrimSpace(c.BusinessName)
	c.BusinessType = strings.TrimSpace(c.BusinessType)
	c.BotName = strings.TrimSpace(c.BotName)
	c.PrimaryGoal = strings.TrimSpace(c.PrimaryGoal)
	c.Tone = strings.TrimSpace(c.Tone)
	c.Language = strings.TrimSpace(c.Language)
	c.Services = strings.TrimSpace(c.Services)
	c.DiscoveryQuestions = strings.TrimSpace(c.DiscoveryQuestions)
	c.WorkingHours = strings.TrimSpace(c.WorkingHours)
	c.QualificationCriteria = strings.TrimSpace(c.QualificationCriteria)

	if c.WorkingHours == "" {
		c.WorkingHours = DefaultWorkingHours
	}
	if c.Tone == "" {
		c.Tone = defaultTone
	}
	if c.Language == "" {
		c.Language = defaultLanguage
	}
	return c
}

// Clone returns a copy that shares no map with c.
func (c BotConfig) Clone() BotConfig {
	c.CustomFields = maps.Clone(c.CustomFields)
	return c
}

// Missing lists the JSON names of required fields that are blank. Required
// fields are the ones a prompt cannot be generated without.
func (c BotConfig) Missing() []string {
	var out []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			out = append(out, name)
		}
	}
	check("businessName", c.BusinessName)
	check("businessType", c.BusinessType)
	check("botName", c.BotName)
	check("primaryGoal", c.PrimaryGoal)
	check("services", c.Services)
	return out
}

// Turn is one role-tagged entry of a caller-supplied conversation history.
type Turn struct {
	Role    string `json:"role"    example:"user"`
	Content string `json:"content" example:"how much does it cost"`
}

// IsUser reports whether the turn was written by the end user.
func (t Turn) IsUser() bool { return strings.EqualFold(strings.TrimSpace(t.Role), RoleUser) }

// Session is the per-user quota counter. A missing row means a count of zero.
type Session struct {
	UserID    string    `json:"email"        gorm:"type:varchar(320);primaryKey"`
	Count     int       `json:"sessionCount" gorm:"not null;default:0;check:count >= 0"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }

// Bot is a generated bot artifact. It is created once per generation request
// and never updated.
type Bot struct {
	ID        string    `json:"id"                  gorm:"type:varchar(64);primaryKey"`
	Kind      string    `json:"botType"             gorm:"type:varchar(32);not null;check:kind IN ('model_generated','template_generated')"`
	Prompt    string    `json:"prompt"              gorm:"type:text;not null"`
	Config    BotConfig `json:"config"              gorm:"type:text;serializer:json"`
	UserEmail string    `json:"userEmail,omitempty" gorm:"type:varchar(320);index"`
	CreatedAt time.Time `json:"createdAt"           gorm:"index"`
}

// TableName returns the database table name for Bot.
func (Bot) TableName() string { return "bots" }

// Submission is an append-only record of a bot configuration submitted for
// follow-up by the business team.
type Submission struct {
	ID          string    `json:"id"                  gorm:"type:varchar(64);primaryKey"`
	Config      BotConfig `json:"config"              gorm:"type:text;serializer:json"`
	UserEmail   string    `json:"userEmail,omitempty" gorm:"type:varchar(320);index"`
	UserName    string    `json:"userName,omitempty"  gorm:"type:varchar(255)"`
	Status      string    `json:"status"              gorm:"type:varchar(32);not null;default:'pending'"`
	SubmittedAt time.Time `json:"submittedAt"         gorm:"index"`
}

// TableName returns the database table name for Submission.
func (Submission) TableName() string { return "submissions" }
