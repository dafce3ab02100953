package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
	"github.com/tbourn/go-salesbot-backend/internal/observability"
	"github.com/tbourn/go-salesbot-backend/internal/salesbot"
	"github.com/tbourn/go-salesbot-backend/internal/store"
	"github.com/tbourn/go-salesbot-backend/internal/upstream"
)

// Chat reply sources.
const (
	SourceModel    = "model"
	SourceTemplate = "template"
)

// BotService generates sales bot prompts and answers chat turns for them.
type BotService struct {
	Model       upstream.ModelClient
	Quota       *QuotaService // nil disables per-user accounting
	Bots        store.BotStore
	Submissions store.SubmissionStore
	Responder   *salesbot.Responder
	Log         zerolog.Logger
	Now         func() time.Time
}

func (s *BotService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Synthesize writes a system prompt for cfg. It asks the model first and
// falls back to the fixed template on any failure, so it always returns a
// non-empty prompt.
func (s *BotService) Synthesize(ctx context.Context, cfg domain.BotConfig) (kind, prompt string) {
	ctx, span := otel.Tracer("services/BotService").Start(ctx, "Synthesize")
	defer func() {
		span.SetAttributes(attribute.String("bot.kind", kind))
		observability.PromptSynthesis.WithLabelValues(kind).Inc()
		span.End()
	}()

	cfg = cfg.Normalize()
	if s.Model != nil && s.Model.Configured() {
		out, err := s.Model.Complete(ctx, upstream.CompletionRequest{
			Messages:  []upstream.Message{{Role: domain.RoleUser, Content: salesbot.GenerationPrompt(cfg)}},
			MaxTokens: salesbot.GenerationMaxTokens,
		})
		switch {
		case err != nil:
			s.Log.Warn().Err(err).Msg("prompt generation failed, using template")
		case strings.TrimSpace(out.Text) == "":
			s.Log.Warn().Msg("model returned an empty prompt, using template")
		default:
			return domain.KindModelGenerated, out.Text
		}
	}
	return domain.KindTemplateGenerated, salesbot.TemplatePrompt(cfg)
}

// GenerateResult is a stored bot artifact and, when the request was
// attributed to a user, that user's usage after generation. On
// ErrQuotaExceeded only Usage is set.
type GenerateResult struct {
	Bot   *domain.Bot
	Usage *Usage
}

// Generate validates cfg, synthesizes a prompt, and stores the artifact.
// With a userEmail the model call is charged to that user's quota; only
// model-generated prompts count.
func (s *BotService) Generate(ctx context.Context, cfg domain.BotConfig, userEmail string) (*GenerateResult, error) {
	ctx, span := otel.Tracer("services/BotService").Start(ctx, "Generate")
	defer span.End()

	if missing := cfg.Missing(); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	cfg = cfg.Normalize()
	userEmail = NormalizeUserID(userEmail)

	var kind, prompt string
	res := &GenerateResult{}
	if userEmail != "" && s.Quota != nil {
		usage, err := s.Quota.Consume(ctx, userEmail, func(ctx context.Context) (bool, error) {
			kind, prompt = s.Synthesize(ctx, cfg)
			return kind == domain.KindModelGenerated, nil
		})
		if errors.Is(err, ErrQuotaExceeded) {
			return &GenerateResult{Usage: &usage}, err
		}
		if err != nil {
			return nil, err
		}
		res.Usage = &usage
	} else {
		kind, prompt = s.Synthesize(ctx, cfg)
	}

	now := s.now()
	bot := &domain.Bot{
		ID:        newBotID(now),
		Kind:      kind,
		Prompt:    prompt,
		Config:    cfg,
		UserEmail: userEmail,
		CreatedAt: now,
	}
	if err := s.Bots.SaveBot(ctx, bot); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("bot.id", bot.ID), attribute.String("bot.kind", kind))
	s.Log.Info().Str("bot_id", bot.ID).Str("kind", kind).Msg("bot generated")
	res.Bot = bot
	return res, nil
}

// ChatRequest is one user turn addressed to a stored bot or to an inline
// configuration.
type ChatRequest struct {
	Message   string
	BotID     string
	Config    *domain.BotConfig
	History   []domain.Turn
	UserEmail string
}

// ChatReply is the bot's answer and where it came from.
type ChatReply struct {
	Response string
	BotID    string
	Source   string
	Rule     string
	Usage    *Usage
}

// Chat answers req. A model-generated artifact is answered by the model
// with its prompt as the system message; everything else, and any model
// failure, is answered by the template engine.
func (s *BotService) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	ctx, span := otel.Tracer("services/BotService").Start(ctx, "Chat",
		trace.WithAttributes(
			attribute.String("bot.id", req.BotID),
			attribute.Int("history.len", len(req.History)),
		),
	)
	defer span.End()

	if strings.TrimSpace(req.Message) == "" {
		return nil, &ValidationError{Fields: []string{"message"}}
	}

	var (
		cfg domain.BotConfig
		bot *domain.Bot
	)
	switch {
	case req.BotID != "":
		b, err := s.Bots.Bot(ctx, req.BotID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBotNotFound
		}
		if err != nil {
			return nil, err
		}
		bot, cfg = b, b.Config
	case req.Config != nil:
		cfg = *req.Config
	default:
		return nil, &ValidationError{Fields: []string{"botId", "config"}}
	}

	if bot != nil && bot.Kind == domain.KindModelGenerated && s.Model != nil && s.Model.Configured() {
		reply, err := s.modelChat(ctx, bot, req)
		if err == nil {
			return reply, nil
		}
		s.Log.Warn().Err(err).Str("bot_id", bot.ID).Msg("model chat failed, using template")
	}

	r := s.Responder.Respond(req.Message, cfg, req.History)
	observability.TemplateReplies.WithLabelValues(string(r.Rule)).Inc()
	return &ChatReply{Response: r.Text, BotID: req.BotID, Source: SourceTemplate, Rule: string(r.Rule)}, nil
}

func (s *BotService) modelChat(ctx context.Context, bot *domain.Bot, req ChatRequest) (*ChatReply, error) {
	msgs := make([]upstream.Message, 0, len(req.History)+1)
	for _, t := range req.History {
		role := domain.RoleAssistant
		if t.IsUser() {
			role = domain.RoleUser
		}
		msgs = append(msgs, upstream.Message{Role: role, Content: t.Content})
	}
	msgs = append(msgs, upstream.Message{Role: domain.RoleUser, Content: req.Message})

	var text string
	call := func(ctx context.Context) (bool, error) {
		out, err := s.Model.Complete(ctx, upstream.CompletionRequest{System: bot.Prompt, Messages: msgs})
		if err != nil {
			return false, err
		}
		if strings.TrimSpace(out.Text) == "" {
			return false, errors.New("empty model reply")
		}
		text = out.Text
		return true, nil
	}

	reply := &ChatReply{BotID: bot.ID, Source: SourceModel}
	if email := NormalizeUserID(req.UserEmail); email != "" && s.Quota != nil {
		usage, err := s.Quota.Consume(ctx, email, call)
		if err != nil {
			return nil, err
		}
		reply.Usage = &usage
	} else if _, err := call(ctx); err != nil {
		return nil, err
	}
	reply.Response = text
	return reply, nil
}

// Lookup is a stored bot artifact or, failing that, a submission.
type Lookup struct {
	Bot        *domain.Bot
	Submission *domain.Submission
}

// Get finds an artifact by id, then a submission.
func (s *BotService) Get(ctx context.Context, id string) (*Lookup, error) {
	ctx, span := otel.Tracer("services/BotService").Start(ctx, "Get",
		trace.WithAttributes(attribute.String("bot.id", id)),
	)
	defer span.End()

	b, err := s.Bots.Bot(ctx, id)
	if err == nil {
		return &Lookup{Bot: b}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if s.Submissions != nil {
		sub, err := s.Submissions.Submission(ctx, id)
		if err == nil {
			return &Lookup{Submission: sub}, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrBotNotFound
}

// ListPage returns stored artifacts newest first.
func (s *BotService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Bot, int64, error) {
	ctx, span := otel.Tracer("services/BotService").Start(ctx, "ListPage",
		trace.WithAttributes(attribute.Int("page", page), attribute.Int("page_size", pageSize)),
	)
	defer span.End()

	offset, limit := pageBounds(page, pageSize)
	return s.Bots.ListBots(ctx, offset, limit)
}
