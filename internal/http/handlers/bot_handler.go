// Bot HTTP handlers.
//
//   - POST /api/generate-bot   (synthesize and store a bot prompt)
//   - POST /api/chat           (answer one turn)
//   - POST /api/submit-bot     (record a configuration for follow-up)
//   - GET  /api/bot/:botId     (artifact, else submission)
//   - GET  /api/bots           (list, paginated; ?kind=submissions)
//
// generate-bot and submit-bot honor Idempotency-Key: a retried key replays
// the stored resource instead of creating another.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
	"github.com/tbourn/go-salesbot-backend/internal/http/middleware"
	"github.com/tbourn/go-salesbot-backend/internal/services"
	"github.com/tbourn/go-salesbot-backend/internal/store"
	"github.com/tbourn/go-salesbot-backend/internal/utils"
)

//
// DTOs
//

// GenerateBotRequest is a bot configuration plus an optional user to charge
// the model call to.
type GenerateBotRequest struct {
	domain.BotConfig
	UserEmail string `json:"userEmail,omitempty" example:"jane@example.com"`
}

// GenerateBotResponse describes the stored artifact.
type GenerateBotResponse struct {
	Success      bool   `json:"success"                example:"true"`
	BotID        string `json:"botId"                  example:"bot_1700000000000_1a2b3c4d5"`
	BotType      string `json:"botType"                example:"template_generated"`
	Prompt       string `json:"prompt"`
	Message      string `json:"message"                example:"Bot generated successfully"`
	Remaining    *int   `json:"remaining,omitempty"    example:"49"`
	SessionCount *int   `json:"sessionCount,omitempty" example:"1"`
}

// ChatRequest is one user turn for a stored bot or an inline configuration.
type ChatRequest struct {
	Message   string            `json:"message"             example:"how much does it cost"`
	BotID     string            `json:"botId,omitempty"     example:"bot_1700000000000_1a2b3c4d5"`
	Config    *domain.BotConfig `json:"config,omitempty"`
	History   []domain.Turn     `json:"history,omitempty"`
	UserEmail string            `json:"userEmail,omitempty" example:"jane@example.com"`
}

// ChatResponse is the bot's reply.
type ChatResponse struct {
	Response     string `json:"response"`
	BotID        string `json:"botId,omitempty"`
	Source       string `json:"source"                 example:"template"`
	Remaining    *int   `json:"remaining,omitempty"`
	SessionCount *int   `json:"sessionCount,omitempty"`
}

// SubmitBotRequest is a configuration submitted for follow-up. No field is
// required.
type SubmitBotRequest struct {
	domain.BotConfig
	UserEmail string `json:"userEmail,omitempty" example:"jane@example.com"`
	UserName  string `json:"userName,omitempty"  example:"Jane"`
}

// SubmitBotResponse acknowledges a submission.
type SubmitBotResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Bot submitted successfully"`
	BotID   string `json:"botId"   example:"bot_1700000000000_1a2b3c4d5"`
}

// BotLookupResponse is a stored artifact or submission.
type BotLookupResponse struct {
	Success    bool               `json:"success"              example:"true"`
	Type       string             `json:"type"                 example:"bot"`
	Bot        *domain.Bot        `json:"bot,omitempty"`
	Submission *domain.Submission `json:"submission,omitempty"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListBotsResponse wraps a page of artifacts.
type ListBotsResponse struct {
	Bots       []domain.Bot `json:"bots"`
	Pagination Pagination   `json:"pagination"`
}

// ListSubmissionsResponse wraps a page of submissions.
type ListSubmissionsResponse struct {
	Submissions []domain.Submission `json:"submissions"`
	Pagination  Pagination          `json:"pagination"`
}

//
// Helpers
//

func pagination(page, pageSize int, total int64) Pagination {
	tp := utils.TotalPages(total, pageSize)
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: tp, HasNext: page < tp}
}

func usagePtrs(u *services.Usage) (remaining, count *int) {
	if u == nil {
		return nil, nil
	}
	r, n := u.Remaining, u.Count
	return &r, &n
}

// remember records resourceID under the request's Idempotency-Key, if any.
// A failure only costs the client a duplicate on retry, so it is logged.
func (h *Handlers) remember(c *gin.Context, resourceID string, status int) {
	key, has := middleware.GetIdempotencyKey(c)
	if !has || h.idem == nil {
		return
	}
	err := h.idem.SaveIdempotency(c.Request.Context(), middleware.IdempotencyScope(c), key, resourceID, status, h.idemTTL)
	if err != nil && !errors.Is(err, store.ErrDuplicate) {
		lg := middleware.LoggerFrom(c)
		lg.Warn().Err(err).Msg("idempotency save failed")
	}
}

// replayed looks up the resource a repeated keyed request produced. It
// reports false when the request is not a replay or the resource is gone.
func (h *Handlers) replayed(c *gin.Context) (*services.Lookup, int, bool) {
	res, isReplay := middleware.Replay(c)
	if !isReplay {
		return nil, 0, false
	}
	l, err := h.bots.Get(c.Request.Context(), res.ResourceID)
	if err != nil {
		return nil, 0, false
	}
	c.Header("Idempotent-Replay", "true")
	return l, res.Status, true
}

func generateMessage(kind string) string {
	if kind == domain.KindModelGenerated {
		return "Bot generated successfully"
	}
	return "Bot generated from template"
}

//
// Handlers
//

// GenerateBot godoc
// @ID          generateBot
// @Summary     Generate a sales bot prompt
// @Description Asks the model for a system prompt and falls back to the built-in template. With userEmail the model call counts against that user's sessions.
// @Tags        Bots
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string  false  "Retry key"
// @Param       body  body  handlers.GenerateBotRequest  true  "Bot configuration"
// @Success     200  {object}  handlers.GenerateBotResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing fields"
// @Failure     429  {object}  handlers.ErrorResponse  "Session limit reached"
// @Router      /api/generate-bot [post]
func (h *Handlers) GenerateBot(c *gin.Context) {
	if l, status, yes := h.replayed(c); yes && l.Bot != nil {
		ok(c, status, GenerateBotResponse{
			Success: true,
			BotID:   l.Bot.ID,
			BotType: l.Bot.Kind,
			Prompt:  l.Bot.Prompt,
			Message: generateMessage(l.Bot.Kind),
		})
		return
	}

	var req GenerateBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidJSON)
		return
	}
	res, err := h.bots.Generate(c.Request.Context(), req.BotConfig, req.UserEmail)
	if errors.Is(err, services.ErrQuotaExceeded) {
		count := services.MaxSessionsPerUser
		if res != nil && res.Usage != nil {
			count = res.Usage.Count
		}
		failQuota(c, count)
		return
	}
	if err != nil {
		h.failErr(c, err, "")
		return
	}

	h.remember(c, res.Bot.ID, http.StatusOK)
	remaining, count := usagePtrs(res.Usage)
	ok(c, http.StatusOK, GenerateBotResponse{
		Success:      true,
		BotID:        res.Bot.ID,
		BotType:      res.Bot.Kind,
		Prompt:       res.Bot.Prompt,
		Message:      generateMessage(res.Bot.Kind),
		Remaining:    remaining,
		SessionCount: count,
	})
}

// Chat godoc
// @ID          chat
// @Summary     Answer one chat turn
// @Description Answers with the model for model-generated bots and with the keyword template engine otherwise or on any model failure.
// @Tags        Bots
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ChatRequest  true  "Chat turn"
// @Success     200  {object}  handlers.ChatResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing message or bot"
// @Failure     404  {object}  handlers.ErrorResponse  "Bot not found"
// @Router      /api/chat [post]
func (h *Handlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidJSON)
		return
	}
	reply, err := h.bots.Chat(c.Request.Context(), services.ChatRequest{
		Message:   req.Message,
		BotID:     req.BotID,
		Config:    req.Config,
		History:   req.History,
		UserEmail: req.UserEmail,
	})
	if err != nil {
		h.failErr(c, err, "")
		return
	}
	remaining, count := usagePtrs(reply.Usage)
	ok(c, http.StatusOK, ChatResponse{
		Response:     reply.Response,
		BotID:        reply.BotID,
		Source:       reply.Source,
		Remaining:    remaining,
		SessionCount: count,
	})
}

// SubmitBot godoc
// @ID          submitBot
// @Summary     Submit a bot configuration for follow-up
// @Description Appends a pending submission. No field is required.
// @Tags        Bots
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string  false  "Retry key"
// @Param       body  body  handlers.SubmitBotRequest  true  "Submission"
// @Success     200  {object}  handlers.SubmitBotResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid JSON"
// @Router      /api/submit-bot [post]
func (h *Handlers) SubmitBot(c *gin.Context) {
	if l, status, yes := h.replayed(c); yes && l.Submission != nil {
		ok(c, status, SubmitBotResponse{Success: true, Message: "Bot submitted successfully", BotID: l.Submission.ID})
		return
	}

	var req SubmitBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidJSON)
		return
	}
	sub, err := h.subs.Submit(c.Request.Context(), req.BotConfig, req.UserEmail, req.UserName)
	if err != nil {
		h.failErr(c, err, "")
		return
	}
	h.remember(c, sub.ID, http.StatusOK)
	ok(c, http.StatusOK, SubmitBotResponse{Success: true, Message: "Bot submitted successfully", BotID: sub.ID})
}

// GetBot godoc
// @ID          getBot
// @Summary     Look up a bot
// @Description Returns the generated artifact with this id, else the submission with this id.
// @Tags        Bots
// @Produce     json
// @Param       botId  path  string  true  "Bot id"
// @Success     200  {object}  handlers.BotLookupResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Bot not found"
// @Router      /api/bot/{botId} [get]
func (h *Handlers) GetBot(c *gin.Context) {
	l, err := h.bots.Get(c.Request.Context(), c.Param("botId"))
	if err != nil {
		h.failErr(c, err, "")
		return
	}
	resp := BotLookupResponse{Success: true, Bot: l.Bot, Submission: l.Submission}
	if l.Bot != nil {
		resp.Type = "bot"
	} else {
		resp.Type = "submission"
	}
	ok(c, http.StatusOK, resp)
}

// ListBots godoc
// @ID          listBots
// @Summary     List bots (paginated)
// @Description Returns generated artifacts newest first, or submissions with kind=submissions.
// @Tags        Bots
// @Produce     json
// @Param       kind       query  string  false  "bots (default) or submissions"
// @Param       page       query  int     false  "Page number (1-based)"      minimum(1)  default(1)
// @Param       page_size  query  int     false  "Items per page (max 100)"  minimum(1)  maximum(100)  default(20)
// @Success     200  {object}  handlers.ListBotsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown kind"
// @Router      /api/bots [get]
func (h *Handlers) ListBots(c *gin.Context) {
	page, pageSize := utils.PageParams(c.Query("page"), c.Query("page_size"))
	ctx := c.Request.Context()

	switch c.DefaultQuery("kind", "bots") {
	case "bots":
		items, total, err := h.bots.ListPage(ctx, page, pageSize)
		if err != nil {
			h.failErr(c, err, "")
			return
		}
		if items == nil {
			items = []domain.Bot{}
		}
		ok(c, http.StatusOK, ListBotsResponse{Bots: items, Pagination: pagination(page, pageSize, total)})
	case "submissions":
		items, total, err := h.subs.ListPage(ctx, page, pageSize)
		if err != nil {
			h.failErr(c, err, "")
			return
		}
		if items == nil {
			items = []domain.Submission{}
		}
		ok(c, http.StatusOK, ListSubmissionsResponse{Submissions: items, Pagination: pagination(page, pageSize, total)})
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "kind must be bots or submissions")
	}
}
