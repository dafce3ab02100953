// Upstream-facing HTTP handlers.
//
//   - POST /api/claude   (model proxy, charged to the user's quota)
//   - POST /api/notify   (notification to the business team)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
	"github.com/tbourn/go-salesbot-backend/internal/services"
	"github.com/tbourn/go-salesbot-backend/internal/upstream"
)

// ClaudeRequest is a conversation to forward to the model.
type ClaudeRequest struct {
	Messages  []upstream.Message `json:"messages"`
	UserEmail string             `json:"userEmail" example:"jane@example.com"`
}

// ClaudeResponse is the model's answer and the caller's updated usage.
type ClaudeResponse struct {
	Message      string `json:"message"      example:"Hi! How can I help you today?"`
	Remaining    int    `json:"remaining"    example:"49"`
	SessionCount int    `json:"sessionCount" example:"1"`
}

// NotifyRequest is the body of POST /api/notify.
type NotifyRequest struct {
	Type               string           `json:"type"               example:"submission"`
	UserEmail          string           `json:"userEmail"          example:"jane@example.com"`
	UserName           string           `json:"userName"           example:"Jane"`
	BotConfig          domain.BotConfig `json:"botConfig"`
	SessionCount       int              `json:"sessionCount"       example:"12"`
	ConversationLength int              `json:"conversationLength" example:"8"`
	Prompt             string           `json:"prompt"`
}

// SuccessResponse is a bare acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Notification sent successfully"`
}

// Claude godoc
// @ID          claude
// @Summary     Proxy a conversation to the model
// @Description Forwards messages to the configured model and counts one session for userEmail.
// @Tags        Model
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ClaudeRequest  true  "Conversation"
// @Success     200  {object}  handlers.ClaudeResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing fields"
// @Failure     429  {object}  handlers.ErrorResponse  "Session limit reached"
// @Failure     500  {object}  handlers.ErrorResponse  "Model not configured"
// @Failure     502  {object}  handlers.ErrorResponse  "Model error"
// @Router      /api/claude [post]
func (h *Handlers) Claude(c *gin.Context) {
	var req ClaudeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidJSON)
		return
	}
	res, err := h.proxy.Complete(c.Request.Context(), req.UserEmail, req.Messages)
	if errors.Is(err, services.ErrQuotaExceeded) {
		failQuota(c, res.Usage.Count)
		return
	}
	if err != nil {
		h.failErr(c, err, "Model API key not configured on server")
		return
	}
	ok(c, http.StatusOK, ClaudeResponse{
		Message:      res.Message,
		Remaining:    res.Usage.Remaining,
		SessionCount: res.Usage.Count,
	})
}

// Notify godoc
// @ID          notify
// @Summary     Notify the business team
// @Description Sends a formatted WhatsApp or email message about a submission or a user reaching the limit.
// @Tags        Notifications
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.NotifyRequest  true  "Notification"
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid body"
// @Failure     500  {object}  handlers.ErrorResponse  "Channel not configured"
// @Failure     502  {object}  handlers.ErrorResponse  "Gateway error"
// @Router      /api/notify [post]
func (h *Handlers) Notify(c *gin.Context) {
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidJSON)
		return
	}
	err := h.notify.Send(c.Request.Context(), services.NotifyRequest{
		Kind:               req.Type,
		UserEmail:          req.UserEmail,
		UserName:           req.UserName,
		Config:             req.BotConfig,
		SessionCount:       req.SessionCount,
		ConversationLength: req.ConversationLength,
		Prompt:             req.Prompt,
	})
	if err != nil {
		h.failErr(c, err, "Notification service not configured")
		return
	}
	ok(c, http.StatusOK, SuccessResponse{Success: true, Message: "Notification sent successfully"})
}
