// Session HTTP handlers.
//
//   - GET  /api/session/:email   (usage)
//   - POST /api/session          (count one session)
//   - POST /api/session/reset    (reset to zero)
//   - GET  /api/admin/sessions   (dump, development only)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-salesbot-backend/internal/services"
)

// SessionRequest names the user whose counter is changed.
type SessionRequest struct {
	UserEmail string `json:"userEmail" example:"jane@example.com"`
}

// SessionIncrementResponse is the counter after a successful increment.
type SessionIncrementResponse struct {
	Success      bool `json:"success"      example:"true"`
	SessionCount int  `json:"sessionCount" example:"3"`
	Remaining    int  `json:"remaining"    example:"47"`
}

// SessionResetResponse confirms a reset.
type SessionResetResponse struct {
	Success   bool   `json:"success"   example:"true"`
	Message   string `json:"message"   example:"Session reset successfully"`
	Remaining int    `json:"remaining" example:"50"`
}

// bindUserEmail reads a SessionRequest and rejects a blank email.
func bindUserEmail(c *gin.Context) (string, bool) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgInvalidJSON)
		return "", false
	}
	email := strings.TrimSpace(req.UserEmail)
	if email == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "userEmail is required")
		return "", false
	}
	return email, true
}

// GetSession godoc
// @ID          getSession
// @Summary     Session usage for a user
// @Description Returns how many model-backed operations the user has made. Unknown users have a count of 0.
// @Tags        Sessions
// @Produce     json
// @Param       email  path  string  true  "User email"  example(jane@example.com)
// @Success     200  {object}  services.Usage
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/session/{email} [get]
func (h *Handlers) GetSession(c *gin.Context) {
	u, err := h.quota.Usage(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.failErr(c, err, "")
		return
	}
	ok(c, http.StatusOK, u)
}

// IncrementSession godoc
// @ID          incrementSession
// @Summary     Count one session
// @Description Checks the ceiling and, if below it, increments the user's counter.
// @Tags        Sessions
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.SessionRequest  true  "User"
// @Success     200  {object}  handlers.SessionIncrementResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing userEmail"
// @Failure     429  {object}  handlers.ErrorResponse  "Session limit reached"
// @Router      /api/session [post]
func (h *Handlers) IncrementSession(c *gin.Context) {
	email, good := bindUserEmail(c)
	if !good {
		return
	}
	u, err := h.quota.Increment(c.Request.Context(), email)
	if errors.Is(err, services.ErrQuotaExceeded) {
		failQuota(c, u.Count)
		return
	}
	if err != nil {
		h.failErr(c, err, "")
		return
	}
	ok(c, http.StatusOK, SessionIncrementResponse{Success: true, SessionCount: u.Count, Remaining: u.Remaining})
}

// ResetSession godoc
// @ID          resetSession
// @Summary     Reset a user's sessions
// @Tags        Sessions
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.SessionRequest  true  "User"
// @Success     200  {object}  handlers.SessionResetResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing userEmail"
// @Router      /api/session/reset [post]
func (h *Handlers) ResetSession(c *gin.Context) {
	email, good := bindUserEmail(c)
	if !good {
		return
	}
	u, err := h.quota.Reset(c.Request.Context(), email)
	if err != nil {
		h.failErr(c, err, "")
		return
	}
	ok(c, http.StatusOK, SessionResetResponse{Success: true, Message: "Session reset successfully", Remaining: u.Remaining})
}

// AdminSessions godoc
// @ID          adminSessions
// @Summary     Dump all session counters
// @Description Development only; returns 403 in any other environment.
// @Tags        Sessions
// @Produce     json
// @Success     200  {array}   services.SessionUsage
// @Failure     403  {object}  handlers.ErrorResponse  "Access denied"
// @Router      /api/admin/sessions [get]
func (h *Handlers) AdminSessions(c *gin.Context) {
	if !h.dev {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "Access denied")
		return
	}
	list, err := h.quota.List(c.Request.Context())
	if err != nil {
		h.failErr(c, err, "")
		return
	}
	if list == nil {
		list = []services.SessionUsage{}
	}
	ok(c, http.StatusOK, list)
}
