package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-salesbot-backend/internal/http/middleware"
	"github.com/tbourn/go-salesbot-backend/internal/store"
)

// HealthServices reports which upstreams have credentials.
type HealthServices struct {
	Model         string `json:"model"         example:"configured"`
	ModelProvider string `json:"modelProvider" example:"anthropic"`
	Notifications string `json:"notifications" example:"missing"`
	NotifyChannel string `json:"notifyChannel" example:"whatsapp"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string         `json:"status"      example:"healthy"`
	Timestamp   string         `json:"timestamp"   example:"2024-11-14T22:13:20.000Z"`
	Environment string         `json:"environment" example:"production"`
	Services    HealthServices `json:"services"`
	Stats       *store.Stats   `json:"stats,omitempty"`
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "missing"
}

// Health godoc
// @ID          health
// @Summary     Liveness and configuration summary
// @Description Reports process health, which upstreams are configured, and stored collection sizes.
// @Tags        System
// @Produce     json
// @Success     200  {object}  handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:      "healthy",
		Timestamp:   h.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Environment: h.status.Environment,
		Services: HealthServices{
			Model:         configured(h.status.ModelConfigured),
			ModelProvider: h.status.ModelProvider,
			Notifications: configured(h.status.NotifyConfigured),
			NotifyChannel: h.status.NotifyChannel,
		},
	}
	if h.stats != nil {
		st, err := h.stats.Stats(c.Request.Context())
		if err != nil {
			lg := middleware.LoggerFrom(c)
			lg.Warn().Err(err).Msg("health stats unavailable")
		} else {
			resp.Stats = &st
		}
	}
	ok(c, http.StatusOK, resp)
}

