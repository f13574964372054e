package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	eventapp "github.com/freightcore/backend/internal/application/event"
	"github.com/freightcore/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SystemHandler handles health and operational endpoints
type SystemHandler struct {
	BaseHandler
	db        Pinger
	outbox    *eventapp.OutboxService
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, outbox *eventapp.OutboxService, version string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		outbox:    outbox,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
// @name HandlerHealthResponse
type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Database  string `json:"database" example:"up"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Reports service and database health. 503 when the database is unreachable.
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthResponse]
// @Failure      503 {object} APIResponse[HealthResponse]
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Database:  "up",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	status := http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Database = "down"
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}

// OutboxStats godoc
// @ID           getOutboxStats
// @Summary      Outbox relay backlog
// @Description  Entry counts per delivery status. Super admins only.
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[eventapp.OutboxStatsDTO]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/outbox [get]
func (h *SystemHandler) OutboxStats(c *gin.Context) {
	stats, err := h.outbox.GetStats(c.Request.Context(), principal(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
