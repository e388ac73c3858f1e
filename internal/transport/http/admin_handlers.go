package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/whisperspace/server/internal/reaper"
)

// AdminHandlers provides administrative endpoints.
type AdminHandlers struct {
	reaper *reaper.Reaper
	log    *zerolog.Logger
}

// NewAdminHandlers creates a new admin handlers instance.
func NewAdminHandlers(r *reaper.Reaper, logger *zerolog.Logger) *AdminHandlers {
	return &AdminHandlers{reaper: r, log: logger}
}

// Reap triggers one reap cycle and returns the batch report. A single room's
// failure is reported, not fatal.
// POST /api/admin/reap
func (h *AdminHandlers) Reap(c *gin.Context) {
	report := h.reaper.RunOnce(c.Request.Context())
	h.log.Info().Int("deleted", report.Deleted).Int("failed", len(report.Failures)).Msg("manual reap triggered")
	c.JSON(http.StatusOK, report)
}
