package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fuelsight/tank-telemetry/internal/api/response"
	"github.com/fuelsight/tank-telemetry/internal/repository"
	"github.com/gin-gonic/gin"
)

// TelemetryHandler serves gauge-feed telemetry rows.
type TelemetryHandler struct {
	telemetryRepo *repository.TelemetryRepository
}

// NewTelemetryHandler creates a new telemetry handler.
func NewTelemetryHandler(telemetryRepo *repository.TelemetryRepository) *TelemetryHandler {
	return &TelemetryHandler{telemetryRepo: telemetryRepo}
}

// HandleList handles GET /api/v1/telemetry. Supports search (substring on
// drop point or tank number), dropPoint (exact), and limit.
func (h *TelemetryHandler) HandleList(c *gin.Context) {
	limit := 100
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			response.BadRequest(c, "invalid limit", nil)
			return
		}
		limit = n
	}

	rows, err := h.telemetryRepo.List(c.Request.Context(), c.Query("search"), c.Query("dropPoint"), limit)
	if err != nil {
		response.InternalError(c, "failed to list telemetry")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"telemetry": rows})
}

// HandleSync handles POST /api/v1/telemetry/sync. The gauge vendor pushes on
// its own schedule; this endpoint just acknowledges a manual refresh request.
func (h *TelemetryHandler) HandleSync(c *gin.Context) {
	response.Success(c, http.StatusAccepted, gin.H{
		"message":      "telemetry sync requested",
		"requested_at": time.Now().UTC(),
	})
}
