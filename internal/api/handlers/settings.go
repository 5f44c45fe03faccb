package handlers

import (
	"net/http"
	"sync"

	"github.com/fuelsight/tank-telemetry/internal/api/response"
	"github.com/fuelsight/tank-telemetry/internal/config"
	"github.com/gin-gonic/gin"
)

// Settings are the export preferences adjustable at runtime. They are
// process-scoped: defaults come from the environment and changes do not
// survive a restart.
type Settings struct {
	EmailTo         string `json:"email_to"`
	AutoExport      bool   `json:"auto_export"`
	ExportFrequency string `json:"export_frequency"`
}

// SettingsHandler serves and updates the export settings.
type SettingsHandler struct {
	mu       sync.RWMutex
	settings Settings
}

// NewSettingsHandler creates a settings handler seeded from the export
// configuration.
func NewSettingsHandler(cfg *config.ExportConfig) *SettingsHandler {
	return &SettingsHandler{
		settings: Settings{
			EmailTo:         cfg.Recipient,
			AutoExport:      cfg.AutoExport,
			ExportFrequency: cfg.ExportFrequency,
		},
	}
}

// HandleGet handles GET /api/v1/settings.
func (h *SettingsHandler) HandleGet(c *gin.Context) {
	h.mu.RLock()
	current := h.settings
	h.mu.RUnlock()
	response.Success(c, http.StatusOK, gin.H{"settings": current})
}

type updateSettingsRequest struct {
	EmailTo         *string `json:"email_to"`
	AutoExport      *bool   `json:"auto_export"`
	ExportFrequency *string `json:"export_frequency"`
}

// HandleUpdate handles POST /api/v1/settings.
func (h *SettingsHandler) HandleUpdate(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	h.mu.Lock()
	if req.EmailTo != nil {
		h.settings.EmailTo = *req.EmailTo
	}
	if req.AutoExport != nil {
		h.settings.AutoExport = *req.AutoExport
	}
	if req.ExportFrequency != nil {
		h.settings.ExportFrequency = *req.ExportFrequency
	}
	current := h.settings
	h.mu.Unlock()

	response.Success(c, http.StatusOK, gin.H{"settings": current})
}

// Recipient returns the current export recipient address.
func (h *SettingsHandler) Recipient() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settings.EmailTo
}
