package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/fuelsight/tank-telemetry/internal/api/response"
	"github.com/fuelsight/tank-telemetry/internal/config"
	"github.com/fuelsight/tank-telemetry/internal/export"
	"github.com/fuelsight/tank-telemetry/internal/importer"
	"github.com/fuelsight/tank-telemetry/internal/mail"
	"github.com/fuelsight/tank-telemetry/internal/repository"
	"github.com/gin-gonic/gin"
)

// ImportExportHandler drives the spreadsheet import pipeline and the
// readings export.
type ImportExportHandler struct {
	importer    *importer.Importer
	exporter    *export.Exporter
	readingRepo *repository.ReadingRepository
	mailer      mail.Sender
	settings    *SettingsHandler
	cfg         *config.Config
}

// NewImportExportHandler creates a new import/export handler.
func NewImportExportHandler(
	imp *importer.Importer,
	exp *export.Exporter,
	readingRepo *repository.ReadingRepository,
	mailer mail.Sender,
	settings *SettingsHandler,
	cfg *config.Config,
) *ImportExportHandler {
	return &ImportExportHandler{
		importer:    imp,
		exporter:    exp,
		readingRepo: readingRepo,
		mailer:      mailer,
		settings:    settings,
		cfg:         cfg,
	}
}

// HandleImport handles POST /api/v1/import. Row-level failures are reported
// in the response body; the call itself succeeds even when every row failed.
func (h *ImportExportHandler) HandleImport(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file field is required", nil)
		return
	}

	if !strings.EqualFold(filepath.Ext(file.Filename), ".xlsx") {
		response.BadRequest(c, "file must be an .xlsx workbook", nil)
		return
	}

	if file.Size > h.cfg.Import.MaxFileSize {
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
			fmt.Sprintf("file exceeds max size of %d bytes", h.cfg.Import.MaxFileSize), nil)
		return
	}

	src, err := file.Open()
	if err != nil {
		response.InternalError(c, "failed to open uploaded file")
		return
	}
	defer src.Close()

	result, err := h.importer.ImportWorkbook(c.Request.Context(), src)
	if err != nil {
		response.BadRequest(c, fmt.Sprintf("import failed: %v", err), nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"imported": result.Success,
		"errors":   result.Errors,
	})
}

type exportRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	EmailTo   string `json:"emailTo"`
}

// HandleExport handles POST /api/v1/export: renders the unexported readings
// to a workbook, marks them exported, and emails the workbook.
func (h *ImportExportHandler) HandleExport(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		response.BadRequest(c, "invalid date range", err.Error())
		return
	}

	workbook, count, err := h.exporter.Generate(c.Request.Context(), start, end)
	if err != nil {
		response.InternalError(c, fmt.Sprintf("export failed: %v", err))
		return
	}

	recipient := req.EmailTo
	if recipient == "" {
		recipient = h.settings.Recipient()
	}

	filename := export.Filename(time.Now())
	if err := h.mailer.SendReadingsReport(recipient, filename, workbook); err != nil {
		response.InternalError(c, fmt.Sprintf("export email failed: %v", err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":  "tank readings exported and emailed",
		"filename": filename,
		"sent_to":  recipient,
		"count":    count,
	})
}

// HandlePendingCount handles GET /api/v1/export: the number of readings not
// yet exported.
func (h *ImportExportHandler) HandlePendingCount(c *gin.Context) {
	count, err := h.readingRepo.CountUnexported(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to count pending readings")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"count": count})
}
