package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fuelsight/tank-telemetry/internal/api/response"
	"github.com/fuelsight/tank-telemetry/internal/mail"
	"github.com/fuelsight/tank-telemetry/internal/models"
	"github.com/fuelsight/tank-telemetry/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReadingHandler accepts reading submissions and serves reading queries.
type ReadingHandler struct {
	readingRepo *repository.ReadingRepository
	tankRepo    *repository.TankRepository
	mailer      mail.Sender
	settings    *SettingsHandler
}

// NewReadingHandler creates a new reading handler.
func NewReadingHandler(readingRepo *repository.ReadingRepository, tankRepo *repository.TankRepository, mailer mail.Sender, settings *SettingsHandler) *ReadingHandler {
	return &ReadingHandler{readingRepo: readingRepo, tankRepo: tankRepo, mailer: mailer, settings: settings}
}

type submitReadingRequest struct {
	TankID      uuid.UUID  `json:"tank_id" binding:"required"`
	SiteID      uuid.UUID  `json:"site_id" binding:"required"`
	Reading     *float64   `json:"reading" binding:"required"`
	Percentage  *float64   `json:"percentage"`
	ReadingDate *time.Time `json:"reading_date"`
	Notes       string     `json:"notes"`
}

// HandleSubmit handles POST /api/v1/readings. The missing one of
// percentage/volume is derived from the tank capacity. A notification email
// is sent best-effort; its failure never fails the submission.
func (h *ReadingHandler) HandleSubmit(c *gin.Context) {
	var req submitReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "tank_id, site_id and reading are required", err.Error())
		return
	}

	tank, err := h.tankRepo.GetDetail(c.Request.Context(), req.TankID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(c, "tank not found")
			return
		}
		response.InternalError(c, "failed to load tank")
		return
	}

	reading := *req.Reading
	var percentage, volume float64
	if req.Percentage != nil {
		percentage = *req.Percentage
		volume = (percentage / 100) * tank.Capacity
	} else {
		volume = reading
		if tank.Capacity > 0 {
			percentage = (reading / tank.Capacity) * 100
		}
	}

	submittedAt := time.Now()
	if req.ReadingDate != nil {
		submittedAt = *req.ReadingDate
	}

	userID, _ := c.Get("user_id")
	uid, ok := userID.(uuid.UUID)
	if !ok {
		response.Unauthorized(c, "missing user identity")
		return
	}

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}

	tankReading := &models.TankReading{
		Reading:         reading,
		Percentage:      &percentage,
		EstimatedVolume: &volume,
		Notes:           notes,
		SubmittedAt:     submittedAt,
		UserID:          uid,
		SiteID:          req.SiteID,
		TankID:          req.TankID,
	}

	if err := h.readingRepo.Create(c.Request.Context(), tankReading); err != nil {
		response.InternalError(c, "failed to submit reading")
		return
	}

	userName, _ := c.Get("user_name")
	submittedBy, _ := userName.(string)
	if err := h.mailer.SendReadingNotification(h.settings.Recipient(), mail.ReadingNotification{
		CustomerName: tank.CustomerName,
		DropPoint:    tank.DropPointNumber,
		Address:      tank.SiteAddress,
		TankNumber:   tank.TankNumber,
		Capacity:     tank.Capacity,
		Reading:      reading,
		Percentage:   percentage,
		Volume:       volume,
		Notes:        req.Notes,
		SubmittedBy:  submittedBy,
		SubmittedAt:  submittedAt,
	}); err != nil {
		slog.Error("reading notification email failed", "error", err, "reading_id", tankReading.ID)
	}

	response.Success(c, http.StatusCreated, gin.H{"reading": tankReading})
}

// HandleList handles GET /api/v1/readings with an optional inclusive
// startDate/endDate range (RFC 3339).
func (h *ReadingHandler) HandleList(c *gin.Context) {
	start, end, err := parseDateRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		response.BadRequest(c, "invalid date range", err.Error())
		return
	}

	readings, err := h.readingRepo.List(c.Request.Context(), start, end)
	if err != nil {
		response.InternalError(c, "failed to list readings")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"readings": readings})
}

// HandleLatest handles GET /api/v1/readings/latest?tankId=...
func (h *ReadingHandler) HandleLatest(c *gin.Context) {
	tankID, err := uuid.Parse(c.Query("tankId"))
	if err != nil {
		response.BadRequest(c, "tankId is required", nil)
		return
	}

	reading, err := h.readingRepo.LatestForTank(c.Request.Context(), tankID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Success(c, http.StatusOK, gin.H{"reading": nil})
			return
		}
		response.InternalError(c, "failed to get latest reading")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reading": reading})
}

// parseDateRange parses optional RFC 3339 (or date-only) bounds.
func parseDateRange(startStr, endStr string) (*time.Time, *time.Time, error) {
	parse := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return &t, nil
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}

	start, err := parse(startStr)
	if err != nil {
		return nil, nil, err
	}
	end, err := parse(endStr)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}
