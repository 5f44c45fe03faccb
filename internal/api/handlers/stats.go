package handlers

import (
	"net/http"

	"github.com/fuelsight/tank-telemetry/internal/api/response"
	"github.com/fuelsight/tank-telemetry/internal/models"
	"github.com/fuelsight/tank-telemetry/internal/repository"
	"github.com/gin-gonic/gin"
)

// StatsHandler serves the admin dashboard counters.
type StatsHandler struct {
	userRepo     *repository.UserRepository
	customerRepo *repository.CustomerRepository
	siteRepo     *repository.SiteRepository
	tankRepo     *repository.TankRepository
	readingRepo  *repository.ReadingRepository
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(
	userRepo *repository.UserRepository,
	customerRepo *repository.CustomerRepository,
	siteRepo *repository.SiteRepository,
	tankRepo *repository.TankRepository,
	readingRepo *repository.ReadingRepository,
) *StatsHandler {
	return &StatsHandler{
		userRepo:     userRepo,
		customerRepo: customerRepo,
		siteRepo:     siteRepo,
		tankRepo:     tankRepo,
		readingRepo:  readingRepo,
	}
}

// HandleGet handles GET /api/v1/stats.
func (h *StatsHandler) HandleGet(c *gin.Context) {
	ctx := c.Request.Context()
	var stats models.Stats
	var err error

	if stats.Users, err = h.userRepo.Count(ctx); err != nil {
		response.InternalError(c, "failed to load stats")
		return
	}
	if stats.Customers, err = h.customerRepo.Count(ctx); err != nil {
		response.InternalError(c, "failed to load stats")
		return
	}
	if stats.Sites, err = h.siteRepo.Count(ctx); err != nil {
		response.InternalError(c, "failed to load stats")
		return
	}
	if stats.Tanks, err = h.tankRepo.Count(ctx); err != nil {
		response.InternalError(c, "failed to load stats")
		return
	}
	if stats.Readings, err = h.readingRepo.Count(ctx); err != nil {
		response.InternalError(c, "failed to load stats")
		return
	}
	if stats.PendingExport, err = h.readingRepo.CountUnexported(ctx); err != nil {
		response.InternalError(c, "failed to load stats")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}
