package handlers

import (
	"errors"
	"net/http"

	"github.com/fuelsight/tank-telemetry/internal/api/response"
	"github.com/fuelsight/tank-telemetry/internal/models"
	"github.com/fuelsight/tank-telemetry/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SiteHandler serves delivery-site listings and detail views.
type SiteHandler struct {
	siteRepo *repository.SiteRepository
}

// NewSiteHandler creates a new site handler.
func NewSiteHandler(siteRepo *repository.SiteRepository) *SiteHandler {
	return &SiteHandler{siteRepo: siteRepo}
}

// HandleList handles GET /api/v1/sites. CUSTOMER-role callers only ever see
// their own customer's sites regardless of query parameters.
func (h *SiteHandler) HandleList(c *gin.Context) {
	filter := repository.SiteFilter{
		DropPoint:    c.Query("dropPoint"),
		CustomerName: c.Query("customerName"),
	}

	if idStr := c.Query("customerId"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			response.BadRequest(c, "invalid customerId", nil)
			return
		}
		filter.CustomerID = &id
	}

	if role, _ := c.Get("role"); role == models.RoleCustomer {
		if customerID, ok := c.Get("customer_id"); ok {
			if cid, ok := customerID.(uuid.UUID); ok {
				filter.CustomerID = &cid
			}
		}
	}

	sites, err := h.siteRepo.List(c.Request.Context(), filter)
	if err != nil {
		response.InternalError(c, "failed to list sites")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sites": sites})
}

// HandleGet handles GET /api/v1/sites/:id.
func (h *SiteHandler) HandleGet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid site id", nil)
		return
	}

	site, err := h.siteRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(c, "site not found")
			return
		}
		response.InternalError(c, "failed to get site")
		return
	}

	// Customers may only inspect their own sites.
	if role, _ := c.Get("role"); role == models.RoleCustomer {
		customerID, ok := c.Get("customer_id")
		cid, isUUID := customerID.(uuid.UUID)
		if !ok || !isUUID || site.CustomerID != cid {
			response.Forbidden(c, "site belongs to another customer")
			return
		}
	}

	response.Success(c, http.StatusOK, gin.H{"site": site})
}
