package handlers

import (
	"net/http"

	"github.com/fuelsight/tank-telemetry/internal/api/response"
	"github.com/fuelsight/tank-telemetry/internal/repository"
	"github.com/gin-gonic/gin"
)

// CustomerHandler serves customer listings.
type CustomerHandler struct {
	customerRepo *repository.CustomerRepository
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(customerRepo *repository.CustomerRepository) *CustomerHandler {
	return &CustomerHandler{customerRepo: customerRepo}
}

// HandleList handles GET /api/v1/customers.
func (h *CustomerHandler) HandleList(c *gin.Context) {
	customers, err := h.customerRepo.ListWithSites(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list customers")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"customers": customers})
}
