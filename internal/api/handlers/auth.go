package handlers

import (
	"errors"
	"net/http"

	"github.com/fuelsight/tank-telemetry/internal/api/response"
	"github.com/fuelsight/tank-telemetry/internal/config"
	"github.com/fuelsight/tank-telemetry/internal/repository"
	"github.com/fuelsight/tank-telemetry/pkg/auth"
	"github.com/gin-gonic/gin"
)

// AuthHandler issues JWTs for valid credentials.
type AuthHandler struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(userRepo *repository.UserRepository, cfg *config.Config) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, cfg: cfg}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// HandleLogin handles POST /api/v1/auth/login.
func (h *AuthHandler) HandleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password are required", nil)
		return
	}

	user, err := h.userRepo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Unauthorized(c, "invalid credentials")
			return
		}
		response.InternalError(c, "login failed")
		return
	}

	if !user.Active {
		response.Unauthorized(c, "account is disabled")
		return
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		response.Unauthorized(c, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(
		h.cfg.JWT.Secret, h.cfg.JWT.Issuer,
		user.ID, user.Name, user.Role, user.CustomerID,
		h.cfg.JWT.ExpiryHours,
	)
	if err != nil {
		response.InternalError(c, "failed to generate token")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":          user.ID,
			"email":       user.Email,
			"name":        user.Name,
			"role":        user.Role,
			"customer_id": user.CustomerID,
		},
	})
}
