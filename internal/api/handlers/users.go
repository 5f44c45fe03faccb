package handlers

import (
	"errors"
	"net/http"

	"github.com/fuelsight/tank-telemetry/internal/api/response"
	"github.com/fuelsight/tank-telemetry/internal/models"
	"github.com/fuelsight/tank-telemetry/internal/repository"
	"github.com/fuelsight/tank-telemetry/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler manages login accounts. All routes are admin-only.
type UserHandler struct {
	userRepo *repository.UserRepository
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userRepo *repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// HandleList handles GET /api/v1/users.
func (h *UserHandler) HandleList(c *gin.Context) {
	users, err := h.userRepo.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list users")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users})
}

// HandleGet handles GET /api/v1/users/:id.
func (h *UserHandler) HandleGet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id", nil)
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, "failed to get user")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

type createUserRequest struct {
	Email      string     `json:"email" binding:"required,email"`
	Name       string     `json:"name" binding:"required"`
	Password   string     `json:"password" binding:"required,min=8"`
	Role       string     `json:"role" binding:"required,oneof=ADMIN DRIVER CUSTOMER"`
	CustomerID *uuid.UUID `json:"customer_id"`
	Active     *bool      `json:"active"`
}

// HandleCreate handles POST /api/v1/users.
func (h *UserHandler) HandleCreate(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email, name, password, and role are required", err.Error())
		return
	}

	if existing, err := h.userRepo.GetByEmail(c.Request.Context(), req.Email); err == nil && existing != nil {
		response.Conflict(c, "user with this email already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		response.InternalError(c, "failed to hash password")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	user := &models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         req.Role,
		Active:       active,
		CustomerID:   req.CustomerID,
	}

	if err := h.userRepo.Create(c.Request.Context(), user); err != nil {
		response.InternalError(c, "failed to create user")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

type updateUserRequest struct {
	Email      *string    `json:"email"`
	Name       *string    `json:"name"`
	Password   *string    `json:"password"`
	Role       *string    `json:"role"`
	CustomerID *uuid.UUID `json:"customer_id"`
	Active     *bool      `json:"active"`
}

// HandleUpdate handles PUT /api/v1/users/:id.
func (h *UserHandler) HandleUpdate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id", nil)
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	if req.Role != nil {
		switch *req.Role {
		case models.RoleAdmin, models.RoleDriver, models.RoleCustomer:
		default:
			response.BadRequest(c, "invalid role", nil)
			return
		}
	}

	upd := repository.UserUpdate{
		Email:      req.Email,
		Name:       req.Name,
		Role:       req.Role,
		Active:     req.Active,
		CustomerID: req.CustomerID,
	}

	if req.Password != nil && *req.Password != "" {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			response.InternalError(c, "failed to hash password")
			return
		}
		upd.PasswordHash = &hash
	}

	user, err := h.userRepo.Update(c.Request.Context(), id, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, "failed to update user")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// HandleDelete handles DELETE /api/v1/users/:id. Deleting your own account
// is rejected.
func (h *UserHandler) HandleDelete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id", nil)
		return
	}

	if callerID, ok := c.Get("user_id"); ok {
		if uid, ok := callerID.(uuid.UUID); ok && uid == id {
			response.BadRequest(c, "cannot delete your own account", nil)
			return
		}
	}

	if err := h.userRepo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, "failed to delete user")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "user deleted"})
}
