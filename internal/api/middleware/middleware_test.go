package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/fuelsight/tank-telemetry/internal/config"
	"github.com/fuelsight/tank-telemetry/internal/models"
	"github.com/fuelsight/tank-telemetry/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-middleware-tests"
const testIssuer = "test-issuer"

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:      testSecret,
		Issuer:      testIssuer,
		ExpiryHours: 24,
	}
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware())
	r.Use(CorrelationMiddleware())
	return r
}

func generateTestToken(userID uuid.UUID, name, role string, customerID *uuid.UUID) string {
	token, _ := auth.GenerateToken(testSecret, testIssuer, userID, name, role, customerID, 24)
	return token
}

// ---------------------------------------------------------------------------
// Auth middleware
// ---------------------------------------------------------------------------

func TestAuthMiddleware_ValidToken(t *testing.T) {
	cfg := testJWTConfig()
	r := setupRouter()

	userID := uuid.New()

	var capturedUserID uuid.UUID
	var capturedRole string

	r.GET("/test", AuthMiddleware(cfg), func(c *gin.Context) {
		capturedUserID = c.MustGet("user_id").(uuid.UUID)
		capturedRole = c.MustGet("role").(string)
		c.JSON(200, gin.H{"ok": true})
	})

	token := generateTestToken(userID, "Admin", models.RoleAdmin, nil)
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, userID, capturedUserID, "user_id should be extracted from JWT")
	assert.Equal(t, models.RoleAdmin, capturedRole)
}

func TestAuthMiddleware_CustomerScopeOnContext(t *testing.T) {
	cfg := testJWTConfig()
	r := setupRouter()

	customerID := uuid.New()
	var capturedCustomerID uuid.UUID
	var hadCustomerID bool

	r.GET("/test", AuthMiddleware(cfg), func(c *gin.Context) {
		v, ok := c.Get("customer_id")
		hadCustomerID = ok
		if ok {
			capturedCustomerID = v.(uuid.UUID)
		}
		c.JSON(200, gin.H{"ok": true})
	})

	token := generateTestToken(uuid.New(), "Customer User", models.RoleCustomer, &customerID)
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.True(t, hadCustomerID, "customer_id should be on the context for customer tokens")
	assert.Equal(t, customerID, capturedCustomerID)
}

func TestAuthMiddleware_StaffTokenHasNoCustomerScope(t *testing.T) {
	cfg := testJWTConfig()
	r := setupRouter()

	var hadCustomerID bool
	r.GET("/test", AuthMiddleware(cfg), func(c *gin.Context) {
		_, hadCustomerID = c.Get("customer_id")
		c.JSON(200, gin.H{"ok": true})
	})

	token := generateTestToken(uuid.New(), "Driver", models.RoleDriver, nil)
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.False(t, hadCustomerID)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	cfg := testJWTConfig()
	r := setupRouter()
	r.GET("/test", AuthMiddleware(cfg), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	cfg := testJWTConfig()
	r := setupRouter()
	r.GET("/test", AuthMiddleware(cfg), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer totally-bogus-token")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	r := setupRouter()
	r.GET("/test", AuthMiddleware(cfg), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	// Generate token with a different secret
	token, err := auth.GenerateToken("wrong-secret", testIssuer, uuid.New(), "User", models.RoleAdmin, nil, 24)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
}

func TestAuthMiddleware_MalformedAuthorizationHeader(t *testing.T) {
	cfg := testJWTConfig()
	r := setupRouter()
	r.GET("/test", AuthMiddleware(cfg), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	// No "Bearer " prefix
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
}

// ---------------------------------------------------------------------------
// RBAC middleware
// ---------------------------------------------------------------------------

func TestRequireRole_Allowed(t *testing.T) {
	cfg := testJWTConfig()
	r := setupRouter()
	r.GET("/admin-only", AuthMiddleware(cfg), RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	token := generateTestToken(uuid.New(), "Admin", models.RoleAdmin, nil)
	req := httptest.NewRequest("GET", "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
}

func TestRequireRole_Forbidden(t *testing.T) {
	cfg := testJWTConfig()
	r := setupRouter()
	r.GET("/admin-only", AuthMiddleware(cfg), RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	token := generateTestToken(uuid.New(), "Customer User", models.RoleCustomer, nil)
	req := httptest.NewRequest("GET", "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 403, w.Code)
}

func TestRequireRole_MultipleRoles(t *testing.T) {
	cfg := testJWTConfig()
	r := setupRouter()
	r.GET("/staff", AuthMiddleware(cfg), RequireRole(models.RoleAdmin, models.RoleDriver), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	for role, wantCode := range map[string]int{
		models.RoleAdmin:    200,
		models.RoleDriver:   200,
		models.RoleCustomer: 403,
	} {
		token := generateTestToken(uuid.New(), "User", role, nil)
		req := httptest.NewRequest("GET", "/staff", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, wantCode, w.Code, "role %s", role)
	}
}

func TestRequireRole_NoRoleOnContext(t *testing.T) {
	r := setupRouter()
	r.GET("/protected", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 403, w.Code)
}

// ---------------------------------------------------------------------------
// Correlation middleware
// ---------------------------------------------------------------------------

func TestCorrelationMiddleware_GeneratesID(t *testing.T) {
	r := setupRouter()
	r.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestCorrelationMiddleware_PropagatesProvidedID(t *testing.T) {
	r := setupRouter()
	r.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Correlation-ID", "client-supplied-id")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, "client-supplied-id", w.Header().Get("X-Correlation-ID"))
}
