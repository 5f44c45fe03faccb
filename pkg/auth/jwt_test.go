package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	// Test roundtrip: generate token -> validate token works
	secret := "test-secret-key-12345"
	issuer := "test-issuer"
	userID := uuid.New()
	name := "Test Admin"
	role := "ADMIN"
	expiryHours := 24

	tokenString, err := GenerateToken(secret, issuer, userID, name, role, nil, expiryHours)

	require.NoError(t, err, "Should not error when generating token")
	assert.NotEmpty(t, tokenString, "Token should not be empty")

	claims, err := ValidateToken(tokenString, secret)

	require.NoError(t, err, "Should not error when validating token")
	assert.NotNil(t, claims)

	// Verify claims match what was provided
	assert.Equal(t, userID, claims.UserID, "User ID should match")
	assert.Equal(t, name, claims.Name, "Name should match")
	assert.Equal(t, role, claims.Role, "Role should match")
	assert.Nil(t, claims.CustomerID, "Customer ID should be unset for staff roles")
	assert.Equal(t, issuer, claims.Issuer, "Issuer should match")
	assert.Equal(t, userID.String(), claims.Subject, "Subject should be user ID")

	// Verify standard claims are set
	assert.NotNil(t, claims.ExpiresAt, "ExpiresAt should be set")
	assert.NotNil(t, claims.IssuedAt, "IssuedAt should be set")
	assert.NotNil(t, claims.NotBefore, "NotBefore should be set")
	assert.NotEmpty(t, claims.ID, "Token ID should be set")
}

func TestGenerateToken_CustomerScope(t *testing.T) {
	// CUSTOMER-role tokens carry the owning customer's ID
	secret := "test-secret-key-12345"
	userID := uuid.New()
	customerID := uuid.New()

	tokenString, err := GenerateToken(secret, "test-issuer", userID, "Customer User", "CUSTOMER", &customerID, 24)
	require.NoError(t, err)

	claims, err := ValidateToken(tokenString, secret)
	require.NoError(t, err)

	require.NotNil(t, claims.CustomerID)
	assert.Equal(t, customerID, *claims.CustomerID)
}

func TestGenerateToken_MultipleCallsCreateDifferentIDs(t *testing.T) {
	// Test that multiple token generations create unique token IDs
	secret := "test-secret-key-12345"
	userID := uuid.New()

	token1, err := GenerateToken(secret, "test-issuer", userID, "User", "DRIVER", nil, 24)
	require.NoError(t, err)

	token2, err := GenerateToken(secret, "test-issuer", userID, "User", "DRIVER", nil, 24)
	require.NoError(t, err)

	claims1, _ := ValidateToken(token1, secret)
	claims2, _ := ValidateToken(token2, secret)

	assert.NotEqual(t, claims1.ID, claims2.ID, "Each token should have a unique ID")
}

func TestValidateToken_ExpiredToken(t *testing.T) {
	// Test that expired token returns error
	secret := "test-secret-key-12345"
	userID := uuid.New()

	tokenString, err := GenerateToken(secret, "test-issuer", userID, "User", "DRIVER", nil, -1)
	require.NoError(t, err, "Should generate token even with past expiry")

	claims, err := ValidateToken(tokenString, secret)

	assert.Error(t, err, "Should error when validating expired token")
	assert.Nil(t, claims, "Claims should be nil for expired token")
	assert.Contains(t, err.Error(), "token")
}

func TestValidateToken_WrongSecret(t *testing.T) {
	// Test that wrong secret returns error
	secret := "test-secret-key-12345"
	userID := uuid.New()

	tokenString, err := GenerateToken(secret, "test-issuer", userID, "User", "DRIVER", nil, 24)
	require.NoError(t, err, "Should generate token")

	claims, err := ValidateToken(tokenString, "wrong-secret-key-67890")

	assert.Error(t, err, "Should error when validating with wrong secret")
	assert.Nil(t, claims, "Claims should be nil with wrong secret")
}

func TestValidateToken_InvalidTokenString(t *testing.T) {
	claims, err := ValidateToken("not.a.valid.token.string", "test-secret-key-12345")

	assert.Error(t, err, "Should error with invalid token")
	assert.Nil(t, claims)
}

func TestValidateToken_TamperedToken(t *testing.T) {
	// Test that tampered token (modified claims) returns error
	secret := "test-secret-key-12345"
	userID := uuid.New()

	tokenString, err := GenerateToken(secret, "test-issuer", userID, "User", "DRIVER", nil, 24)
	require.NoError(t, err)

	tamperedToken := tokenString[:len(tokenString)-10] + "tampered!!"

	claims, err := ValidateToken(tamperedToken, secret)

	assert.Error(t, err, "Should error when token is tampered")
	assert.Nil(t, claims)
}

func TestGenerateToken_DifferentRoles(t *testing.T) {
	secret := "test-secret-key-12345"
	userID := uuid.New()

	roles := []string{"ADMIN", "DRIVER", "CUSTOMER"}

	for _, role := range roles {
		tokenString, err := GenerateToken(secret, "test-issuer", userID, "User", role, nil, 24)
		require.NoError(t, err, "Should generate token for role: %s", role)

		claims, err := ValidateToken(tokenString, secret)
		require.NoError(t, err)
		assert.Equal(t, role, claims.Role, "Role should be %s", role)
	}
}

func TestGenerateToken_ExpirySetFromHours(t *testing.T) {
	secret := "test-secret-key-12345"
	userID := uuid.New()

	tokenString, err := GenerateToken(secret, "test-issuer", userID, "User", "DRIVER", nil, 48)
	require.NoError(t, err)

	claims, err := ValidateToken(tokenString, secret)
	require.NoError(t, err)

	expectedExpiry := time.Now().Add(48 * time.Hour)
	assert.WithinDuration(t, expectedExpiry, claims.ExpiresAt.Time, 5*time.Second)
}
