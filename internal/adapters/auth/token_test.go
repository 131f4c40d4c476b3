package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokens_IssueAndVerify(t *testing.T) {
	secret := "test-secret"
	tokens := NewJWTTokens(secret)

	token, err := tokens.Issue("staff-123", "s@example.com", "admin", 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "staff-123", claims.Subject)
	assert.Equal(t, "s@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)

	staffID, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "staff-123", staffID)
}

func TestJWTTokens_VerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTTokens("secret-a").Issue("staff-123", "s@example.com", "staff", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTTokens("secret-b").Verify(token)
	assert.Error(t, err)
}

func TestJWTTokens_VerifyRejectsExpired(t *testing.T) {
	tokens := NewJWTTokens("test-secret")
	token, err := tokens.Issue("staff-123", "s@example.com", "staff", -time.Minute)
	require.NoError(t, err)

	_, err = tokens.Verify(token)
	assert.Error(t, err)
}
