package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_GenerateAndValidate_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-signing-key", "persona")

	token, err := svc.GenerateAccessToken("user-123", "user@example.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func Test_ValidateToken_Expired(t *testing.T) {
	svc := NewJWTService("test-signing-key", "persona")

	token, err := svc.GenerateAccessToken("user-123", "user@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	issuing := NewJWTService("key-one", "persona")
	validating := NewJWTService("key-two", "persona")

	token, err := issuing.GenerateAccessToken("user-123", "user@example.com", time.Hour)
	require.NoError(t, err)

	_, err = validating.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

func Test_ValidateToken_Garbage(t *testing.T) {
	svc := NewJWTService("test-signing-key", "persona")

	for _, tokenString := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.ValidateToken(tokenString)
		assert.Error(t, err, "token %q", tokenString)
	}
}

func Test_GenerateAccessToken_UniqueIDs(t *testing.T) {
	svc := NewJWTService("test-signing-key", "persona")

	first, err := svc.GenerateAccessToken("user-123", "user@example.com", time.Hour)
	require.NoError(t, err)
	second, err := svc.GenerateAccessToken("user-123", "user@example.com", time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
