package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilite-dev/facilite/internal/access"
)

func TestGenerateAndValidateToken(t *testing.T) {
	InitializeJWT("test-secret", time.Hour)

	token, err := GenerateToken("01ARZ3NDEKTSV4RRFFQ69G5FAV", "+243820000001", access.RoleHotelManager)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", claims.UserID)
	assert.Equal(t, "+243820000001", claims.PhoneNumber)
	assert.Equal(t, access.RoleHotelManager, claims.Role)
	assert.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", claims.Subject)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	InitializeJWT("test-secret", time.Millisecond)

	token, err := GenerateToken("u1", "+243820000002", access.RoleClient)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	InitializeJWT("secret-a", time.Hour)
	token, err := GenerateToken("u1", "+243820000003", access.RoleAdmin)
	require.NoError(t, err)

	InitializeJWT("secret-b", time.Hour)
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	InitializeJWT("test-secret", time.Hour)
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, VerifyPassword("s3cret", hash))
	assert.Error(t, VerifyPassword("wrong", hash))
}

func TestSessionDataHasRole(t *testing.T) {
	s := &SessionData{Role: access.RoleRestaurantManager}
	assert.True(t, s.HasRole(access.RoleAdmin, access.RoleRestaurantManager))
	assert.False(t, s.HasRole(access.RoleAdmin))
}
