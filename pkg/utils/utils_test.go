package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_AccessToken(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)
	id := uuid.New()

	token, err := m.GenerateAccessToken(id, "a@b.c", "admin")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	_, err = NewJWTManager("other", time.Minute, time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_RefreshTokenIsNotAccessToken(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)
	id := uuid.New()

	refresh, err := m.GenerateRefreshToken(id)
	require.NoError(t, err)

	got, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = m.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestInvoiceNumber(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Regexp(t, `^INV-1700000000123-[0-9A-F]{4}$`, GenerateInvoiceNumber(now))
	assert.Regexp(t, `^INV-1700000000123-[0-9A-F]{4}$`, NormalizeInvoiceNumber("   ", now))
	assert.Equal(t, "A-1", NormalizeInvoiceNumber(" A-1 ", now))
}
