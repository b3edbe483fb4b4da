package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fleetservis/backend/src/config"
)

func TestMain(m *testing.M) {
	config.Cfg = &config.AppConfig{AccessTokenExpiry: time.Hour}
	m.Run()
}

func TestHashPassword_RoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret")

	hash, err := svc.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, svc.CompareHashAndPassword(hash, "correct horse battery staple"))
	assert.Error(t, svc.CompareHashAndPassword(hash, "wrong password"))
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret")

	token, err := svc.GenerateToken("42")
	require.NoError(t, err)

	sub, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", sub)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := NewAuthService("test-secret").GenerateToken("42")
	require.NoError(t, err)

	_, err = NewAuthService("other-secret").ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := NewAuthService("test-secret").ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestGenerateRefreshToken_Unique(t *testing.T) {
	svc := NewAuthService("test-secret")

	first, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	second, err := svc.GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
