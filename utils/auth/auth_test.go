package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret: "test-secret",
		Issuer: "enacton-training-test",
		Expiry: time.Hour,
	})
}

func TestGeneratePairAndValidate(t *testing.T) {
	m := newManager()

	pair, err := m.GeneratePair(42, "lead@example.com", "Team Lead", 3)
	require.NoError(t, err)
	assert.Equal(t, 3600, pair.ExpiresIn)

	claims, err := m.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.ProfileID)
	assert.Equal(t, "Team Lead", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.NotEmpty(t, claims.ID)

	refresh, err := m.ValidateToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
	assert.NotEqual(t, claims.ID, refresh.ID)
}

func TestValidateRejectsForeignTokens(t *testing.T) {
	m := newManager()
	other := NewJWTManager(JWTConfig{Secret: "other", Issuer: "enacton-training-test"})

	token, _, err := other.GenerateAccessToken(1, "a@b.c", "HR", 0)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := NewJWTManager(JWTConfig{Secret: "test-secret", Issuer: "someone-else"})
	token, _, err = wrongIssuer.GenerateAccessToken(1, "a@b.c", "HR", 0)
	require.NoError(t, err)
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	m := NewJWTManager(JWTConfig{Secret: "s", Issuer: "i", Expiry: -time.Minute})
	token, _, err := m.GenerateAccessToken(1, "a@b.c", "HR", 0)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)

	exp, err := m.GetTokenExpiry(token)
	require.NoError(t, err)
	assert.True(t, exp.Before(time.Now()))
}

func TestPasswordPolicy(t *testing.T) {
	assert.ErrorIs(t, CheckPassword("short1"), ErrPasswordTooShort)
	assert.ErrorIs(t, CheckPassword("12345678"), ErrPasswordNoLetter)
	assert.NoError(t, CheckPassword("onboard2024"))
}

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("onboard2024")
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword(hash, "onboard2024"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrong-password"), ErrPasswordMismatch)
}
