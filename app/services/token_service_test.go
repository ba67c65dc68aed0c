package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) TokenService {
	t.Helper()
	svc, err := NewTokenService(15*time.Minute, 24*time.Hour, "adsphere-test", "adsphere-clients", false, "", "", "test-secret-key-feeling-rather-long")
	require.NoError(t, err)
	return svc
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService(time.Minute, time.Hour, "iss", "aud", false, "", "", "")
	assert.Error(t, err)
}

func TestGenerateAndValidateTokens(t *testing.T) {
	svc := newTestTokenService(t)

	access, refresh, err := svc.GenerateTokens(42, 2)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, 2, claims.Role)
	assert.Equal(t, "access", claims.TokenType)
	assert.NotEmpty(t, claims.TokenID)
	assert.True(t, claims.ExpiresAt.After(time.Now()))

	refreshClaims, err := svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
	assert.NotEqual(t, claims.TokenID, refreshClaims.TokenID)
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	svc := newTestTokenService(t)

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)

	_, err = svc.ValidateToken("")
	assert.Error(t, err)
}

func TestValidateToken_RejectsForeignSignature(t *testing.T) {
	svc := newTestTokenService(t)
	other, err := NewTokenService(15*time.Minute, 24*time.Hour, "adsphere-test", "adsphere-clients", false, "", "", "a-completely-different-secret-key")
	require.NoError(t, err)

	access, _, err := other.GenerateTokens(7, 2)
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	svc := newTestTokenService(t)

	_, refresh, err := svc.GenerateTokens(9, 8)
	require.NoError(t, err)

	newAccess, newRefresh, err := svc.RefreshToken(refresh)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(newAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.UserID)
	assert.Equal(t, 8, claims.Role)
	assert.NotEqual(t, refresh, newRefresh)
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	svc := newTestTokenService(t)

	access, _, err := svc.GenerateTokens(9, 2)
	require.NoError(t, err)

	_, _, err = svc.RefreshToken(access)
	assert.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	svc := newTestTokenService(t)

	access, _, err := svc.GenerateTokens(3, 2)
	require.NoError(t, err)
	assert.False(t, svc.IsTokenRevoked(access))

	require.NoError(t, svc.RevokeToken(access))
	assert.True(t, svc.IsTokenRevoked(access))

	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRevokeToken_RejectsGarbage(t *testing.T) {
	svc := newTestTokenService(t)
	assert.Error(t, svc.RevokeToken("junk"))
}

func TestRevokeToken_AlreadyRevokedIsNoop(t *testing.T) {
	svc := newTestTokenService(t)

	access, _, err := svc.GenerateTokens(5, 2)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(access))
	assert.NoError(t, svc.RevokeToken(access))
}
