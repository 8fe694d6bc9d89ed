package service

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "asset-system/pkg/errors"
)

func newTestJWT() *jwtService {
	return NewJWTService("test-secret", time.Hour, 24*time.Hour, zap.NewNop()).(*jwtService)
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestJWT()

	access, refresh, err := svc.GenerateTokens(7, 3)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
	assert.Equal(t, uint64(3), claims.TenantID)
	assert.False(t, claims.IsRefreshToken)

	refreshClaims, err := svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, refreshClaims.IsRefreshToken)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestJWT()
	access, _, err := svc.GenerateTokens(7, 3)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateToken_WrongSecretAndMissingTenant(t *testing.T) {
	svc := newTestJWT()

	other := NewJWTService("another-secret", time.Hour, time.Hour, zap.NewNop())
	foreign, _, err := other.GenerateTokens(7, 3)
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	noTenant, err := svc.sign(&JwtCustomClaim{
		UserID:           7,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	require.NoError(t, err)
	_, err = svc.ValidateToken(noTenant)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
