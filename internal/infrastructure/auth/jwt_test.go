package auth

import (
	"testing"
	"time"

	"github.com/commercehub/backoffice/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-signing",
		AccessTokenExpiration: expiration,
		Issuer:                "backoffice-test",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestService(time.Hour)
	brandID := uuid.New()
	actorID := uuid.New()

	token, expiresAt, err := svc.GenerateToken(GenerateTokenInput{
		BrandID:  brandID,
		ActorID:  actorID,
		Username: "approver",
		Role:     "BRAND_ADMIN",
	})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, brandID.String(), claims.BrandID)
	assert.Equal(t, actorID.String(), claims.ActorID)
	assert.Equal(t, "approver", claims.Username)
	assert.Equal(t, "BRAND_ADMIN", claims.Role)

	gotBrand, err := claims.GetBrandUUID()
	require.NoError(t, err)
	assert.Equal(t, brandID, gotBrand)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService(-time.Minute)

	token, _, err := svc.GenerateToken(GenerateTokenInput{
		BrandID: uuid.New(),
		ActorID: uuid.New(),
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := newTestService(time.Hour)
	other := NewJWTService(config.JWTConfig{
		Secret:                "a-different-secret",
		AccessTokenExpiration: time.Hour,
		Issuer:                "backoffice-test",
	})

	token, _, err := other.GenerateToken(GenerateTokenInput{
		BrandID: uuid.New(),
		ActorID: uuid.New(),
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestService(time.Hour)

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
