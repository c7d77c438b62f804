package jwt

import (
	"testing"
	"time"

	"insurance-marketplace/config"
	"insurance-marketplace/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	})
}

func TestGenerateAndValidate(t *testing.T) {
	s := newService()
	sub := Subject{AccountID: uuid.New(), ProfileID: "p1", Email: "a@b.co", Role: entity.RoleClient}

	token, tokenID, err := s.GenerateAccessToken(sub)
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, sub.AccountID, claims.AccountID)
	assert.Equal(t, "p1", claims.ProfileID)
	assert.Equal(t, entity.RoleClient, claims.Role)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, tokenID, claims.TokenID)

	refresh, _, err := s.GenerateRefreshToken(sub)
	require.NoError(t, err)
	claims, err = s.ValidateToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, RefreshToken, claims.TokenType)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	token, _, err := newService().GenerateAccessToken(Subject{AccountID: uuid.New()})
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "other", AccessExpiry: time.Minute})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	s := newService()
	s.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	token, _, err := s.GenerateAccessToken(Subject{AccountID: uuid.New()})
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.Error(t, err)
}
