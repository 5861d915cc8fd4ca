package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/infrastructure/config"
)

func newTestService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-at-least-32-characters-long",
		AccessTokenExpiration: expiration,
		Issuer:                "storefront-test",
	})
}

func TestJWTService(t *testing.T) {
	userID := uuid.New()

	t.Run("generates and validates token", func(t *testing.T) {
		svc := newTestService(time.Hour)

		token, err := svc.GenerateToken(userID, "shopper@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, token.Value)
		assert.Equal(t, "Bearer", token.TokenType)
		assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, time.Minute)

		claims, err := svc.ValidateToken(token.Value)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.Equal(t, "shopper@example.com", claims.Email)
		assert.Equal(t, "storefront-test", claims.Issuer)
		assert.Equal(t, userID.String(), claims.Subject)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		svc := newTestService(-time.Minute)

		token, err := svc.GenerateToken(userID, "")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token.Value)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		svc := newTestService(time.Hour)
		other := NewJWTService(config.JWTConfig{
			Secret:                "a-completely-different-32-char-secret!!",
			AccessTokenExpiration: time.Hour,
			Issuer:                "storefront-test",
		})

		token, err := other.GenerateToken(userID, "")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token.Value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		svc := newTestService(time.Hour)
		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects token without user id", func(t *testing.T) {
		svc := newTestService(time.Hour)

		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "storefront-test",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
			},
		}
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := raw.SignedString([]byte("test-secret-at-least-32-characters-long"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrMissingUserID)
	})
}
