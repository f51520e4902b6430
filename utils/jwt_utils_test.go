package utils

import (
	"testing"
	"time"

	"commerce-service/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() Claims {
	return Claims{
		UserID:      1,
		Authorities: []string{"ROLE_CLIENT"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "maria@gmail.com",
			Issuer:    "commerce-auth",
			ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
		},
	}
}

func newValidator() *TokenValidator {
	return NewTokenValidator(testSecret, "commerce-auth").WithClock(func() time.Time { return fixedNow })
}

func TestParseToken(t *testing.T) {
	v := newValidator()

	t.Run("valid token decodes identity", func(t *testing.T) {
		claims := validClaims()
		claims.Authorities = []string{"ROLE_CLIENT", "ROLE_ADMIN", "ROLE_UNKNOWN"}
		id, err := v.ParseToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims))
		require.NoError(t, err)
		assert.Equal(t, int64(1), id.UserID)
		assert.Equal(t, "maria@gmail.com", id.Subject)
		assert.Equal(t, []models.Role{models.RoleClient, models.RoleAdmin}, id.Roles)
		assert.True(t, id.ExpiresAt.Equal(fixedNow.Add(time.Hour)))
	})

	t.Run("tampered signature is invalid", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())
		_, err := v.ParseToken(token + "789")
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("wrong secret is invalid", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims())
		_, err := v.ParseToken(token)
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := validClaims()
		claims.ExpiresAt = jwt.NewNumericDate(fixedNow.Add(-time.Minute))
		_, err := v.ParseToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims))
		assert.ErrorIs(t, err, models.ErrExpiredToken)
		assert.NotErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("missing expiry is invalid", func(t *testing.T) {
		claims := validClaims()
		claims.ExpiresAt = nil
		_, err := v.ParseToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims))
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("foreign issuer is invalid", func(t *testing.T) {
		claims := validClaims()
		claims.Issuer = "someone-else"
		_, err := v.ParseToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims))
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("unexpected algorithm is invalid", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims())
		_, err := v.ParseToken(token)
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("missing user id is invalid", func(t *testing.T) {
		claims := validClaims()
		claims.UserID = 0
		_, err := v.ParseToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims))
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})

	t.Run("garbage and empty are invalid", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "not.a.token"} {
			_, err := v.ParseToken(raw)
			assert.ErrorIs(t, err, models.ErrInvalidToken, raw)
		}
	})
}
