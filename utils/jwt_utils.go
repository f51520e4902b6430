package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"commerce-service/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload written by the authorization server.
type Claims struct {
	UserID      int64    `json:"user_id"`
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// TokenValidator verifies HS256 bearer tokens. It never issues them.
type TokenValidator struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenValidator(secret, issuer string) *TokenValidator {
	return &TokenValidator{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for expiry checks.
func (v *TokenValidator) WithClock(now func() time.Time) *TokenValidator {
	v.now = now
	return v
}

func (v *TokenValidator) ParseToken(tokenString string) (*models.Identity, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, fmt.Errorf("%w: empty token", models.ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", models.ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: missing user_id claim", models.ErrInvalidToken)
	}

	roles := make([]models.Role, 0, len(claims.Authorities))
	for _, authority := range claims.Authorities {
		switch role := models.Role(authority); role {
		case models.RoleClient, models.RoleAdmin:
			roles = append(roles, role)
		}
	}

	return &models.Identity{
		UserID:    claims.UserID,
		Subject:   claims.Subject,
		Roles:     roles,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
