package middlewares

import (
	"fmt"
	"strings"

	"commerce-service/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const identityKey = "identity"

// TokenParser decodes a raw bearer token.
type TokenParser interface {
	ParseToken(token string) (*models.Identity, error)
}

// ErrorRenderer writes the error response and aborts the chain.
type ErrorRenderer func(c *gin.Context, err error)

// AuthMiddleware rejects requests without a valid bearer token and stores the
// decoded identity for the handlers.
func AuthMiddleware(parser TokenParser, log *logrus.Logger, render ErrorRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			log.Warnf("Middleware: %v", err)
			render(c, err)
			return
		}

		id, err := parser.ParseToken(raw)
		if err != nil {
			log.Warnf("Middleware: token rejected: %v", err)
			render(c, fmt.Errorf("%w: %w", models.ErrUnauthenticated, err))
			return
		}

		log.Debugf("Middleware: authenticated user %d (%s)", id.UserID, id.Subject)
		c.Set(identityKey, id)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("%w: authorization header required", models.ErrUnauthenticated)
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: invalid authorization header format", models.ErrUnauthenticated)
	}
	return strings.TrimSpace(token), nil
}

// IdentityFrom returns the authenticated identity, or nil.
func IdentityFrom(c *gin.Context) *models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*models.Identity)
	return id
}
