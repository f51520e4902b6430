package controllers

import (
	"errors"
	"net/http"
	"time"

	"commerce-service/models"

	"github.com/gin-gonic/gin"
)

type StandardError struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Path      string    `json:"path"`
}

type ValidationErrorResponse struct {
	StandardError
	Errors []models.FieldMessage `json:"errors"`
}

// statusFor maps the error taxonomy onto HTTP outcomes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrUnauthenticated),
		errors.Is(err, models.ErrInvalidToken),
		errors.Is(err, models.ErrExpiredToken):
		return http.StatusUnauthorized, "Não autenticado"
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, "Acesso negado"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "Recurso não encontrado"
	case errors.Is(err, models.ErrReferentialIntegrity):
		return http.StatusBadRequest, "Falha de integridade referencial"
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict, "Transição de status inválida"
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, "Requisição inválida"
	}
	return http.StatusInternalServerError, "Erro interno"
}

// AbortWithError renders err as the standard error body and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	base := StandardError{
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		base.Status = http.StatusUnprocessableEntity
		base.Error = "Dados inválidos"
		c.AbortWithStatusJSON(base.Status, ValidationErrorResponse{StandardError: base, Errors: verr.Errors})
		return
	}

	base.Status, base.Error = statusFor(err)
	if base.Status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(base.Status, base)
}
