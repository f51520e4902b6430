package controllers

import (
	"context"
	"net/http"

	"commerce-service/middlewares"
	"commerce-service/models"

	"github.com/gin-gonic/gin"
)

type ProfileFinder interface {
	Me(ctx context.Context, id *models.Identity) (models.User, error)
}

type UserController struct {
	users ProfileFinder
}

func NewUserController(users ProfileFinder) *UserController {
	return &UserController{users: users}
}

func (h *UserController) Me(c *gin.Context) {
	u, err := h.users.Me(c.Request.Context(), middlewares.IdentityFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
