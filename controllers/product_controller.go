package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"commerce-service/middlewares"
	"commerce-service/models"
	"commerce-service/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProductCatalog interface {
	FindByID(ctx context.Context, id int64) (models.Product, error)
	FindAll(ctx context.Context, filter models.ProductFilter) (models.Page[models.Product], error)
	Insert(ctx context.Context, id *models.Identity, in services.ProductInput) (models.Product, error)
	Delete(ctx context.Context, id *models.Identity, productID int64) error
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type ProductController struct {
	catalog ProductCatalog
	log     *logrus.Logger
}

func NewProductController(catalog ProductCatalog, logger *logrus.Logger) *ProductController {
	return &ProductController{catalog: catalog, log: logger}
}

func (h *ProductController) FindByID(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	p, err := h.catalog.FindByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductController) FindAll(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(services.DefaultPageSize)))

	result, err := h.catalog.FindAll(c.Request.Context(), models.ProductFilter{
		Name: c.Query("name"),
		Page: page,
		Size: size,
		Sort: c.Query("sort"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MapPage(result, toProductMin))
}

func (h *ProductController) Insert(c *gin.Context) {
	defer middlewares.TrackOperation(c, "product_create")()

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Handler: invalid product body: %v", err)
		AbortWithError(c, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}

	in := services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImgURL:      req.ImgURL,
		CategoryIDs: make([]int64, 0, len(req.Categories)),
	}
	for _, ref := range req.Categories {
		in.CategoryIDs = append(in.CategoryIDs, ref.ID)
	}

	p, err := h.catalog.Insert(c.Request.Context(), middlewares.IdentityFrom(c), in)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/products/%d", p.ID))
	c.JSON(http.StatusCreated, p)
}

func (h *ProductController) Delete(c *gin.Context) {
	defer middlewares.TrackOperation(c, "product_delete")()

	id, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), middlewares.IdentityFrom(c), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductController) ListCategories(c *gin.Context) {
	cats, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func pathID(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", models.ErrInvalidInput, raw)
	}
	return id, nil
}
