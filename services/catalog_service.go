package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"commerce-service/auth"
	"commerce-service/models"
	"commerce-service/repository"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100

	maxRowOffset = math.MaxInt32
)

// ProductInput is the data accepted when creating a product.
type ProductInput struct {
	Name        string  `json:"name" validate:"min=3,max=80"`
	Description string  `json:"description" validate:"min=10"`
	Price       float64 `json:"price" validate:"gt=0"`
	ImgURL      string  `json:"imgUrl"`
	CategoryIDs []int64 `json:"categories" validate:"min=1,dive,gt=0"`
}

type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	validate   *validator.Validate
	log        *logrus.Logger
}

func NewCatalogService(store *repository.Store, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		products:   store.Products,
		categories: store.Categories,
		validate:   newValidator(),
		log:        logger,
	}
}

func (s *CatalogService) FindByID(ctx context.Context, id int64) (models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		s.log.Warnf("Catalog: product %d lookup failed: %v", id, err)
		return models.Product{}, err
	}
	return p, nil
}

// FindAll normalizes the filter and returns one page. Every call reads the
// current catalog state.
func (s *CatalogService) FindAll(ctx context.Context, filter models.ProductFilter) (models.Page[models.Product], error) {
	filter = normalizeFilter(filter)
	products, total, err := s.products.FindAll(ctx, filter)
	if err != nil {
		s.log.Errorf("Catalog: listing failed: %v", err)
		return models.Page[models.Product]{}, fmt.Errorf("could not retrieve products: %w", err)
	}
	return models.NewPage(products, total, filter.Page, filter.Size), nil
}

func normalizeFilter(f models.ProductFilter) models.ProductFilter {
	f.Name = strings.TrimSpace(f.Name)
	if f.Page < 0 {
		f.Page = 0
	}
	if f.Size <= 0 {
		f.Size = DefaultPageSize
	}
	if f.Size > MaxPageSize {
		f.Size = MaxPageSize
	}
	// Page*Size must stay representable as a row offset.
	if f.Page > maxRowOffset/f.Size {
		f.Page = maxRowOffset / f.Size
	}
	switch f.Sort {
	case models.SortByID, models.SortByName, models.SortByPrice:
	default:
		f.Sort = models.SortByID
	}
	return f
}

func (s *CatalogService) Insert(ctx context.Context, id *models.Identity, in ProductInput) (models.Product, error) {
	if err := auth.Authorize(id, auth.ActionCreateProduct, auth.Resource{}); err != nil {
		return models.Product{}, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateStruct(s.validate, in); err != nil {
		s.log.Warnf("Catalog: product rejected: %v", err)
		return models.Product{}, err
	}

	p := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImgURL:      strings.TrimSpace(in.ImgURL),
	}
	for _, catID := range uniqueIDs(in.CategoryIDs) {
		p.Categories = append(p.Categories, models.Category{ID: catID})
	}

	created, err := s.products.Insert(ctx, p)
	if err != nil {
		s.log.Warnf("Catalog: insert of %q failed: %v", p.Name, err)
		return models.Product{}, err
	}
	s.log.Infof("Catalog: product %d created by user %d", created.ID, id.UserID)
	return created, nil
}

func (s *CatalogService) Delete(ctx context.Context, id *models.Identity, productID int64) error {
	if err := auth.Authorize(id, auth.ActionDeleteProduct, auth.Resource{}); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		s.log.Warnf("Catalog: delete of product %d failed: %v", productID, err)
		return err
	}
	s.log.Infof("Catalog: product %d deleted by user %d", productID, id.UserID)
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.FindAll(ctx)
}

func uniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
