// Package repository persists the catalog, users and orders. Both stores
// guarantee that deleting a product and placing an order that references it
// never interleave.
package repository

import (
	"context"

	"commerce-service/models"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (models.Product, error)
	// FindAll returns the requested page and the total number of matches.
	FindAll(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error)
	// Insert resolves the product categories by id and assigns a new id.
	Insert(ctx context.Context, p models.Product) (models.Product, error)
	// Delete removes an unreferenced product; it fails with ErrNotFound or
	// ErrReferentialIntegrity.
	Delete(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	FindAll(ctx context.Context) ([]models.Category, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (models.User, error)
}

// BuildOrder receives the products that exist among the requested ids.
type BuildOrder func(products map[int64]models.Product) (*models.Order, error)

type OrderRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	// Create resolves productIDs and persists the order returned by build in
	// one atomic step. Nothing is stored when build fails.
	Create(ctx context.Context, productIDs []int64, build BuildOrder) (*models.Order, error)
	// UpdateStatus applies mutate to the locked order and stores its status
	// and payment.
	UpdateStatus(ctx context.Context, id int64, mutate func(o *models.Order) error) (*models.Order, error)
}

type Store struct {
	Products   ProductRepository
	Categories CategoryRepository
	Users      UserRepository
	Orders     OrderRepository
}
