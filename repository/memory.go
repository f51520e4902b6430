package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"commerce-service/database"
	"commerce-service/models"
)

// memoryDB serializes every write behind one mutex, which makes product
// deletion and order creation atomic with respect to each other.
type memoryDB struct {
	mu sync.RWMutex

	categories    map[int64]models.Category
	products      map[int64]models.Product
	productOrder  []int64
	users         map[int64]models.User
	orders        map[int64]*models.Order
	nextProductID int64
	nextOrderID   int64
	nextPaymentID int64
}

// NewMemoryStore returns a store preloaded with fx.
func NewMemoryStore(fx database.Fixtures) *Store {
	db := &memoryDB{
		categories: make(map[int64]models.Category),
		products:   make(map[int64]models.Product),
		users:      make(map[int64]models.User),
		orders:     make(map[int64]*models.Order),
	}
	for _, c := range fx.Categories {
		db.categories[c.ID] = c
	}
	for _, p := range fx.Products {
		db.products[p.ID] = cloneProduct(p)
		db.productOrder = append(db.productOrder, p.ID)
		db.nextProductID = max(db.nextProductID, p.ID)
	}
	for _, u := range fx.Users {
		db.users[u.ID] = u
	}
	for _, o := range fx.Orders {
		db.orders[o.ID] = cloneOrder(&o)
		db.nextOrderID = max(db.nextOrderID, o.ID)
		if o.Payment != nil {
			db.nextPaymentID = max(db.nextPaymentID, o.Payment.ID)
		}
	}
	return &Store{
		Products:   &memoryProducts{db: db},
		Categories: &memoryCategories{db: db},
		Users:      &memoryUsers{db: db},
		Orders:     &memoryOrders{db: db},
	}
}

type memoryProducts struct{ db *memoryDB }

func (r *memoryProducts) FindByID(ctx context.Context, id int64) (models.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.products[id]
	if !ok {
		return models.Product{}, fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	return cloneProduct(p), nil
}

func (r *memoryProducts) FindAll(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(filter.Name))
	matches := make([]models.Product, 0, len(r.db.productOrder))
	for _, id := range r.db.productOrder {
		p := r.db.products[id]
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		matches = append(matches, p)
	}

	switch filter.Sort {
	case models.SortByName:
		slices.SortStableFunc(matches, func(a, b models.Product) int { return cmp.Compare(a.Name, b.Name) })
	case models.SortByPrice:
		slices.SortStableFunc(matches, func(a, b models.Product) int { return cmp.Compare(a.Price, b.Price) })
	}

	total := int64(len(matches))
	start := filter.Page * filter.Size
	if filter.Page < 0 || filter.Size <= 0 || start < 0 || start >= len(matches) {
		return []models.Product{}, total, nil
	}
	end := min(start+filter.Size, len(matches))
	page := make([]models.Product, 0, end-start)
	for _, p := range matches[start:end] {
		page = append(page, cloneProduct(p))
	}
	return page, total, nil
}

func (r *memoryProducts) Insert(ctx context.Context, p models.Product) (models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	resolved := make([]models.Category, 0, len(p.Categories))
	for _, c := range p.Categories {
		stored, ok := r.db.categories[c.ID]
		if !ok {
			return models.Product{}, fmt.Errorf("category %d: %w", c.ID, models.ErrNotFound)
		}
		resolved = append(resolved, stored)
	}

	r.db.nextProductID++
	p.ID = r.db.nextProductID
	p.Categories = resolved
	r.db.products[p.ID] = p
	r.db.productOrder = append(r.db.productOrder, p.ID)
	return cloneProduct(p), nil
}

func (r *memoryProducts) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.products[id]; !ok {
		return fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	for _, o := range r.db.orders {
		for _, item := range o.Items {
			if item.ProductID == id {
				return fmt.Errorf("product %d is referenced by order %d: %w", id, o.ID, models.ErrReferentialIntegrity)
			}
		}
	}
	delete(r.db.products, id)
	r.db.productOrder = slices.DeleteFunc(r.db.productOrder, func(v int64) bool { return v == id })
	return nil
}

type memoryCategories struct{ db *memoryDB }

func (r *memoryCategories) FindAll(ctx context.Context) ([]models.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]models.Category, 0, len(r.db.categories))
	for _, c := range r.db.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Category) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

type memoryUsers struct{ db *memoryDB }

func (r *memoryUsers) FindByID(ctx context.Context, id int64) (models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}
	u.Roles = slices.Clone(u.Roles)
	return u, nil
}

type memoryOrders struct{ db *memoryDB }

func (r *memoryOrders) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	o, ok := r.db.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}
	return cloneOrder(o), nil
}

func (r *memoryOrders) Create(ctx context.Context, productIDs []int64, build BuildOrder) (*models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	products := make(map[int64]models.Product, len(productIDs))
	for _, id := range productIDs {
		if p, ok := r.db.products[id]; ok {
			products[id] = cloneProduct(p)
		}
	}
	o, err := build(products)
	if err != nil {
		return nil, err
	}

	r.db.nextOrderID++
	o.ID = r.db.nextOrderID
	r.db.orders[o.ID] = cloneOrder(o)
	return o, nil
}

func (r *memoryOrders) UpdateStatus(ctx context.Context, id int64, mutate func(o *models.Order) error) (*models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}
	o := cloneOrder(stored)
	if err := mutate(o); err != nil {
		return nil, err
	}
	if o.Payment != nil && o.Payment.ID == 0 {
		r.db.nextPaymentID++
		o.Payment.ID = r.db.nextPaymentID
	}
	r.db.orders[id] = cloneOrder(o)
	return o, nil
}

func cloneProduct(p models.Product) models.Product {
	p.Categories = slices.Clone(p.Categories)
	return p
}

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	c.Client.Roles = slices.Clone(o.Client.Roles)
	if o.Payment != nil {
		payment := *o.Payment
		c.Payment = &payment
	}
	return &c
}
