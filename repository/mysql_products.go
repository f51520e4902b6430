package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"commerce-service/models"

	"github.com/sirupsen/logrus"
)

var productSortColumns = map[string]string{
	models.SortByID:    "id",
	models.SortByName:  "name",
	models.SortByPrice: "price",
}

type mysqlProducts struct {
	db  *sql.DB
	log *logrus.Logger
}

func (r *mysqlProducts) FindByID(ctx context.Context, id int64) (models.Product, error) {
	var p models.Product
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, description, price, img_url FROM tb_product WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImgURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Product{}, fmt.Errorf("product %d: %w", id, models.ErrNotFound)
		}
		return models.Product{}, fmt.Errorf("could not get product %d: %w", id, err)
	}

	cats, err := loadCategories(ctx, r.db, []int64{id})
	if err != nil {
		return models.Product{}, err
	}
	p.Categories = cats[id]
	return p, nil
}

func (r *mysqlProducts) FindAll(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	column, ok := productSortColumns[filter.Sort]
	if !ok {
		column = "id"
	}
	where := "WHERE LOWER(name) LIKE CONCAT('%', LOWER(?), '%') ESCAPE '!'"
	needle := escapeLike(filter.Name)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tb_product "+where, needle).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("could not count products: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT id, name, description, price, img_url FROM tb_product %s ORDER BY %s, id LIMIT ? OFFSET ?",
		where, column,
	)
	rows, err := r.db.QueryContext(ctx, query, needle, filter.Size, filter.Page*filter.Size)
	if err != nil {
		return nil, 0, fmt.Errorf("could not list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	ids := []int64{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImgURL); err != nil {
			return nil, 0, fmt.Errorf("error scanning product: %w", err)
		}
		products = append(products, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	cats, err := loadCategories(ctx, r.db, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range products {
		products[i].Categories = cats[products[i].ID]
	}
	return products, total, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike makes s match literally inside a LIKE pattern using '!' as the
// escape character.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *mysqlProducts) Insert(ctx context.Context, p models.Product) (models.Product, error) {
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		resolved, err := resolveCategories(ctx, tx, p.CategoryIDs())
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			"INSERT INTO tb_product (name, description, price, img_url) VALUES (?, ?, ?, ?)",
			p.Name, p.Description, p.Price, p.ImgURL,
		)
		if err != nil {
			return fmt.Errorf("could not insert product: %w", err)
		}
		if p.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("could not get product id: %w", err)
		}
		for _, c := range resolved {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO tb_product_category (product_id, category_id) VALUES (?, ?)", p.ID, c.ID,
			); err != nil {
				return fmt.Errorf("could not link product %d to category %d: %w", p.ID, c.ID, err)
			}
		}
		p.Categories = resolved
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}
	r.log.Debugf("Repository: product %d inserted", p.ID)
	return p, nil
}

// Delete locks the product row exclusively, so an order transaction holding a
// shared lock on it finishes first and its items are counted.
func (r *mysqlProducts) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		var locked int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM tb_product WHERE id = ? FOR UPDATE", id).Scan(&locked)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("product %d: %w", id, models.ErrNotFound)
			}
			return fmt.Errorf("could not lock product %d: %w", id, err)
		}

		var refs int64
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM tb_order_item WHERE product_id = ?", id).Scan(&refs); err != nil {
			return fmt.Errorf("could not count references to product %d: %w", id, err)
		}
		if refs > 0 {
			r.log.Warnf("Repository: product %d is referenced by %d order items", id, refs)
			return fmt.Errorf("product %d is referenced by %d order items: %w", id, refs, models.ErrReferentialIntegrity)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM tb_product_category WHERE product_id = ?", id); err != nil {
			return fmt.Errorf("could not unlink product %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM tb_product WHERE id = ?", id); err != nil {
			if isRowReferenced(err) {
				return fmt.Errorf("product %d: %w", id, models.ErrReferentialIntegrity)
			}
			return fmt.Errorf("could not delete product %d: %w", id, err)
		}
		return nil
	})
}

func loadCategories(ctx context.Context, q queryer, productIDs []int64) (map[int64][]models.Category, error) {
	out := make(map[int64][]models.Category, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	query := "SELECT pc.product_id, c.id, c.name FROM tb_product_category pc " +
		"JOIN tb_category c ON c.id = pc.category_id " +
		"WHERE pc.product_id IN (" + placeholders(len(productIDs)) + ") ORDER BY pc.product_id, c.id"
	rows, err := q.QueryContext(ctx, query, int64Args(productIDs)...)
	if err != nil {
		return nil, fmt.Errorf("could not load product categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var productID int64
		var c models.Category
		if err := rows.Scan(&productID, &c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("error scanning product category: %w", err)
		}
		out[productID] = append(out[productID], c)
	}
	return out, rows.Err()
}

// resolveCategories returns the categories in request order, failing with
// ErrNotFound when any id is unknown.
func resolveCategories(ctx context.Context, q queryer, ids []int64) ([]models.Category, error) {
	if len(ids) == 0 {
		return []models.Category{}, nil
	}
	rows, err := q.QueryContext(ctx,
		"SELECT id, name FROM tb_category WHERE id IN ("+placeholders(len(ids))+")", int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("could not resolve categories: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]models.Category, len(ids))
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		found[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]models.Category, 0, len(ids))
	for _, id := range ids {
		c, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("category %d: %w", id, models.ErrNotFound)
		}
		out = append(out, c)
	}
	return out, nil
}
