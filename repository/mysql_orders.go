package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"commerce-service/models"

	"github.com/sirupsen/logrus"
)

type mysqlOrders struct {
	db  *sql.DB
	log *logrus.Logger
}

func (r *mysqlOrders) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	return loadOrder(ctx, r.db, id, false)
}

func (r *mysqlOrders) Create(ctx context.Context, productIDs []int64, build BuildOrder) (*models.Order, error) {
	var created *models.Order
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		products, err := lockProducts(ctx, tx, productIDs)
		if err != nil {
			return err
		}
		o, err := build(products)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			"INSERT INTO tb_order (moment, status, client_id) VALUES (?, ?, ?)",
			o.Moment, string(o.Status), o.Client.ID,
		)
		if err != nil {
			return fmt.Errorf("could not insert order: %w", err)
		}
		if o.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("could not get order id: %w", err)
		}
		for _, item := range o.Items {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO tb_order_item (order_id, product_id, quantity, price) VALUES (?, ?, ?, ?)",
				o.ID, item.ProductID, item.Quantity, item.Price,
			); err != nil {
				return fmt.Errorf("could not insert item of order %d: %w", o.ID, err)
			}
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Debugf("Repository: order %d inserted with %d items", created.ID, len(created.Items))
	return created, nil
}

func (r *mysqlOrders) UpdateStatus(ctx context.Context, id int64, mutate func(o *models.Order) error) (*models.Order, error) {
	var updated *models.Order
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		o, err := loadOrder(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := mutate(o); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "UPDATE tb_order SET status = ? WHERE id = ?", string(o.Status), o.ID); err != nil {
			return fmt.Errorf("could not update status of order %d: %w", o.ID, err)
		}
		if o.Payment != nil && o.Payment.ID == 0 {
			res, err := tx.ExecContext(ctx, "INSERT INTO tb_payment (order_id, moment) VALUES (?, ?)", o.ID, o.Payment.Moment)
			if err != nil {
				return fmt.Errorf("could not insert payment of order %d: %w", o.ID, err)
			}
			if o.Payment.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("could not get payment id: %w", err)
			}
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// lockProducts reads the products that exist among ids under a shared lock.
func lockProducts(ctx context.Context, tx *sql.Tx, ids []int64) (map[int64]models.Product, error) {
	products := make(map[int64]models.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	rows, err := tx.QueryContext(ctx,
		"SELECT id, name, description, price, img_url FROM tb_product WHERE id IN ("+placeholders(len(ids))+") LOCK IN SHARE MODE",
		int64Args(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("could not lock products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImgURL); err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

func loadOrder(ctx context.Context, q queryer, id int64, forUpdate bool) (*models.Order, error) {
	query := "SELECT o.id, o.moment, o.status, u.id, u.name, u.email, p.id, p.moment " +
		"FROM tb_order o JOIN tb_user u ON u.id = o.client_id " +
		"LEFT JOIN tb_payment p ON p.order_id = o.id WHERE o.id = ?"
	if forUpdate {
		query += " FOR UPDATE"
	}

	var (
		o             models.Order
		status        string
		paymentID     sql.NullInt64
		paymentMoment sql.NullTime
	)
	err := q.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.Moment, &status, &o.Client.ID, &o.Client.Name, &o.Client.Email, &paymentID, &paymentMoment,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get order %d: %w", id, err)
	}
	o.Status = models.OrderStatus(status)
	if paymentID.Valid {
		o.Payment = &models.Payment{ID: paymentID.Int64, Moment: paymentMoment.Time}
	}

	rows, err := q.QueryContext(ctx,
		"SELECT oi.product_id, pr.name, pr.img_url, oi.quantity, oi.price FROM tb_order_item oi "+
			"JOIN tb_product pr ON pr.id = oi.product_id WHERE oi.order_id = ? ORDER BY oi.id", id)
	if err != nil {
		return nil, fmt.Errorf("could not get items of order %d: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.ImgURL, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("error scanning order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}
