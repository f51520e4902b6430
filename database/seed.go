package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"commerce-service/models"
)

const (
	imgBase   = "https://raw.githubusercontent.com/devsuperior/dscatalog-resources/master/backend/img/"
	loremDesc = "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua."
)

// Fixtures is the reference data shared by the MySQL seed and the in-memory
// store.
type Fixtures struct {
	Categories []models.Category
	Products   []models.Product
	Users      []models.User
	Orders     []models.Order
}

func DefaultFixtures() Fixtures {
	books := models.Category{ID: 1, Name: "Livros"}
	electronics := models.Category{ID: 2, Name: "Eletronicos"}
	computers := models.Category{ID: 3, Name: "Computadores"}

	product := func(id int64, name string, price float64, cats ...models.Category) models.Product {
		return models.Product{
			ID:          id,
			Name:        name,
			Description: loremDesc,
			Price:       price,
			ImgURL:      fmt.Sprintf("%s%d-big.jpg", imgBase, id),
			Categories:  cats,
		}
	}
	products := []models.Product{
		product(1, "The Lord of the Rings", 90.5, books),
		product(2, "Smart TV", 2190.0, electronics, computers),
		product(3, "Macbook Pro", 1250.0, computers),
		product(4, "PC Gamer", 1200.0, computers),
		product(5, "Rails for Dummies", 100.99, books),
		product(6, "PC Gamer Ex", 1350.0, computers),
		product(7, "PC Gamer X", 1350.0, computers),
		product(8, "PC Gamer Alfa", 1850.0, computers),
		product(9, "PC Gamer Tera", 1950.0, computers),
		product(10, "PC Gamer Y", 1700.0, computers),
	}

	maria := models.User{ID: 1, Name: "Maria Brown", Email: "maria@gmail.com", Roles: []models.Role{models.RoleClient}}
	alex := models.User{ID: 2, Name: "Alex Green", Email: "alex@gmail.com", Roles: []models.Role{models.RoleClient, models.RoleAdmin}}
	ana := models.User{ID: 3, Name: "Ana Silva", Email: "ana@gmail.com", Roles: []models.Role{models.RoleAdmin}}

	item := func(p models.Product, qty int) models.OrderItem {
		return models.OrderItem{ProductID: p.ID, Name: p.Name, ImgURL: p.ImgURL, Quantity: qty, Price: p.Price}
	}
	moment := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	orders := []models.Order{
		{
			ID:      1,
			Moment:  moment("2022-07-25T13:00:00Z"),
			Status:  models.StatusPaid,
			Client:  maria,
			Payment: &models.Payment{ID: 1, Moment: moment("2022-07-25T15:00:00Z")},
			Items:   []models.OrderItem{item(products[0], 2), item(products[2], 1)},
		},
		{
			ID:      2,
			Moment:  moment("2022-07-29T15:50:00Z"),
			Status:  models.StatusDelivered,
			Client:  alex,
			Payment: &models.Payment{ID: 2, Moment: moment("2022-07-30T11:00:00Z")},
			Items:   []models.OrderItem{item(products[2], 1)},
		},
		{
			ID:     3,
			Moment: moment("2022-08-03T14:20:00Z"),
			Status: models.StatusWaitingPayment,
			Client: maria,
			Items:  []models.OrderItem{item(products[0], 1), item(products[3], 1)},
		},
	}

	return Fixtures{
		Categories: []models.Category{books, electronics, computers},
		Products:   products,
		Users:      []models.User{maria, alex, ana},
		Orders:     orders,
	}
}

// Seed loads fx into an empty schema. A schema that already holds categories
// is left untouched.
func Seed(ctx context.Context, db *sql.DB, fx Fixtures) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tb_category").Scan(&n); err != nil {
		return false, fmt.Errorf("could not inspect seed state: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("could not start seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range fx.Categories {
		if _, err := tx.ExecContext(ctx, "INSERT INTO tb_category (id, name) VALUES (?, ?)", c.ID, c.Name); err != nil {
			return false, fmt.Errorf("seed category %d: %w", c.ID, err)
		}
	}
	for _, p := range fx.Products {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO tb_product (id, name, description, price, img_url) VALUES (?, ?, ?, ?, ?)",
			p.ID, p.Name, p.Description, p.Price, p.ImgURL,
		); err != nil {
			return false, fmt.Errorf("seed product %d: %w", p.ID, err)
		}
		for _, c := range p.Categories {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO tb_product_category (product_id, category_id) VALUES (?, ?)", p.ID, c.ID,
			); err != nil {
				return false, fmt.Errorf("seed product %d category %d: %w", p.ID, c.ID, err)
			}
		}
	}
	for _, u := range fx.Users {
		if _, err := tx.ExecContext(ctx, "INSERT INTO tb_user (id, name, email) VALUES (?, ?, ?)", u.ID, u.Name, u.Email); err != nil {
			return false, fmt.Errorf("seed user %d: %w", u.ID, err)
		}
		for _, r := range u.Roles {
			if _, err := tx.ExecContext(ctx, "INSERT INTO tb_user_role (user_id, authority) VALUES (?, ?)", u.ID, string(r)); err != nil {
				return false, fmt.Errorf("seed user %d role: %w", u.ID, err)
			}
		}
	}
	for _, o := range fx.Orders {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO tb_order (id, moment, status, client_id) VALUES (?, ?, ?, ?)",
			o.ID, o.Moment, string(o.Status), o.Client.ID,
		); err != nil {
			return false, fmt.Errorf("seed order %d: %w", o.ID, err)
		}
		for _, it := range o.Items {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO tb_order_item (order_id, product_id, quantity, price) VALUES (?, ?, ?, ?)",
				o.ID, it.ProductID, it.Quantity, it.Price,
			); err != nil {
				return false, fmt.Errorf("seed order %d item: %w", o.ID, err)
			}
		}
		if o.Payment != nil {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO tb_payment (id, order_id, moment) VALUES (?, ?, ?)", o.Payment.ID, o.ID, o.Payment.Moment,
			); err != nil {
				return false, fmt.Errorf("seed order %d payment: %w", o.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("seed commit failed: %w", err)
	}
	return true, nil
}
