package repository

import (
	"context"
	"testing"
	"time"

	"commerce-service/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	orderQuery = "SELECT o.id, o.moment, o.status, u.id, u.name, u.email, p.id, p.moment " +
		"FROM tb_order o JOIN tb_user u ON u.id = o.client_id " +
		"LEFT JOIN tb_payment p ON p.order_id = o.id WHERE o.id = ?"
	orderItemsQuery = "SELECT oi.product_id, pr.name, pr.img_url, oi.quantity, oi.price FROM tb_order_item oi " +
		"JOIN tb_product pr ON pr.id = oi.product_id WHERE oi.order_id = ? ORDER BY oi.id"
	productCategoriesQuery = "SELECT pc.product_id, c.id, c.name FROM tb_product_category pc " +
		"JOIN tb_category c ON c.id = pc.category_id WHERE pc.product_id IN (?, ?) ORDER BY pc.product_id, c.id"
	productCountQuery = "SELECT COUNT(*) FROM tb_product WHERE LOWER(name) LIKE CONCAT('%', LOWER(?), '%') ESCAPE '!'"
)

var (
	orderCols   = []string{"id", "moment", "status", "client_id", "name", "email", "payment_id", "payment_moment"}
	itemCols    = []string{"product_id", "name", "img_url", "quantity", "price"}
	productCols = []string{"id", "name", "description", "price", "img_url"}
	orderMoment = time.Date(2022, 7, 29, 15, 0, 0, 0, time.UTC)
)

func expectWaitingOrder(mock sqlmock.Sqlmock, query string) {
	mock.ExpectQuery(q(query)).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(3, orderMoment, "WAITING_PAYMENT", 1, "Maria Brown", "maria@gmail.com", nil, nil))
	mock.ExpectQuery(q(orderItemsQuery)).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(1, "The Lord of the Rings", "1.jpg", 1, 90.5).
			AddRow(4, "PC Gamer", "4.jpg", 1, 1200.0))
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"gamer", "gamer"},
		{"PC_Gamer", "PC!_Gamer"},
		{"100%", "100!%"},
		{"wow!", "wow!!"},
		{`back\slash`, `back\slash`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeLike(tt.in), tt.in)
	}
}

func TestMySQLFindAllMatchesWildcardsLiterally(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(q(productCountQuery)).WithArgs("pc!_gamer").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(q("ESCAPE '!' ORDER BY id, id LIMIT ? OFFSET ?")).WithArgs("pc!_gamer", 12, 0).
		WillReturnRows(sqlmock.NewRows(productCols))

	products, total, err := store.Products.FindAll(context.Background(), models.ProductFilter{Name: "pc_gamer", Size: 12, Sort: models.SortByID})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLFindAllPagesWithCategories(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(q(productCountQuery)).WithArgs("gamer").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))
	mock.ExpectQuery(q("ORDER BY price, id LIMIT ? OFFSET ?")).WithArgs("gamer", 2, 2).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(7, "PC Gamer X", "desc", 1350.0, "7.jpg").
			AddRow(10, "PC Gamer Y", "desc", 1700.0, "10.jpg"))
	mock.ExpectQuery(q(productCategoriesQuery)).WithArgs(int64(7), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "id", "name"}).
			AddRow(7, 3, "Computadores").
			AddRow(10, 3, "Computadores"))

	products, total, err := store.Products.FindAll(context.Background(), models.ProductFilter{Name: "gamer", Page: 1, Size: 2, Sort: models.SortByPrice})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	require.Len(t, products, 2)
	assert.Equal(t, "PC Gamer X", products[0].Name)
	assert.Equal(t, []int64{3}, products[1].CategoryIDs())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLFindProductByID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(q("SELECT id, name, description, price, img_url FROM tb_product WHERE id = ?")).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(2, "Smart TV", "desc", 2190.0, "2.jpg"))
	mock.ExpectQuery(q("WHERE pc.product_id IN (?) ORDER BY pc.product_id, c.id")).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "id", "name"}).
			AddRow(2, 2, "Eletronicos").
			AddRow(2, 3, "Computadores"))

	p, err := store.Products.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Smart TV", p.Name)
	assert.Equal(t, []models.Category{{ID: 2, Name: "Eletronicos"}, {ID: 3, Name: "Computadores"}}, p.Categories)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLFindProductByIDMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(q("FROM tb_product WHERE id = ?")).WithArgs(int64(1000)).
		WillReturnRows(sqlmock.NewRows(productCols))

	_, err := store.Products.FindByID(context.Background(), 1000)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLInsertProduct(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT id, name FROM tb_category WHERE id IN (?, ?)")).WithArgs(int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Livros").AddRow(2, "Eletronicos"))
	mock.ExpectExec(q("INSERT INTO tb_product (name, description, price, img_url) VALUES (?, ?, ?, ?)")).
		WithArgs("Kindle", "E-reader with a paper-like display", 499.9, "kindle.jpg").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(q("INSERT INTO tb_product_category (product_id, category_id) VALUES (?, ?)")).
		WithArgs(int64(11), int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO tb_product_category (product_id, category_id) VALUES (?, ?)")).
		WithArgs(int64(11), int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := store.Products.Insert(context.Background(), models.Product{
		Name:        "Kindle",
		Description: "E-reader with a paper-like display",
		Price:       499.9,
		ImgURL:      "kindle.jpg",
		Categories:  []models.Category{{ID: 2}, {ID: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), p.ID)
	assert.Equal(t, []models.Category{{ID: 2, Name: "Eletronicos"}, {ID: 1, Name: "Livros"}}, p.Categories)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLInsertProductUnknownCategoryRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT id, name FROM tb_category WHERE id IN (?, ?)")).WithArgs(int64(1), int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Livros"))
	mock.ExpectRollback()

	_, err := store.Products.Insert(context.Background(), models.Product{
		Name:       "Kindle",
		Categories: []models.Category{{ID: 1}, {ID: 99}},
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLFindOrderWithoutPayment(t *testing.T) {
	store, mock := newMockStore(t)
	expectWaitingOrder(mock, orderQuery)

	o, err := store.Orders.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaitingPayment, o.Status)
	assert.Nil(t, o.Payment)
	assert.Equal(t, "Maria Brown", o.Client.Name)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "PC Gamer", o.Items[1].Name)
	assert.Equal(t, 1290.5, o.Total())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLFindOrderWithPayment(t *testing.T) {
	store, mock := newMockStore(t)
	paidAt := orderMoment.Add(time.Hour)

	mock.ExpectQuery(q(orderQuery)).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(2, orderMoment, "DELIVERED", 2, "Alex Green", "alex@gmail.com", 2, paidAt))
	mock.ExpectQuery(q(orderItemsQuery)).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(3, "Macbook Pro", "3.jpg", 1, 1250.0))

	o, err := store.Orders.FindByID(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, o.Payment)
	assert.Equal(t, &models.Payment{ID: 2, Moment: paidAt}, o.Payment)
	assert.Equal(t, "Macbook Pro", o.Items[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLFindOrderMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(q(orderQuery)).WithArgs(int64(100)).WillReturnRows(sqlmock.NewRows(orderCols))

	_, err := store.Orders.FindByID(context.Background(), 100)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUpdateStatusPayInsertsPayment(t *testing.T) {
	store, mock := newMockStore(t)
	paidAt := orderMoment.Add(2 * time.Hour)

	mock.ExpectBegin()
	expectWaitingOrder(mock, orderQuery+" FOR UPDATE")
	mock.ExpectExec(q("UPDATE tb_order SET status = ? WHERE id = ?")).
		WithArgs("PAID", int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO tb_payment (order_id, moment) VALUES (?, ?)")).
		WithArgs(int64(3), paidAt).WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	o, err := store.Orders.UpdateStatus(context.Background(), 3, func(o *models.Order) error {
		return o.Apply(models.TransitionPay, paidAt)
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, o.Status)
	assert.Equal(t, &models.Payment{ID: 3, Moment: paidAt}, o.Payment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUpdateStatusCancelKeepsPayment(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(orderQuery+" FOR UPDATE")).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(1, orderMoment, "PAID", 1, "Maria Brown", "maria@gmail.com", 1, orderMoment))
	mock.ExpectQuery(q(orderItemsQuery)).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(1, "The Lord of the Rings", "1.jpg", 2, 90.5))
	mock.ExpectExec(q("UPDATE tb_order SET status = ? WHERE id = ?")).
		WithArgs("CANCELED", int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	o, err := store.Orders.UpdateStatus(context.Background(), 1, func(o *models.Order) error {
		return o.Apply(models.TransitionCancel, time.Now())
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, o.Status)
	assert.Equal(t, int64(1), o.Payment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUpdateStatusInvalidTransitionRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(orderQuery+" FOR UPDATE")).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(2, orderMoment, "DELIVERED", 2, "Alex Green", "alex@gmail.com", 2, orderMoment))
	mock.ExpectQuery(q(orderItemsQuery)).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(3, "Macbook Pro", "3.jpg", 1, 1250.0))
	mock.ExpectRollback()

	_, err := store.Orders.UpdateStatus(context.Background(), 2, func(o *models.Order) error {
		return o.Apply(models.TransitionCancel, time.Now())
	})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUpdateStatusMissingOrderRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(orderQuery+" FOR UPDATE")).WithArgs(int64(100)).WillReturnRows(sqlmock.NewRows(orderCols))
	mock.ExpectRollback()

	_, err := store.Orders.UpdateStatus(context.Background(), 100, func(o *models.Order) error {
		t.Fatal("mutate must not run for a missing order")
		return nil
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLFindUser(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(q("SELECT id, name, email FROM tb_user WHERE id = ?")).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(2, "Alex Green", "alex@gmail.com"))
	mock.ExpectQuery(q("SELECT authority FROM tb_user_role WHERE user_id = ? ORDER BY authority DESC")).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"authority"}).AddRow("ROLE_CLIENT").AddRow("ROLE_ADMIN"))

	u, err := store.Users.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Alex Green", u.Name)
	assert.Equal(t, []models.Role{models.RoleClient, models.RoleAdmin}, u.Roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLFindUserMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(q("FROM tb_user WHERE id = ?")).WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}))

	_, err := store.Users.FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLListCategories(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(q("SELECT id, name FROM tb_category ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Livros").AddRow(2, "Eletronicos"))

	cats, err := store.Categories.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
