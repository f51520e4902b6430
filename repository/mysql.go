package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"commerce-service/models"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

const mysqlErrRowIsReferenced = 1451

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewMySQLStore uses pessimistic row locks: orders take shared locks on the
// products they reference, product deletion takes an exclusive lock.
func NewMySQLStore(db *sql.DB, logger *logrus.Logger) *Store {
	return &Store{
		Products:   &mysqlProducts{db: db, log: logger},
		Categories: &mysqlCategories{db: db},
		Users:      &mysqlUsers{db: db},
		Orders:     &mysqlOrders{db: db, log: logger},
	}
}

func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not start transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

func isRowReferenced(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlErrRowIsReferenced
}

type mysqlCategories struct{ db *sql.DB }

func (r *mysqlCategories) FindAll(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM tb_category ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("could not list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

type mysqlUsers struct{ db *sql.DB }

func (r *mysqlUsers) FindByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, "SELECT id, name, email FROM tb_user WHERE id = ?", id).
		Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
		}
		return models.User{}, fmt.Errorf("could not get user %d: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT authority FROM tb_user_role WHERE user_id = ? ORDER BY authority DESC", id)
	if err != nil {
		return models.User{}, fmt.Errorf("could not get roles of user %d: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return models.User{}, fmt.Errorf("error scanning role: %w", err)
		}
		u.Roles = append(u.Roles, models.Role(role))
	}
	return u, rows.Err()
}
