package database

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tb_category (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tb_product (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(80) NOT NULL,
		description TEXT NOT NULL,
		price DOUBLE NOT NULL,
		img_url VARCHAR(512) NOT NULL DEFAULT '',
		CONSTRAINT chk_product_price CHECK (price > 0)
	)`,
	`CREATE TABLE IF NOT EXISTS tb_product_category (
		product_id BIGINT NOT NULL,
		category_id BIGINT NOT NULL,
		PRIMARY KEY (product_id, category_id),
		CONSTRAINT fk_pc_product FOREIGN KEY (product_id) REFERENCES tb_product (id),
		CONSTRAINT fk_pc_category FOREIGN KEY (category_id) REFERENCES tb_category (id)
	)`,
	`CREATE TABLE IF NOT EXISTS tb_user (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS tb_user_role (
		user_id BIGINT NOT NULL,
		authority VARCHAR(32) NOT NULL,
		PRIMARY KEY (user_id, authority),
		CONSTRAINT fk_role_user FOREIGN KEY (user_id) REFERENCES tb_user (id)
	)`,
	`CREATE TABLE IF NOT EXISTS tb_order (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		moment DATETIME(6) NOT NULL,
		status VARCHAR(32) NOT NULL,
		client_id BIGINT NOT NULL,
		CONSTRAINT fk_order_client FOREIGN KEY (client_id) REFERENCES tb_user (id)
	)`,
	`CREATE TABLE IF NOT EXISTS tb_order_item (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		price DOUBLE NOT NULL,
		CONSTRAINT fk_item_order FOREIGN KEY (order_id) REFERENCES tb_order (id),
		CONSTRAINT fk_item_product FOREIGN KEY (product_id) REFERENCES tb_product (id),
		CONSTRAINT chk_item_quantity CHECK (quantity > 0)
	)`,
	`CREATE TABLE IF NOT EXISTS tb_payment (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL UNIQUE,
		moment DATETIME(6) NOT NULL,
		CONSTRAINT fk_payment_order FOREIGN KEY (order_id) REFERENCES tb_order (id)
	)`,
}

// Migrate creates missing tables. It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	return nil
}
