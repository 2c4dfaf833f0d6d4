package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema only uses column types both MySQL and SQLite accept.  Accounts
// without a mobile number store NULL so the unique index ignores them.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            VARCHAR(64)  NOT NULL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL DEFAULT '',
		mobile        VARCHAR(32)  NULL UNIQUE,
		name          VARCHAR(255) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL DEFAULT '',
		role          VARCHAR(16)  NOT NULL,
		coins         BIGINT       NOT NULL DEFAULT 0,
		total_spent   BIGINT       NOT NULL DEFAULT 0,
		created_at    DATETIME     NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS coupons (
		id         VARCHAR(64) NOT NULL PRIMARY KEY,
		user_id    VARCHAR(64) NOT NULL,
		code       VARCHAR(32) NOT NULL UNIQUE,
		value      BIGINT      NOT NULL,
		is_used    BOOLEAN     NOT NULL DEFAULT FALSE,
		created_at DATETIME    NOT NULL,
		used_at    DATETIME    NULL,
		expires_at DATETIME    NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS coin_transactions (
		id         VARCHAR(64) NOT NULL PRIMARY KEY,
		user_id    VARCHAR(64) NOT NULL,
		type       VARCHAR(32) NOT NULL,
		amount     BIGINT      NOT NULL,
		coins      BIGINT      NOT NULL,
		status     VARCHAR(16) NOT NULL,
		created_at DATETIME    NOT NULL
	)`,
}

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
