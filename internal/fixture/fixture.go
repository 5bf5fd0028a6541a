// Package fixture builds small SQLite databases for tests and local debugging.
package fixture

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Users 只有 users 表，两行数据
var Users = []string{
	`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
	`INSERT INTO users (id, name) VALUES (1, 'alice'), (2, 'bob')`,
}

// Sample 覆盖各种值类型、空表、视图和 sqlite_sequence
var Sample = []string{
	`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
	`INSERT INTO users (id, name) VALUES (1, 'alice'), (2, 'bob')`,
	`CREATE TABLE orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		amount REAL,
		note TEXT,
		payload BLOB
	)`,
	`INSERT INTO orders (user_id, amount, note, payload) VALUES
		(1, 9.5, 'first', x'0a0b'),
		(2, 20.0, NULL, NULL),
		(1, 0.25, 'it''s', x'ff')`,
	`CREATE TABLE audit_log (id INTEGER, message TEXT)`,
	`CREATE INDEX idx_orders_user ON orders(user_id)`,
	`CREATE VIEW user_names AS SELECT name FROM users`,
}

// Create 在path创建数据库并依次执行语句
func Create(path string, stmts []string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}
