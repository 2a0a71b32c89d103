// Package storage provides a SQLite-backed order-history source.
// It mirrors the orders / order_products layout of the ordering API so that a
// user's history can be imported once and served to the recommender.
//
// Imports replace a user's orders wholesale inside a transaction; a payload
// with any malformed order is rejected before anything is written.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/diekoffieblik/brewcast/internal/history"
	"github.com/diekoffieblik/brewcast/internal/models"
)

// Storage is an order-history store backed by SQLite
type Storage struct {
	db *sql.DB
}

// New opens or creates a SQLite database at dbPath. ":memory:" gives a
// private in-memory database.
func New(dbPath string) (*Storage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		dsn = dbPath + "?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close releases the database handle
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		status      TEXT,
		total_price REAL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at);

	CREATE TABLE IF NOT EXISTS order_products (
		order_id   TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		seq        INTEGER NOT NULL,
		product_id TEXT NOT NULL,
		quantity   INTEGER NOT NULL DEFAULT 1,
		price      REAL,
		PRIMARY KEY (order_id, seq)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Import stores payload, replacing the orders of every user it mentions.
// Returns the number of order lines written.
func (s *Storage) Import(ctx context.Context, payload models.OrderHistory) (int, error) {
	lines, err := history.Flatten(payload)
	if err != nil {
		return 0, err
	}

	byUser := make(map[string][]models.Order)
	for _, order := range payload.Data {
		byUser[order.UserID] = append(byUser[order.UserID], order)
	}
	users := make([]string, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Strings(users)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, userID := range users {
		if err := replaceUserOrders(ctx, tx, userID, byUser[userID]); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(lines), nil
}

func replaceUserOrders(ctx context.Context, tx *sql.Tx, userID string, orders []models.Order) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM order_products WHERE order_id IN (SELECT id FROM orders WHERE user_id = ?)`, userID); err != nil {
		return fmt.Errorf("delete order products for %s: %w", userID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete orders for %s: %w", userID, err)
	}

	for _, order := range orders {
		id := orderID(order)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO orders (id, user_id, status, total_price, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			id, order.UserID, order.Status, order.TotalPrice, order.CreatedAt, order.UpdatedAt); err != nil {
			return fmt.Errorf("insert order %s: %w", id, err)
		}

		for seq, product := range order.OrderProducts {
			quantity := 1
			if product.Quantity != nil {
				quantity = *product.Quantity
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO order_products (order_id, seq, product_id, quantity, price) VALUES (?, ?, ?, ?, ?)`,
				id, seq, string(product.ProductID), quantity, product.Price); err != nil {
				return fmt.Errorf("insert product %d of order %s: %w", seq, id, err)
			}
		}
	}
	return nil
}

// orderID renders the payload ID as text, generating one when absent.
func orderID(order models.Order) string {
	raw := strings.Trim(strings.TrimSpace(string(order.ID)), `"`)
	if raw == "" || raw == "null" {
		return uuid.New().String()
	}
	return raw
}

// LoadOrders returns a user's flattened order history, oldest first. It
// satisfies recommender.OrderSource.
func (s *Storage) LoadOrders(ctx context.Context, userID string) ([]models.OrderLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.product_id, p.quantity, o.created_at, o.user_id
		FROM orders o
		JOIN order_products p ON p.order_id = o.id
		WHERE o.user_id = ?
		ORDER BY o.created_at ASC, o.id ASC, p.seq ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	lines := make([]models.OrderLine, 0)
	for rows.Next() {
		var (
			line      models.OrderLine
			createdAt string
		)
		if err := rows.Scan(&line.ProductID, &line.Quantity, &createdAt, &line.UserID); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		line.OccurredAt, err = models.ParseTimestamp(createdAt)
		if err != nil {
			return nil, fmt.Errorf("stored order for %s: %w", userID, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return lines, nil
}

// Stats summarizes the stored history
type Stats struct {
	Users  int `json:"users"`
	Orders int `json:"orders"`
	Lines  int `json:"lines"`
}

// Stats returns row counts
func (s *Storage) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(DISTINCT user_id) FROM orders),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM order_products)`).Scan(&st.Users, &st.Orders, &st.Lines)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}
