package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/IshaanNene/shopcrawl/internal/types"
)

const productsSchema = `
CREATE TABLE IF NOT EXISTS products (
	url           TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	regular_price TEXT,
	sale_price    TEXT,
	description   TEXT,
	name_source   TEXT NOT NULL,
	scraped_at    DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);
`

const upsertProduct = `
INSERT INTO products (url, name, regular_price, sale_price, description, name_source, scraped_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	name = excluded.name,
	regular_price = excluded.regular_price,
	sale_price = excluded.sale_price,
	description = excluded.description,
	name_source = excluded.name_source,
	scraped_at = excluded.scraped_at`

// SQLiteStorage keeps one row per product URL; re-scraping a URL replaces
// its row.
type SQLiteStorage struct {
	db     *sql.DB
	path   string
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewSQLiteStorage opens or creates the database at path.
func NewSQLiteStorage(path string, logger *slog.Logger) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, productsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		path:   path,
		logger: logger.With("component", "sqlite_storage"),
	}, nil
}

func (s *SQLiteStorage) Name() string { return "sqlite" }

func (s *SQLiteStorage) Store(products []*types.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertProduct)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, p := range products {
		if _, err := stmt.ExecContext(ctx,
			p.URL, p.Name, nullString(p.RegularPrice), nullString(p.SalePrice), nullString(p.Description), string(p.NameSource), now,
		); err != nil {
			return fmt.Errorf("upsert %s: %w", p.URL, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.count += len(products)
	s.logger.Debug("products stored in sqlite", "count", len(products), "total", s.count)
	return nil
}

// Products returns every stored product ordered by URL.
func (s *SQLiteStorage) Products(ctx context.Context) ([]*types.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, name, regular_price, sale_price, description, name_source
		FROM products ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []*types.Product
	for rows.Next() {
		var (
			p                          types.Product
			regular, sale, description sql.NullString
			source                     string
		)
		if err := rows.Scan(&p.URL, &p.Name, &regular, &sale, &description, &source); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.RegularPrice = nullable(regular)
		p.SalePrice = nullable(sale)
		p.Description = nullable(description)
		p.NameSource = types.NameSource(source)
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) Close() error {
	s.logger.Info("sqlite storage closing", "path", s.path, "total_products", s.count)
	return s.db.Close()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
