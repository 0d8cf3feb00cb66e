package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/listcart/backend/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id         TEXT PRIMARY KEY,
	position   INTEGER NOT NULL,
	name       TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	base_price REAL NOT NULL DEFAULT 0,
	stock      INTEGER NOT NULL DEFAULT 0,
	is_active  INTEGER NOT NULL DEFAULT 1,
	image      TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS product_variants (
	product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	name       TEXT NOT NULL,
	price      REAL NOT NULL,
	stock      INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (product_id, position)
);
CREATE TABLE IF NOT EXISTS product_keywords (
	product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	keyword    TEXT NOT NULL,
	PRIMARY KEY (product_id, position)
);
CREATE INDEX IF NOT EXISTS idx_products_position ON products(position);
`

// SQLiteRepository stores the catalog in a SQLite database.
// Catalog order is the position column, assigned on first insert.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// :memory: databases exist per connection
	db.SetMaxOpenConns(1)

	repo := &SQLiteRepository{db: db}
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Migrate creates the catalog tables when missing
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate catalog schema: %w", err)
	}
	return nil
}

// Close closes the database
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Upsert inserts or replaces products, their variants and keywords in one transaction
func (r *SQLiteRepository) Upsert(ctx context.Context, products []domain.CatalogProduct) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM products`).Scan(&next); err != nil {
		return fmt.Errorf("next position: %w", err)
	}

	for _, p := range products {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, position, name, category, base_price, stock, is_active, image)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				category = excluded.category,
				base_price = excluded.base_price,
				stock = excluded.stock,
				is_active = excluded.is_active,
				image = excluded.image`,
			p.ID, next, p.Name, p.Category, p.BasePrice, p.Stock, p.IsActive, p.Image)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
		next++

		if _, err := tx.ExecContext(ctx, `DELETE FROM product_variants WHERE product_id = ?`, p.ID); err != nil {
			return fmt.Errorf("clear variants %s: %w", p.ID, err)
		}
		for i, v := range p.Variants {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO product_variants (product_id, position, name, price, stock) VALUES (?, ?, ?, ?, ?)`,
				p.ID, i, v.Name, v.Price, v.Stock); err != nil {
				return fmt.Errorf("insert variant %s/%s: %w", p.ID, v.Name, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM product_keywords WHERE product_id = ?`, p.ID); err != nil {
			return fmt.Errorf("clear keywords %s: %w", p.ID, err)
		}
		for i, k := range p.SearchKeywords {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO product_keywords (product_id, position, keyword) VALUES (?, ?, ?)`,
				p.ID, i, strings.ToLower(k)); err != nil {
				return fmt.Errorf("insert keyword %s/%s: %w", p.ID, k, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// ListActiveProducts returns active products in catalog order
func (r *SQLiteRepository) ListActiveProducts(ctx context.Context) ([]domain.CatalogProduct, error) {
	return r.query(ctx, `WHERE is_active = 1`)
}

// GetProduct returns an active product by id
func (r *SQLiteRepository) GetProduct(ctx context.Context, id string) (*domain.CatalogProduct, error) {
	products, err := r.query(ctx, `WHERE is_active = 1 AND id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return &products[0], nil
}

// SearchProducts returns active products whose name contains substring, case-insensitively
func (r *SQLiteRepository) SearchProducts(ctx context.Context, substring string) ([]domain.CatalogProduct, error) {
	needle := strings.ToLower(strings.TrimSpace(substring))
	return r.query(ctx, `WHERE is_active = 1 AND instr(lower(name), ?) > 0`, needle)
}

func (r *SQLiteRepository) query(ctx context.Context, where string, args ...any) ([]domain.CatalogProduct, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, category, base_price, stock, is_active, image FROM products `+where+` ORDER BY position`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query products: %v", domain.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	products := []domain.CatalogProduct{}
	index := map[string]int{}
	for rows.Next() {
		var p domain.CatalogProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.BasePrice, &p.Stock, &p.IsActive, &p.Image); err != nil {
			return nil, fmt.Errorf("%w: scan product: %v", domain.ErrCatalogUnavailable, err)
		}
		p.Variants = []domain.Variant{}
		p.SearchKeywords = []string{}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	if len(products) == 0 {
		return products, nil
	}

	if err := r.loadVariants(ctx, products, index); err != nil {
		return nil, err
	}
	if err := r.loadKeywords(ctx, products, index); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *SQLiteRepository) loadVariants(ctx context.Context, products []domain.CatalogProduct, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, name, price, stock FROM product_variants ORDER BY product_id, position`)
	if err != nil {
		return fmt.Errorf("%w: query variants: %v", domain.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var v domain.Variant
		if err := rows.Scan(&id, &v.Name, &v.Price, &v.Stock); err != nil {
			return fmt.Errorf("%w: scan variant: %v", domain.ErrCatalogUnavailable, err)
		}
		if i, ok := index[id]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}
	return rowsErr(rows.Err())
}

func (r *SQLiteRepository) loadKeywords(ctx context.Context, products []domain.CatalogProduct, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, keyword FROM product_keywords ORDER BY product_id, position`)
	if err != nil {
		return fmt.Errorf("%w: query keywords: %v", domain.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, keyword string
		if err := rows.Scan(&id, &keyword); err != nil {
			return fmt.Errorf("%w: scan keyword: %v", domain.ErrCatalogUnavailable, err)
		}
		if i, ok := index[id]; ok {
			products[i].SearchKeywords = append(products[i].SearchKeywords, keyword)
		}
	}
	return rowsErr(rows.Err())
}

func rowsErr(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
}
