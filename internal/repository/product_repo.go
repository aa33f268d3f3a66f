package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/abcenterprises/fbr-einvoicing/internal/domain/entity"
)

// ProductRepository handles catalog database operations.
type ProductRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *sql.DB, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{db: db, logger: logger}
}

// Create inserts a new catalog entry.
func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (hs_code, name, unit, default_rate, tax_percent)
		VALUES (?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		product.HSCode,
		product.Name,
		string(product.Unit),
		product.DefaultRate.String(),
		product.TaxPercent.String(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return &entity.ValidationError{Err: entity.ErrDuplicateHSCode, Details: product.HSCode}
		}
		r.logger.Error("Failed to create product", zap.Error(err))
		return fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	product.ID = id
	product.CreatedAt = now
	product.UpdatedAt = now
	return nil
}

// GetByID retrieves a product by its id.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, "SELECT id, hs_code, name, unit, default_rate, tax_percent, created_at, updated_at FROM products WHERE id = ?", id)
}

// GetByHSCode is the lookup path consumed by the invoice core: it resolves
// an HS code into the authoritative catalog record.
func (r *ProductRepository) GetByHSCode(ctx context.Context, hsCode string) (*entity.Product, error) {
	return r.getOne(ctx, "SELECT id, hs_code, name, unit, default_rate, tax_percent, created_at, updated_at FROM products WHERE hs_code = ?", hsCode)
}

func (r *ProductRepository) getOne(ctx context.Context, query string, arg interface{}) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx, query, arg)

	product, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrProductNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get product", zap.Error(err))
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// List returns the catalog ordered by HS code.
func (r *ProductRepository) List(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, hs_code, name, unit, default_rate, tax_percent, created_at, updated_at FROM products ORDER BY hs_code")
	if err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]*entity.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// Update overwrites a catalog entry.
func (r *ProductRepository) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET hs_code = ?, name = ?, unit = ?, default_rate = ?, tax_percent = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		product.HSCode,
		product.Name,
		string(product.Unit),
		product.DefaultRate.String(),
		product.TaxPercent.String(),
		product.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return &entity.ValidationError{Err: entity.ErrDuplicateHSCode, Details: product.HSCode}
		}
		r.logger.Error("Failed to update product", zap.Error(err))
		return fmt.Errorf("failed to update product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return entity.ErrProductNotFound
	}
	return nil
}

// Delete removes a catalog entry.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete product", zap.Error(err))
		return fmt.Errorf("failed to delete product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return entity.ErrProductNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var (
		p           entity.Product
		unit        string
		defaultRate string
		taxPercent  string
	)

	if err := row.Scan(&p.ID, &p.HSCode, &p.Name, &unit, &defaultRate, &taxPercent, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	p.Unit = entity.Unit(unit)
	if p.DefaultRate, err = decimal.NewFromString(defaultRate); err != nil {
		return nil, fmt.Errorf("corrupt default_rate %q: %w", defaultRate, err)
	}
	if p.TaxPercent, err = decimal.NewFromString(taxPercent); err != nil {
		return nil, fmt.Errorf("corrupt tax_percent %q: %w", taxPercent, err)
	}
	return &p, nil
}
