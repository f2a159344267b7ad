package product

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/pagination"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

const productColumns = `id, name, sku, category, price, stock, status,
	       image, description, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.SKU, &p.Category, &p.Price, &p.Stock, &p.Status,
		&p.Image, &p.Description, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = ?"

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}
	return p, nil
}

// FindByIDForUpdate locks the product row for the remainder of tx. The
// order unit of work relies on this lock to serialize stock checks.
func (r *MySQLRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = ? FOR UPDATE"

	p, err := scanProduct(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying product for update: %w", err)
	}
	return p, nil
}

type Filter struct {
	Search   string
	Category string
	Status   string
}

func (r *MySQLRepository) List(ctx context.Context, f Filter, page pagination.Page) ([]domain.Product, int64, error) {
	where := " WHERE 1=1"
	args := []any{}

	if f.Search != "" {
		where += " AND (name LIKE ? OR sku LIKE ?)"
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}
	if f.Category != "" {
		where += " AND category = ?"
		args = append(args, f.Category)
	}
	if f.Status != "" {
		where += " AND status = ?"
		args = append(args, f.Status)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	query := "SELECT " + productColumns + " FROM products" + where +
		" ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, page.Limit(), page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, total, nil
}

func (r *MySQLRepository) SKUExists(ctx context.Context, sku, excludeID string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM products WHERE sku = ? AND id != ?"
	if err := r.db.QueryRowContext(ctx, query, sku, excludeID).Scan(&count); err != nil {
		return false, fmt.Errorf("checking sku uniqueness: %w", err)
	}
	return count > 0, nil
}

func (r *MySQLRepository) Insert(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query := `
		INSERT INTO products (id, name, sku, category, price, stock, status, image, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.SKU, p.Category, p.Price, p.Stock, p.Status, p.Image, p.Description)
	if err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

func (r *MySQLRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products
		SET name = ?, sku = ?, category = ?, price = ?, stock = ?, status = ?,
		    image = ?, description = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		p.Name, p.SKU, p.Category, p.Price, p.Stock, p.Status, p.Image, p.Description, p.ID)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("product not found")
	}
	return nil
}

// SetStock writes stock and its derived status inside tx. Callers compute
// the status with domain.StockStatusFor.
func (r *MySQLRepository) SetStock(ctx context.Context, tx *sql.Tx, id string, stock int, status string) error {
	query := "UPDATE products SET stock = ?, status = ? WHERE id = ?"
	if _, err := tx.ExecContext(ctx, query, stock, status, id); err != nil {
		return fmt.Errorf("updating product stock: %w", err)
	}
	return nil
}

func (r *MySQLRepository) ReferencedByOrders(ctx context.Context, id string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM order_items WHERE product_id = ?"
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return false, fmt.Errorf("checking order references: %w", err)
	}
	return count > 0, nil
}

func (r *MySQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("product not found")
	}
	return nil
}

// Stats holds the aggregate figures behind GET /products/stats.
type Stats struct {
	Total          int             `json:"total_products"`
	InStock        int             `json:"in_stock"`
	LowStock       int             `json:"low_stock"`
	OutOfStock     int             `json:"out_of_stock"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
}

func (r *MySQLRepository) AggregateStats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(status = ?), 0),
		       COALESCE(SUM(status = ?), 0),
		       COALESCE(SUM(status = ?), 0),
		       COALESCE(SUM(price * stock), 0)
		FROM products`

	var s Stats
	err := r.db.QueryRowContext(ctx, query,
		domain.StockStatusIn, domain.StockStatusLow, domain.StockStatusOut,
	).Scan(&s.Total, &s.InStock, &s.LowStock, &s.OutOfStock, &s.InventoryValue)
	if err != nil {
		return nil, fmt.Errorf("querying product stats: %w", err)
	}
	return &s, nil
}
