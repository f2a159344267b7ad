package customer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

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

// customerColumns includes the per-customer order aggregates. Cancelled
// orders never count toward total_spent.
const customerColumns = `c.id, c.name, c.email, c.company, c.phone, c.status, c.join_date,
	       c.address, c.created_at, c.updated_at,
	       (SELECT COUNT(*) FROM orders o WHERE o.customer_id = c.id),
	       COALESCE((SELECT SUM(o.total) FROM orders o
	                 WHERE o.customer_id = c.id AND o.status != 'Cancelled'), 0)`

func scanCustomer(row interface{ Scan(...any) error }) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Company, &c.Phone, &c.Status, &c.JoinDate,
		&c.Address, &c.CreatedAt, &c.UpdatedAt,
		&c.TotalOrders, &c.TotalSpent,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := "SELECT " + customerColumns + " FROM customers c WHERE c.id = ?"

	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("customer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying customer by id: %w", err)
	}
	return c, nil
}

type Filter struct {
	Search string
	Status string
}

func (r *MySQLRepository) List(ctx context.Context, f Filter, page pagination.Page) ([]domain.Customer, int64, error) {
	where := " WHERE 1=1"
	args := []any{}

	if f.Search != "" {
		where += " AND (c.name LIKE ? OR c.email LIKE ? OR c.company LIKE ?)"
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if f.Status != "" {
		where += " AND c.status = ?"
		args = append(args, f.Status)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers c"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting customers: %w", err)
	}

	query := "SELECT " + customerColumns + " FROM customers c" + where +
		" ORDER BY c.created_at DESC, c.id LIMIT ? OFFSET ?"
	args = append(args, page.Limit(), page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning customer row: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating customer rows: %w", err)
	}

	return customers, total, nil
}

// Exists checks presence inside a transaction; the order unit of work calls
// it before inserting an order header.
func (r *MySQLRepository) Exists(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers WHERE id = ?", id).Scan(&count); err != nil {
		return false, fmt.Errorf("checking customer existence: %w", err)
	}
	return count > 0, nil
}

func (r *MySQLRepository) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM customers WHERE email = ? AND id != ?"
	if err := r.db.QueryRowContext(ctx, query, email, excludeID).Scan(&count); err != nil {
		return false, fmt.Errorf("checking email uniqueness: %w", err)
	}
	return count > 0, nil
}

func (r *MySQLRepository) Insert(ctx context.Context, c *domain.Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	query := `
		INSERT INTO customers (id, name, email, company, phone, status, join_date, address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Email, c.Company, c.Phone, c.Status, c.JoinDate, c.Address)
	if err != nil {
		return fmt.Errorf("inserting customer: %w", err)
	}
	return nil
}

func (r *MySQLRepository) Update(ctx context.Context, c *domain.Customer) error {
	query := `
		UPDATE customers
		SET name = ?, email = ?, company = ?, phone = ?, status = ?, address = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		c.Name, c.Email, c.Company, c.Phone, c.Status, c.Address, c.ID)
	if err != nil {
		return fmt.Errorf("updating customer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("customer not found")
	}
	return nil
}

func (r *MySQLRepository) HasOrders(ctx context.Context, id string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders WHERE customer_id = ?", id).Scan(&count); err != nil {
		return false, fmt.Errorf("checking customer orders: %w", err)
	}
	return count > 0, nil
}

func (r *MySQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("customer not found")
	}
	return nil
}

type Stats struct {
	Total        int `json:"total_customers"`
	Active       int `json:"active"`
	Inactive     int `json:"inactive"`
	NewThisMonth int `json:"new_this_month"`
}

func (r *MySQLRepository) AggregateStats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(status = ?), 0),
		       COALESCE(SUM(status = ?), 0),
		       COALESCE(SUM(join_date >= DATE_FORMAT(CURDATE(), '%Y-%m-01')), 0)
		FROM customers`

	var s Stats
	err := r.db.QueryRowContext(ctx, query,
		domain.CustomerStatusActive, domain.CustomerStatusInactive,
	).Scan(&s.Total, &s.Active, &s.Inactive, &s.NewThisMonth)
	if err != nil {
		return nil, fmt.Errorf("querying customer stats: %w", err)
	}
	return &s, nil
}
