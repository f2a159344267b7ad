package order

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

const orderColumns = `o.id, o.order_number, o.customer_id, c.name, o.total, o.status,
	       o.order_date, o.payment_method, o.shipping_address, o.notes,
	       o.created_at, o.updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerName, &o.Total, &o.Status,
		&o.OrderDate, &o.PaymentMethod, &o.ShippingAddress, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = ?`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	items, err := r.ItemsByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return o, nil
}

// FindByIDForUpdate locks the order header row for the remainder of tx.
func (r *MySQLRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = ?
		FOR UPDATE`

	o, err := scanOrder(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying order for update: %w", err)
	}
	return o, nil
}

type Filter struct {
	Search     string
	Status     string
	CustomerID string
}

func (r *MySQLRepository) List(ctx context.Context, f Filter, page pagination.Page) ([]domain.Order, int64, error) {
	where := " WHERE 1=1"
	args := []any{}

	if f.Search != "" {
		where += " AND (o.order_number LIKE ? OR c.name LIKE ?)"
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}
	if f.Status != "" {
		where += " AND o.status = ?"
		args = append(args, f.Status)
	}
	if f.CustomerID != "" {
		where += " AND o.customer_id = ?"
		args = append(args, f.CustomerID)
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM orders o JOIN customers c ON c.id = o.customer_id" + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}

	query := "SELECT " + orderColumns + " FROM orders o JOIN customers c ON c.id = o.customer_id" +
		where + " ORDER BY o.created_at DESC, o.id LIMIT ? OFFSET ?"
	args = append(args, page.Limit(), page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating order rows: %w", err)
	}

	return orders, total, nil
}

func (r *MySQLRepository) NumberExists(ctx context.Context, tx *sql.Tx, number, excludeID string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM orders WHERE order_number = ? AND id <> ? LIMIT 1`,
		number, excludeID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking order number: %w", err)
	}
	return true, nil
}

func (r *MySQLRepository) Insert(ctx context.Context, tx *sql.Tx, o *domain.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO orders (id, order_number, customer_id, total, status, order_date,
		                    payment_method, shipping_address, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.OrderNumber, o.CustomerID, o.Total, o.Status, o.OrderDate,
		o.PaymentMethod, o.ShippingAddress, o.Notes,
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

func (r *MySQLRepository) UpdateHeader(ctx context.Context, tx *sql.Tx, o *domain.Order) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET order_number = ?, total = ?, status = ?, order_date = ?,
		    payment_method = ?, shipping_address = ?, notes = ?
		WHERE id = ?`,
		o.OrderNumber, o.Total, o.Status, o.OrderDate,
		o.PaymentMethod, o.ShippingAddress, o.Notes, o.ID,
	)
	if err != nil {
		return fmt.Errorf("updating order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("order not found")
	}
	return nil
}

func (r *MySQLRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	// Items first: the schema has ON DELETE CASCADE but the explicit delete
	// keeps the unit of work readable and works on stores without it.
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, id); err != nil {
		return fmt.Errorf("deleting order items: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("order not found")
	}
	return nil
}

func (r *MySQLRepository) InsertItem(ctx context.Context, tx *sql.Tx, item *domain.OrderItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, subtotal)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("inserting order item: %w", err)
	}
	return nil
}

func (r *MySQLRepository) ItemsByOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.order_id, i.product_id, p.name, i.quantity, i.unit_price, i.subtotal
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ?
		ORDER BY i.id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ItemsByOrderTx reads items inside the unit of work so the stock
// restoration on update/delete sees a consistent snapshot.
func (r *MySQLRepository) ItemsByOrderTx(ctx context.Context, tx *sql.Tx, orderID string) ([]domain.OrderItem, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT i.id, i.order_id, i.product_id, p.name, i.quantity, i.unit_price, i.subtotal
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ?
		ORDER BY i.id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.Subtotal)
		if err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}
	return items, nil
}

func (r *MySQLRepository) DeleteItems(ctx context.Context, tx *sql.Tx, orderID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID); err != nil {
		return fmt.Errorf("deleting order items: %w", err)
	}
	return nil
}

func (r *MySQLRepository) StatusCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("querying order status counts: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning status count row: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status count rows: %w", err)
	}
	return counts, nil
}
