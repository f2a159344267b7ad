package supplier

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

const supplierColumns = `id, name, contact_info, created_at`

func scanSupplier(row interface{ Scan(...any) error }) (*domain.Supplier, error) {
	var s domain.Supplier
	err := row.Scan(&s.ID, &s.Name, &s.ContactInfo, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *MySQLRepository) FindSupplierByID(ctx context.Context, id string) (*domain.Supplier, error) {
	query := "SELECT " + supplierColumns + " FROM suppliers WHERE id = ?"

	s, err := scanSupplier(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("supplier not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying supplier by id: %w", err)
	}
	return s, nil
}

func (r *MySQLRepository) ListSuppliers(ctx context.Context, search string, page pagination.Page) ([]domain.Supplier, int64, error) {
	where := " WHERE 1=1"
	args := []any{}

	if search != "" {
		where += " AND name LIKE ?"
		args = append(args, "%"+search+"%")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM suppliers"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting suppliers: %w", err)
	}

	query := "SELECT " + supplierColumns + " FROM suppliers" + where +
		" ORDER BY name ASC, id LIMIT ? OFFSET ?"
	args = append(args, page.Limit(), page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []domain.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning supplier row: %w", err)
		}
		suppliers = append(suppliers, *s)
	}
	return suppliers, total, rows.Err()
}

func (r *MySQLRepository) SupplierNameExists(ctx context.Context, name, excludeID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM suppliers WHERE name = ? AND id != ?", name, excludeID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking supplier name uniqueness: %w", err)
	}
	return n > 0, nil
}

func (r *MySQLRepository) InsertSupplier(ctx context.Context, s *domain.Supplier) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	query := `INSERT INTO suppliers (id, name, contact_info) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.Name, s.ContactInfo); err != nil {
		return fmt.Errorf("inserting supplier: %w", err)
	}
	return nil
}

func (r *MySQLRepository) UpdateSupplier(ctx context.Context, s *domain.Supplier) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE suppliers SET name = ?, contact_info = ? WHERE id = ?",
		s.Name, s.ContactInfo, s.ID)
	if err != nil {
		return fmt.Errorf("updating supplier: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("supplier not found")
	}
	return nil
}

func (r *MySQLRepository) DeleteSupplier(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM suppliers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting supplier: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("supplier not found")
	}
	return nil
}

func (r *MySQLRepository) HasPurchaseOrders(ctx context.Context, supplierID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM purchase_orders WHERE supplier_id = ?", supplierID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("counting supplier purchase orders: %w", err)
	}
	return n > 0, nil
}

const purchaseOrderColumns = `id, po_number, supplier_id, status, total_amount, order_date`

func scanPurchaseOrder(row interface{ Scan(...any) error }) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := row.Scan(&po.ID, &po.PONumber, &po.SupplierID, &po.Status, &po.TotalAmount, &po.OrderDate)
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *MySQLRepository) FindPurchaseOrderByID(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	query := "SELECT " + purchaseOrderColumns + " FROM purchase_orders WHERE id = ?"

	po, err := scanPurchaseOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("purchase order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying purchase order by id: %w", err)
	}
	return po, nil
}

type PurchaseOrderFilter struct {
	SupplierID string
	Status     string
}

func (r *MySQLRepository) ListPurchaseOrders(ctx context.Context, f PurchaseOrderFilter, page pagination.Page) ([]domain.PurchaseOrder, int64, error) {
	where := " WHERE 1=1"
	args := []any{}

	if f.SupplierID != "" {
		where += " AND supplier_id = ?"
		args = append(args, f.SupplierID)
	}
	if f.Status != "" {
		where += " AND status = ?"
		args = append(args, f.Status)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM purchase_orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting purchase orders: %w", err)
	}

	query := "SELECT " + purchaseOrderColumns + " FROM purchase_orders" + where +
		" ORDER BY order_date DESC, id LIMIT ? OFFSET ?"
	args = append(args, page.Limit(), page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.PurchaseOrder
	for rows.Next() {
		po, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning purchase order row: %w", err)
		}
		orders = append(orders, *po)
	}
	return orders, total, rows.Err()
}

func (r *MySQLRepository) PONumberExists(ctx context.Context, poNumber string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM purchase_orders WHERE po_number = ?", poNumber).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking po_number uniqueness: %w", err)
	}
	return n > 0, nil
}

func (r *MySQLRepository) InsertPurchaseOrder(ctx context.Context, po *domain.PurchaseOrder) error {
	if po.ID == "" {
		po.ID = uuid.NewString()
	}

	query := `INSERT INTO purchase_orders (id, po_number, supplier_id, status, total_amount, order_date)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query,
		po.ID, po.PONumber, po.SupplierID, po.Status, po.TotalAmount, po.OrderDate); err != nil {
		return fmt.Errorf("inserting purchase order: %w", err)
	}
	return nil
}

func (r *MySQLRepository) UpdatePurchaseOrder(ctx context.Context, po *domain.PurchaseOrder) error {
	query := `UPDATE purchase_orders SET status = ?, total_amount = ?, order_date = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, po.Status, po.TotalAmount, po.OrderDate, po.ID)
	if err != nil {
		return fmt.Errorf("updating purchase order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("purchase order not found")
	}
	return nil
}

func (r *MySQLRepository) DeletePurchaseOrder(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM purchase_orders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting purchase order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("purchase order not found")
	}
	return nil
}
