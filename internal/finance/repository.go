package finance

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

const expenseColumns = `id, description, category, amount, date, vendor, created_at`

func scanExpense(row interface{ Scan(...any) error }) (*domain.Expense, error) {
	var e domain.Expense
	err := row.Scan(&e.ID, &e.Description, &e.Category, &e.Amount, &e.Date, &e.Vendor, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expenses WHERE id = ?"

	e, err := scanExpense(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("expense not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying expense by id: %w", err)
	}
	return e, nil
}

func (r *MySQLRepository) List(ctx context.Context, category string, page pagination.Page) ([]domain.Expense, int64, error) {
	where := " WHERE 1=1"
	args := []any{}

	if category != "" {
		where += " AND category = ?"
		args = append(args, category)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting expenses: %w", err)
	}

	query := "SELECT " + expenseColumns + " FROM expenses" + where +
		" ORDER BY date DESC, id LIMIT ? OFFSET ?"
	args = append(args, page.Limit(), page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning expense row: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, total, rows.Err()
}

func (r *MySQLRepository) Insert(ctx context.Context, e *domain.Expense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	query := `INSERT INTO expenses (id, description, category, amount, date, vendor)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query,
		e.ID, e.Description, e.Category, e.Amount, e.Date, e.Vendor); err != nil {
		return fmt.Errorf("inserting expense: %w", err)
	}
	return nil
}

func (r *MySQLRepository) Update(ctx context.Context, e *domain.Expense) error {
	query := `UPDATE expenses SET description = ?, category = ?, amount = ?, date = ?, vendor = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		e.Description, e.Category, e.Amount, e.Date, e.Vendor, e.ID)
	if err != nil {
		return fmt.Errorf("updating expense: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("expense not found")
	}
	return nil
}

func (r *MySQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("expense not found")
	}
	return nil
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

func (r *MySQLRepository) TotalsByCategory(ctx context.Context) ([]CategoryTotal, error) {
	query := `SELECT category, COALESCE(SUM(amount), 0) AS total
		FROM expenses GROUP BY category ORDER BY total DESC, category ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying expense categories: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var t CategoryTotal
		if err := rows.Scan(&t.Category, &t.Total); err != nil {
			return nil, fmt.Errorf("scanning category total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
