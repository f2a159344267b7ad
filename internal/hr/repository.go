package hr

import (
	"context"
	"database/sql"
	"fmt"
	"time"

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

// Employee is the user projection HR endpoints expose; no password hash.
type Employee struct {
	ID         string     `json:"id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	Department *string    `json:"department"`
	Position   *string    `json:"position"`
	JoinDate   *time.Time `json:"join_date"`
	IsActive   bool       `json:"is_active"`
}

func (r *MySQLRepository) ListEmployees(ctx context.Context, search, department string, page pagination.Page) ([]Employee, int64, error) {
	where := " WHERE 1=1"
	args := []any{}

	if search != "" {
		where += " AND (first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)"
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if department != "" {
		where += " AND department = ?"
		args = append(args, department)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting employees: %w", err)
	}

	query := `SELECT id, first_name, last_name, email, role, department, position, join_date, is_active
		FROM users` + where + " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, page.Limit(), page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying employees: %w", err)
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Role,
			&e.Department, &e.Position, &e.JoinDate, &e.IsActive); err != nil {
			return nil, 0, fmt.Errorf("scanning employee row: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, total, rows.Err()
}

func (r *MySQLRepository) UserExists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE id = ?", id).Scan(&count); err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}
	return count > 0, nil
}

func (r *MySQLRepository) AttendanceFor(ctx context.Context, userID string, date time.Time) (*domain.Attendance, error) {
	query := `SELECT id, user_id, date, check_in, check_out, status
		FROM attendance WHERE user_id = ? AND date = ?`

	var a domain.Attendance
	err := r.db.QueryRowContext(ctx, query, userID, date.Format("2006-01-02")).
		Scan(&a.ID, &a.UserID, &a.Date, &a.CheckIn, &a.CheckOut, &a.Status)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("no attendance record")
	}
	if err != nil {
		return nil, fmt.Errorf("querying attendance: %w", err)
	}
	return &a, nil
}

func (r *MySQLRepository) ListAttendance(ctx context.Context, date time.Time) ([]domain.Attendance, error) {
	query := `SELECT id, user_id, date, check_in, check_out, status
		FROM attendance WHERE date = ? ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("querying attendance list: %w", err)
	}
	defer rows.Close()

	var records []domain.Attendance
	for rows.Next() {
		var a domain.Attendance
		if err := rows.Scan(&a.ID, &a.UserID, &a.Date, &a.CheckIn, &a.CheckOut, &a.Status); err != nil {
			return nil, fmt.Errorf("scanning attendance row: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

func (r *MySQLRepository) InsertAttendance(ctx context.Context, a *domain.Attendance) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	query := `INSERT INTO attendance (id, user_id, date, check_in, check_out, status)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.Date.Format("2006-01-02"), a.CheckIn, a.CheckOut, a.Status); err != nil {
		return fmt.Errorf("inserting attendance: %w", err)
	}
	return nil
}

func (r *MySQLRepository) UpdateAttendance(ctx context.Context, a *domain.Attendance) error {
	query := `UPDATE attendance SET check_in = ?, check_out = ?, status = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, a.CheckIn, a.CheckOut, a.Status, a.ID); err != nil {
		return fmt.Errorf("updating attendance: %w", err)
	}
	return nil
}

type Stats struct {
	Headcount    int `json:"headcount"`
	ActiveStaff  int `json:"active_staff"`
	PresentToday int `json:"present_today"`
	OnLeaveToday int `json:"on_leave_today"`
}

func (r *MySQLRepository) AggregateStats(ctx context.Context, today time.Time) (*Stats, error) {
	var s Stats
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(is_active), 0) FROM users").Scan(&s.Headcount, &s.ActiveStaff); err != nil {
		return nil, fmt.Errorf("querying headcount: %w", err)
	}

	query := `SELECT COALESCE(SUM(status = ?), 0), COALESCE(SUM(status = ?), 0)
		FROM attendance WHERE date = ?`
	if err := r.db.QueryRowContext(ctx, query,
		domain.AttendancePresent, domain.AttendanceOnLeave, today.Format("2006-01-02"),
	).Scan(&s.PresentToday, &s.OnLeaveToday); err != nil {
		return nil, fmt.Errorf("querying attendance stats: %w", err)
	}

	return &s, nil
}
