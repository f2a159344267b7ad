package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

const userColumns = `id, first_name, last_name, email, password_hash, company, phone, role,
	       avatar, is_active, email_verified, department, position, join_date,
	       last_login, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Company,
		&u.Phone, &u.Role, &u.Avatar, &u.IsActive, &u.EmailVerified,
		&u.Department, &u.Position, &u.JoinDate, &u.LastLogin,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *MySQLRepository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}
	return u, nil
}

func (r *MySQLRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = ?"

	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}
	return u, nil
}

func (r *MySQLRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&count); err != nil {
		return false, fmt.Errorf("checking user email: %w", err)
	}
	return count > 0, nil
}

func (r *MySQLRepository) InsertUser(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (id, first_name, last_name, email, password_hash, company,
		                   phone, role, is_active, department, position, join_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Company,
		u.Phone, u.Role, u.IsActive, u.Department, u.Position, u.JoinDate)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *MySQLRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, userID)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("user not found")
	}
	return nil
}

func (r *MySQLRepository) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE users SET last_login = ? WHERE id = ?", at, userID); err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return nil
}

func (r *MySQLRepository) InsertOTP(ctx context.Context, otp *domain.PasswordResetOTP) error {
	if otp.ID == "" {
		otp.ID = uuid.NewString()
	}

	query := `
		INSERT INTO password_reset_otps (id, user_id, email, code, expires_at, is_used)
		VALUES (?, ?, ?, ?, ?, 0)`

	_, err := r.db.ExecContext(ctx, query,
		otp.ID, otp.UserID, otp.Email, otp.Code, otp.ExpiresAt)
	if err != nil {
		return fmt.Errorf("inserting otp: %w", err)
	}
	return nil
}

// LatestOTP returns the most recent reset code issued for email.
func (r *MySQLRepository) LatestOTP(ctx context.Context, email string) (*domain.PasswordResetOTP, error) {
	query := `
		SELECT id, user_id, email, code, expires_at, is_used, created_at
		FROM password_reset_otps
		WHERE email = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var otp domain.PasswordResetOTP
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&otp.ID, &otp.UserID, &otp.Email, &otp.Code,
		&otp.ExpiresAt, &otp.IsUsed, &otp.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("no reset code found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying otp: %w", err)
	}
	return &otp, nil
}

func (r *MySQLRepository) MarkOTPUsed(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE password_reset_otps SET is_used = 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("marking otp used: %w", err)
	}
	return nil
}
