package settings

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"smartbiz/internal/domain"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

const settingsColumns = `id, user_id, first_name, last_name, email, company, phone,
	email_notifications, push_notifications, order_updates, marketing_emails, weekly_reports,
	two_factor_auth, session_timeout, password_expiry,
	language, timezone, theme, created_at, updated_at`

// FindByUserID returns nil without error when the user never saved settings.
func (r *MySQLRepository) FindByUserID(ctx context.Context, userID string) (*domain.UserSettings, error) {
	query := "SELECT " + settingsColumns + " FROM user_settings WHERE user_id = ?"

	var s domain.UserSettings
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.FirstName, &s.LastName, &s.Email, &s.Company, &s.Phone,
		&s.EmailNotifications, &s.PushNotifications, &s.OrderUpdates, &s.MarketingEmails, &s.WeeklyReports,
		&s.TwoFactorAuth, &s.SessionTimeout, &s.PasswordExpiry,
		&s.Language, &s.Timezone, &s.Theme, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user settings: %w", err)
	}
	return &s, nil
}

func (r *MySQLRepository) Upsert(ctx context.Context, s *domain.UserSettings) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	query := `INSERT INTO user_settings
		(id, user_id, first_name, last_name, email, company, phone,
		 email_notifications, push_notifications, order_updates, marketing_emails, weekly_reports,
		 two_factor_auth, session_timeout, password_expiry, language, timezone, theme)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		first_name = VALUES(first_name), last_name = VALUES(last_name), email = VALUES(email),
		company = VALUES(company), phone = VALUES(phone),
		email_notifications = VALUES(email_notifications), push_notifications = VALUES(push_notifications),
		order_updates = VALUES(order_updates), marketing_emails = VALUES(marketing_emails),
		weekly_reports = VALUES(weekly_reports),
		two_factor_auth = VALUES(two_factor_auth), session_timeout = VALUES(session_timeout),
		password_expiry = VALUES(password_expiry),
		language = VALUES(language), timezone = VALUES(timezone), theme = VALUES(theme)`

	if _, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.FirstName, s.LastName, s.Email, s.Company, s.Phone,
		s.EmailNotifications, s.PushNotifications, s.OrderUpdates, s.MarketingEmails, s.WeeklyReports,
		s.TwoFactorAuth, s.SessionTimeout, s.PasswordExpiry,
		s.Language, s.Timezone, s.Theme); err != nil {
		return fmt.Errorf("upserting user settings: %w", err)
	}
	return nil
}
