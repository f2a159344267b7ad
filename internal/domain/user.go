package domain

import "time"

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

type User struct {
	ID            string     `json:"id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	Company       *string    `json:"company"`
	Phone         *string    `json:"phone"`
	Role          string     `json:"role"`
	Avatar        *string    `json:"avatar"`
	IsActive      bool       `json:"is_active"`
	EmailVerified bool       `json:"email_verified"`
	Department    *string    `json:"department"`
	Position      *string    `json:"position"`
	JoinDate      *time.Time `json:"join_date"`
	LastLogin     *time.Time `json:"last_login"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type UserSettings struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Company   *string `json:"company"`
	Phone     *string `json:"phone"`

	EmailNotifications bool `json:"email_notifications"`
	PushNotifications  bool `json:"push_notifications"`
	OrderUpdates       bool `json:"order_updates"`
	MarketingEmails    bool `json:"marketing_emails"`
	WeeklyReports      bool `json:"weekly_reports"`

	TwoFactorAuth  bool   `json:"two_factor_auth"`
	SessionTimeout string `json:"session_timeout"`
	PasswordExpiry string `json:"password_expiry"`

	Language string `json:"language"`
	Timezone string `json:"timezone"`
	Theme    string `json:"theme"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultUserSettings returns the settings a user has before saving any.
func DefaultUserSettings(userID string) UserSettings {
	return UserSettings{
		UserID:             userID,
		EmailNotifications: true,
		PushNotifications:  true,
		OrderUpdates:       true,
		WeeklyReports:      true,
		SessionTimeout:     "24h",
		PasswordExpiry:     "90d",
		Language:           "en",
		Timezone:           "UTC",
		Theme:              "light",
	}
}

type PasswordResetOTP struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	IsUsed    bool      `json:"is_used"`
	CreatedAt time.Time `json:"created_at"`
}

func (o PasswordResetOTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

func (o PasswordResetOTP) Valid(now time.Time) bool {
	return !o.IsUsed && !o.Expired(now)
}

const (
	AttendancePresent = "Present"
	AttendanceOnLeave = "On Leave"
	AttendanceAbsent  = "Absent"
)

type Attendance struct {
	ID       string     `json:"id"`
	UserID   string     `json:"user_id"`
	Date     time.Time  `json:"date"`
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
	Status   string     `json:"status"`
}
