package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPasswordResetOTP_Valid(t *testing.T) {
	now := time.Now()

	otp := PasswordResetOTP{ExpiresAt: now.Add(10 * time.Minute)}
	assert.True(t, otp.Valid(now))

	otp.IsUsed = true
	assert.False(t, otp.Valid(now))

	otp.IsUsed = false
	assert.False(t, otp.Valid(now.Add(11*time.Minute)))
}

func TestUser_FullName(t *testing.T) {
	u := User{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", u.FullName())
}

func TestDefaultUserSettings(t *testing.T) {
	s := DefaultUserSettings("user-1")

	assert.Equal(t, "user-1", s.UserID)
	assert.True(t, s.EmailNotifications)
	assert.False(t, s.MarketingEmails)
	assert.Equal(t, "24h", s.SessionTimeout)
	assert.Equal(t, "light", s.Theme)
}
