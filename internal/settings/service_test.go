package settings

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartbiz/internal/testutil"
)

func seedUser(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, first_name, last_name, email, password_hash, role)
		VALUES (?, 'Test', 'User', CONCAT(?, '@example.com'), 'x', 'user')`, id, id)
	require.NoError(t, err)
}

func TestService_Get_DefaultsWhenNeverSaved(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewService(NewMySQLRepository(db), zap.NewNop())

	got, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.True(t, got.EmailNotifications)
	assert.False(t, got.MarketingEmails)
	assert.Equal(t, "24h", got.SessionTimeout)
	assert.Equal(t, "light", got.Theme)

	// Nothing was written by the read.
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM user_settings").Scan(&n))
	assert.Equal(t, 0, n)
}

func TestService_UpdateCreatesRowOnFirstSave(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewService(NewMySQLRepository(db), zap.NewNop())
	seedUser(t, db, "user-1")

	theme := "dark"
	got, err := svc.UpdatePreferences(context.Background(), "user-1", PreferencesUpdate{Theme: &theme})
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)

	// Untouched groups keep their defaults.
	assert.Equal(t, "en", got.Language)
	assert.True(t, got.WeeklyReports)
	assert.False(t, got.TwoFactorAuth)
}

func TestService_UpdatesPatchOnlyTheirGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewService(NewMySQLRepository(db), zap.NewNop())
	seedUser(t, db, "user-1")

	first := "Maria"
	_, err := svc.UpdateProfile(context.Background(), "user-1", ProfileUpdate{FirstName: &first})
	require.NoError(t, err)

	off := false
	_, err = svc.UpdateNotifications(context.Background(), "user-1", NotificationsUpdate{
		PushNotifications: &off,
	})
	require.NoError(t, err)

	on := true
	timeout := "8h"
	_, err = svc.UpdateSecurity(context.Background(), "user-1", SecurityUpdate{
		TwoFactorAuth:  &on,
		SessionTimeout: &timeout,
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, got.FirstName)
	assert.Equal(t, "Maria", *got.FirstName)
	assert.False(t, got.PushNotifications)
	assert.True(t, got.EmailNotifications)
	assert.True(t, got.TwoFactorAuth)
	assert.Equal(t, "8h", got.SessionTimeout)

	// Only one row exists after repeated saves.
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM user_settings WHERE user_id = 'user-1'").Scan(&n))
	assert.Equal(t, 1, n)
}
