package hr

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/testutil"
)

func seedUser(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, first_name, last_name, email, password_hash, role)
		VALUES (?, 'Test', 'User', ?, 'x', 'user')`, id, id+"@example.com")
	require.NoError(t, err)
}

func TestService_CheckInCheckOut(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewService(NewMySQLRepository(db), zap.NewNop())
	seedUser(t, db, "u1")

	record, err := svc.CheckIn(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.AttendancePresent, record.Status)
	require.NotNil(t, record.CheckIn)
	assert.Nil(t, record.CheckOut)

	// Double check-in is rejected.
	_, err = svc.CheckIn(context.Background(), "u1")
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)

	record, err = svc.CheckOut(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, record.CheckOut)

	// Double check-out is rejected.
	_, err = svc.CheckOut(context.Background(), "u1")
	_, ok = apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestService_CheckOutWithoutCheckIn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewService(NewMySQLRepository(db), zap.NewNop())
	seedUser(t, db, "u1")

	_, err := svc.CheckOut(context.Background(), "u1")
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestService_CheckIn_UnknownUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewService(NewMySQLRepository(db), zap.NewNop())

	_, err := svc.CheckIn(context.Background(), "ghost")
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestService_Stats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := NewService(NewMySQLRepository(db), zap.NewNop())
	seedUser(t, db, "u1")
	seedUser(t, db, "u2")

	_, err := svc.CheckIn(context.Background(), "u1")
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Headcount)
	assert.Equal(t, 2, stats.ActiveStaff)
	assert.Equal(t, 1, stats.PresentToday)
	assert.Equal(t, 0, stats.OnLeaveToday)
}
