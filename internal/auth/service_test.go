package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "smartbiz/internal/errors"
	"smartbiz/internal/notifier"
	"smartbiz/internal/testutil"
)

func newAuthTestService(db *sql.DB) *Service {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	return NewService(NewMySQLRepository(db), issuer, 10*time.Minute, notifier.Noop{}, zap.NewNop())
}

func TestService_RegisterAndLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := newAuthTestService(db)

	user, token, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	loggedIn, token, err := svc.Login(context.Background(), "ada@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login(context.Background(), "ada@example.com", "wrong")
	_, ok := apperrors.IsPermissionError(err)
	assert.True(t, ok)

	// Unknown address gets the same error as a bad password.
	_, _, err = svc.Login(context.Background(), "nobody@example.com", "whatever")
	_, ok = apperrors.IsPermissionError(err)
	assert.True(t, ok)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := newAuthTestService(db)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), RegisterInput{
		FirstName: "Eva", LastName: "Impostor",
		Email: "ada@example.com", Password: "battery-staple",
	})
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestService_PasswordResetFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := newAuthTestService(db)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(context.Background(), "ada@example.com"))

	// Pull the issued code straight from the store.
	var code string
	require.NoError(t, db.QueryRow(
		"SELECT code FROM password_reset_otps WHERE email = ?", "ada@example.com").Scan(&code))
	require.Len(t, code, 6)

	// Wrong code fails.
	err = svc.ResetPassword(context.Background(), "ada@example.com", "000000", "new-password-1")
	if code != "000000" {
		_, ok := apperrors.IsValidationError(err)
		assert.True(t, ok)
	}

	require.NoError(t, svc.ResetPassword(context.Background(), "ada@example.com", code, "new-password-1"))

	_, _, err = svc.Login(context.Background(), "ada@example.com", "new-password-1")
	assert.NoError(t, err)

	// Single use: the same code cannot reset again.
	err = svc.ResetPassword(context.Background(), "ada@example.com", code, "another-password")
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestService_ForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	svc := newAuthTestService(db)
	assert.NoError(t, svc.ForgotPassword(context.Background(), "ghost@example.com"))
}
