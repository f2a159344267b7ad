package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbiz/internal/domain"
	apperrors "smartbiz/internal/errors"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	user := &domain.User{
		ID:    "user-1",
		Email: "admin@example.com",
		Role:  domain.RoleAdmin,
	}

	token, err := issuer.Issue(user, time.Now())
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestTokenIssuer_ExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute)

	token, err := issuer.Issue(&domain.User{ID: "user-1"}, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	_, ok := apperrors.IsPermissionError(err)
	assert.True(t, ok)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	token, err := issuer.Issue(&domain.User{ID: "user-1"}, time.Now())
	require.NoError(t, err)

	_, err = other.Verify(token)
	_, ok := apperrors.IsPermissionError(err)
	assert.True(t, ok)
}

func TestTokenIssuer_Garbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	_, err := issuer.Verify("not.a.token")
	_, ok := apperrors.IsPermissionError(err)
	assert.True(t, ok)
}
