package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockbook/config"
	"stockbook/internal/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(config.AuthConfig{
		JWTSecret:           "secret",
		TokenTTL:            time.Hour,
		SeedAdminPassword:   "admin-pass",
		SeedCashierPassword: "cashier-pass",
	})
	require.NoError(t, err)
	return svc
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	res, err := svc.Authenticate(ctx, "Cashier", "cashier-pass")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, "cashier", res.User.Role)

	user, err := svc.CurrentUser(res.Token)
	require.NoError(t, err)
	require.Equal(t, "cashier", user.Username)
	require.True(t, domain.CanAccess(user, domain.SectionSales))
	require.False(t, domain.CanAccess(user, domain.SectionReports))
	require.True(t, domain.CanView(user, domain.SectionProducts))
}

func TestAuthenticate_Failures(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Authenticate(ctx, "admin", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "manager", "anything")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "", "")
	require.True(t, domain.IsValidation(err))

	_, err = svc.CurrentUser("not-a-token")
	require.Error(t, err)
}

func TestNewService(t *testing.T) {
	_, err := NewService(config.AuthConfig{})
	require.Error(t, err)

	svc := newTestService(t)
	users := svc.Users()
	require.Len(t, users, 2)
	require.Equal(t, "admin", users[0].Username)
	require.Equal(t, []string{domain.PermissionAll}, users[0].Permissions)
}
