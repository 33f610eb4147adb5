package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"stockbook/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	user := domain.User{ID: "u1", Username: "cashier", Name: "Till", Role: "cashier", Permissions: []string{"sales", "products:view"}}

	token, exp, err := GenerateToken(secret, user, time.Hour)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ParseToken(secret, token)
	require.NoError(t, err)
	require.Equal(t, &user, claims.User())
}

func TestParseToken_Rejects(t *testing.T) {
	secret := []byte("test-secret")
	user := domain.User{ID: "u1", Username: "admin"}

	token, _, err := GenerateToken(secret, user, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken([]byte("other"), token)
	require.Error(t, err)

	expired, _, err := GenerateToken(secret, user, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(secret, expired)
	require.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken(secret, unsigned)
	require.Error(t, err)

	_, err = ParseToken(secret, "garbage")
	require.Error(t, err)
}
