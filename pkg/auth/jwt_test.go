package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustie-admin/pkg/auth"
)

func TestSessionValidatorRoundTrip(t *testing.T) {
	v, err := auth.NewSessionValidator(auth.SessionConfig{SecretKey: "s3cret", Issuer: "trustie-admin"})
	require.NoError(t, err)

	token, err := v.IssueToken("admin-1", "ops@trustie.example", []string{"admin"})
	require.NoError(t, err)

	claims, err := v.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.Equal(t, []string{"admin"}, claims.Roles)
}

func TestSessionValidatorRejects(t *testing.T) {
	v, err := auth.NewSessionValidator(auth.SessionConfig{SecretKey: "s3cret", Issuer: "trustie-admin"})
	require.NoError(t, err)

	other, err := auth.NewSessionValidator(auth.SessionConfig{SecretKey: "other", Issuer: "trustie-admin"})
	require.NoError(t, err)
	forged, err := other.IssueToken("admin-1", "", nil)
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		UserID: "admin-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "trustie-admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, err := expired.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = v.ValidateToken("")
	assert.ErrorIs(t, err, auth.ErrMissingToken)

	_, err = v.ValidateToken(forged)
	assert.ErrorIs(t, err, auth.ErrInvalidSignature)

	_, err = v.ValidateToken(expiredToken)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestUserContext(t *testing.T) {
	_, err := auth.GetUserFromContext(context.Background())
	assert.Error(t, err)

	ctx := auth.SetUserInContext(context.Background(), &auth.UserContext{UserID: "admin-1"})
	user, err := auth.GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", user.UserID)
}
