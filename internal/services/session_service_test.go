package services_test

import (
	"context"
	"testing"
	"time"

	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test_jwt_secret"

func TestSessionService_LoginAndValidate(t *testing.T) {
	sessions := services.NewSessionService(repositories.NewMockCredentialRepository(), testJWTSecret, time.Hour)
	require.True(t, sessions.LocalLogin())
	require.NoError(t, sessions.AddUser(context.Background(), "user-123", "testuser", "password123"))

	sess, err := sessions.Login(context.Background(), "testuser", "password123")
	require.NoError(t, err)
	assert.Equal(t, "user-123", sess.UserID)
	assert.NotEmpty(t, sess.Token)

	validated, err := sessions.ValidateToken(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", validated.UserID)
	assert.Equal(t, "testuser", validated.Username)
	assert.True(t, validated.Authenticated())

	_, err = sessions.Login(context.Background(), "testuser", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = sessions.Login(context.Background(), "nobody", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestSessionService_LocalLoginDisabled(t *testing.T) {
	sessions := services.NewSessionService(nil, testJWTSecret, time.Hour)
	assert.False(t, sessions.LocalLogin())

	_, err := sessions.Login(context.Background(), "testuser", "password123")
	assert.ErrorIs(t, err, services.ErrLocalLoginDisabled)
	assert.ErrorIs(t, sessions.AddUser(context.Background(), "1", "a", "b"), services.ErrLocalLoginDisabled)
}

func TestSessionService_ValidateToken(t *testing.T) {
	sessions := services.NewSessionService(nil, testJWTSecret, time.Hour)

	numeric := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  float64(42),
		"username": "bob",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := numeric.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	sess, err := sessions.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "42", sess.UserID)
	assert.Equal(t, signed, sess.Token)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	signed, err = expired.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = sessions.ValidateToken(signed)
	assert.Error(t, err)

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u1"}).SignedString([]byte("other"))
	require.NoError(t, err)
	_, err = sessions.ValidateToken(otherKey)
	assert.Error(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"username": "x"}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = sessions.ValidateToken(noUser)
	assert.Error(t, err)

	_, err = sessions.ValidateToken("not-a-token")
	assert.Error(t, err)
}
