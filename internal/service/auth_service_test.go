package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mentorlink/mentorlink-api/internal/models"
	appErrors "github.com/mentorlink/mentorlink-api/pkg/errors"
)

func authFixture(secret string) *AuthService {
	return NewAuthService(AuthConfig{Secret: secret, Expiration: time.Hour, Issuer: "mentorlink-api"}, zap.NewNop())
}

func TestAuthValidateTokenRoundTrip(t *testing.T) {
	svc := authFixture("test-secret")
	user := &models.User{ID: "mentor-1", Role: models.RoleMentor, Email: "mentor@example.com", FullName: "Mentor One"}

	token, expiresAt, err := svc.GenerateToken(user)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "mentor-1", claims.UserID)
	assert.Equal(t, models.RoleMentor, claims.Role)
	assert.Equal(t, "Mentor One", claims.FullName)
}

func TestAuthValidateTokenWrongSecret(t *testing.T) {
	issuer := authFixture("secret-a")
	verifier := authFixture("secret-b")

	token, _, err := issuer.GenerateToken(&models.User{ID: "u-1", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateTokenGarbage(t *testing.T) {
	svc := authFixture("test-secret")

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateTokenExpired(t *testing.T) {
	svc := NewAuthService(AuthConfig{Secret: "test-secret", Expiration: -time.Minute, Issuer: "mentorlink-api"}, zap.NewNop())

	token, _, err := svc.GenerateToken(&models.User{ID: "u-1", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
