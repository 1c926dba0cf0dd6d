package jwt_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"lodge/config"
	"lodge/infras/jwt"
)

func newService() jwt.JWT {
	cfg := &config.Config{}
	cfg.App.Name = "lodge-test"
	cfg.JWT.AccessSecret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessExpireMin = 15
	cfg.JWT.RefreshExpireMin = 60

	return jwt.New(cfg)
}

func TestService_GenerateAndValidate(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	pair, err := svc.GenerateTokenPair(ctx, "user-1", "guest@example.com", "guest")
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := svc.ValidateToken(ctx, pair.AccessToken, jwt.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "guest@example.com", claims.Email)
	assert.Equal(t, "guest", claims.Role)
}

func TestService_RefreshTokens(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	pair, err := svc.GenerateTokenPair(ctx, "user-1", "guest@example.com", "guest")
	assert.NoError(t, err)

	refreshed, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEmpty(t, refreshed.RefreshToken)

	// The refreshed pair must carry the original identity forward.
	claims, err := svc.ValidateToken(ctx, refreshed.AccessToken, jwt.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "guest", claims.Role)
}

func TestService_RefreshTokens_RejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	pair, err := svc.GenerateTokenPair(ctx, "user-1", "guest@example.com", "guest")
	assert.NoError(t, err)

	_, err = svc.RefreshTokens(ctx, pair.AccessToken)
	assert.Error(t, err)
}
