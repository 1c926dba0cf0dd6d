package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lodge/infras/jwt"
	"lodge/internal/domains/auth/model/dto"
	"lodge/shared/timezone"
)

func TestRegisterRequest_ToUserModel(t *testing.T) {
	t.Run("defaults the role to guest", func(t *testing.T) {
		req := dto.RegisterRequest{
			Email:    "guest@example.com",
			Password: "plaintext",
			FullName: stringPtr("Guest Example"),
		}

		user := req.ToUserModel(req.Email, "hashed")

		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "guest@example.com", user.Email)
		assert.Equal(t, "hashed", user.Password)
		assert.Equal(t, "guest", user.Role)
		assert.True(t, user.Active)
	})

	t.Run("keeps the chosen role", func(t *testing.T) {
		req := dto.RegisterRequest{
			Email:    "staff@example.com",
			Password: "plaintext",
			Role:     "staff",
		}

		user := req.ToUserModel(req.Email, "hashed")

		assert.Equal(t, "staff", user.Role)
	})
}

func TestLoginResponse_FromTokenPair(t *testing.T) {
	tokenPair := &jwt.TokenPair{
		AccessToken:  "test-access-token",
		RefreshToken: "test-refresh-token",
	}

	var response dto.LoginResponse
	response.FromTokenPair(tokenPair)

	assert.Equal(t, tokenPair.AccessToken, response.AccessToken)
	assert.Equal(t, tokenPair.RefreshToken, response.RefreshToken)
}

func TestRefreshTokenResponse_FromTokenPair(t *testing.T) {
	tokenPair := &jwt.TokenPair{
		AccessToken:  "new-access-token",
		RefreshToken: "new-refresh-token",
	}

	var response dto.RefreshTokenResponse
	response.FromTokenPair(tokenPair)

	assert.Equal(t, tokenPair.AccessToken, response.AccessToken)
	assert.Equal(t, tokenPair.RefreshToken, response.RefreshToken)
}

func TestUpdateLastLoginRequest(t *testing.T) {
	now := timezone.Now()

	req := dto.UpdateLastLoginRequest{
		LastLogin: now,
	}

	assert.Equal(t, now, req.LastLogin)
}

func TestUpdatePasswordRequest(t *testing.T) {
	hashedPassword := "hashed-new-password"

	req := dto.UpdatePasswordRequest{
		Password: hashedPassword,
	}

	assert.Equal(t, hashedPassword, req.Password)
}

// Helper function to create string pointer
func stringPtr(s string) *string {
	return &s
}
