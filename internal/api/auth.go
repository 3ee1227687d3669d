package api

import (
	"context"

	"github.com/lehigh-university-libraries/pustak/internal/models"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login returns the authenticated user. Rejected credentials come back as
// *apperr.AuthError with the server's message.
func (c *Client) Login(ctx context.Context, creds Credentials) (models.User, error) {
	var user models.User
	if err := c.do(ctx, "POST", "/login", nil, creds, &user); err != nil {
		return models.User{}, authFailure(err, "Login failed")
	}
	return user, nil
}

// Register creates an account; the API answers with {"user": {...}}.
func (c *Client) Register(ctx context.Context, reg Registration) (models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, "POST", "/register", nil, reg, &resp); err != nil {
		return models.User{}, authFailure(err, "Registration failed")
	}
	return resp.User, nil
}

// SendOTP asks the API to email a one-time password for a reset.
func (c *Client) SendOTP(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := c.do(ctx, "POST", "/forgot-password/send-otp", nil, body, nil); err != nil {
		return authFailure(err, "Failed to send OTP")
	}
	return nil
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) error {
	body := map[string]string{"email": email, "otp": otp}
	if err := c.do(ctx, "POST", "/forgot-password/verify-otp", nil, body, nil); err != nil {
		return authFailure(err, "Invalid OTP")
	}
	return nil
}

func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	body := map[string]string{"email": email, "otp": otp, "new_password": newPassword}
	if err := c.do(ctx, "POST", "/forgot-password/reset", nil, body, nil); err != nil {
		return authFailure(err, "Failed to reset password")
	}
	return nil
}
