package dto

import (
	"time"

	"github.com/SscSPs/account_auth_service/internal/core/domain"
)

const timeLayout = time.RFC3339

// LoginRequest represents the credentials for a password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest carries a refresh token when it is not sent as a cookie.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest replaces the password of a logged-in account.
type ChangePasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// PasswordResetRequest asks for a one-time code to be mailed.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// ConfirmPasswordResetRequest consumes the mailed code.
type ConfirmPasswordResetRequest struct {
	Email       string `json:"email"`
	OTPCode     string `json:"OTPCode"`
	NewPassword string `json:"newPassword"`
}

// LoginResponse represents the response for a successful login or refresh.
type LoginResponse struct {
	Account               AccountResponse `json:"user"`
	AccessToken           string          `json:"accessToken"`
	RefreshToken          string          `json:"refreshToken"`
	AccessTokenExpiresAt  string          `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt string          `json:"refreshTokenExpiresAt"`
}

// ToLoginResponse converts a domain.Session to LoginResponse DTO.
func ToLoginResponse(s *domain.Session) LoginResponse {
	return LoginResponse{
		Account:               ToAccountResponse(&s.Account),
		AccessToken:           s.Tokens.Access.Token,
		RefreshToken:          s.Tokens.Refresh.Token,
		AccessTokenExpiresAt:  s.Tokens.Access.ExpiresAt.UTC().Format(timeLayout),
		RefreshTokenExpiresAt: s.Tokens.Refresh.ExpiresAt.UTC().Format(timeLayout),
	}
}

// GoogleCodeRequest is the body of the Google code-exchange endpoint.
type GoogleCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// GoogleIDTokenRequest is the body of the Google ID-token endpoint.
type GoogleIDTokenRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}
