package services

import (
	"context"

	"github.com/SscSPs/account_auth_service/internal/core/domain"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// PasswordHasher is a one-way hash + verify for stored credentials.
type PasswordHasher interface {
	// Hash returns a salted digest of plaintext. It returns ctx.Err() if the
	// context ends before hashing completes.
	Hash(ctx context.Context, plaintext string) (string, error)
	// Verify reports whether plaintext matches digest.
	Verify(ctx context.Context, plaintext, digest string) bool
}

// TokenIssuer creates signed, time-limited tokens bound to an account.
type TokenIssuer interface {
	IssueAccessToken(ctx context.Context, accountID string) (domain.IssuedToken, error)
	IssueRefreshToken(ctx context.Context, accountID string) (domain.IssuedToken, error)
	// IssueTokenPair issues an access and a refresh token for the same account.
	IssueTokenPair(ctx context.Context, accountID string) (domain.TokenPair, error)
}

// TokenVerifier validates a token's signature, expiry and class and resolves it
// to an account ID. It never consults the credential store.
type TokenVerifier interface {
	VerifyAccessToken(token string) (string, error)
	VerifyRefreshToken(token string) (string, error)
}

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	TokenIssuer
	TokenVerifier
}

// OTPGenerator produces short numeric one-time codes.
type OTPGenerator interface {
	Generate() (string, error)
}

// Mailer dispatches HTML email. The password-reset flow is its only caller.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SessionSvcFacade orchestrates the login session lifecycle and password flows.
type SessionSvcFacade interface {
	// Login verifies credentials and starts a new session, replacing any previous one.
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	// LoginWithVerifiedEmail starts a session for an account whose email was
	// verified by an external identity provider.
	LoginWithVerifiedEmail(ctx context.Context, email string) (*domain.Session, error)
	// Logout clears the stored refresh token. It is idempotent.
	Logout(ctx context.Context, accountID string) error
	// Refresh exchanges the account's current refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (*domain.Session, error)
	// RequestPasswordReset mails a one-time code and stores it against the account.
	RequestPasswordReset(ctx context.Context, email string) error
	// ConfirmPasswordReset consumes the code and sets a new password.
	ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error
	// ChangePassword replaces the password after verifying the old one.
	ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error
}

// GoogleOAuthHandlerSvcFacade defines the interface for Google OAuth operations.
type GoogleOAuthHandlerSvcFacade interface {
	// Enabled reports whether a Google client ID is configured.
	Enabled() bool
	// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)
	// ValidateGoogleIDToken validates an ID token string from Google and returns its payload.
	ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error)
}
