package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/account_auth_service/internal/core/domain"
)

// AccountReader defines read operations for account data.
// Every lookup returns apperrors.ErrNotFound (possibly wrapped) when no row matches.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its ID.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByEmail retrieves an account by its normalized email.
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)

	// FindAccountByUsername retrieves an account by its normalized username.
	FindAccountByUsername(ctx context.Context, username string) (*domain.Account, error)

	// FindAccounts retrieves a page of accounts ordered by creation time.
	FindAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)

	// CountAccounts returns the number of stored accounts.
	CountAccounts(ctx context.Context) (int64, error)

	// SearchAccounts returns accounts whose username or email contains query, case-insensitively.
	SearchAccounts(ctx context.Context, query string) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. A unique-key clash yields apperrors.ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateUsername changes the username of an existing account.
	UpdateUsername(ctx context.Context, accountID string, username string, updatedAt time.Time) error

	// DeleteAccountByEmail hard-deletes the account with the given email.
	DeleteAccountByEmail(ctx context.Context, email string) error
}

// AccountCredentialWriter defines writes to the security-relevant fields of an account.
type AccountCredentialWriter interface {
	// UpdateRefreshToken overwrites the stored refresh-token hash and its expiry.
	UpdateRefreshToken(ctx context.Context, accountID string, refreshTokenHash string, expiresAt time.Time) error

	// RotateRefreshToken replaces the stored refresh-token hash only while it still
	// equals presentedHash. A hash that is no longer current yields apperrors.ErrUnauthorized.
	RotateRefreshToken(ctx context.Context, accountID string, presentedHash string, newHash string, expiresAt time.Time) error

	// ClearRefreshToken removes the stored refresh token. Clearing an empty slot is not an error.
	ClearRefreshToken(ctx context.Context, accountID string) error

	// SetPasswordResetOTP stores a pending reset code, superseding any previous one.
	SetPasswordResetOTP(ctx context.Context, accountID string, code string, expiresAt time.Time) error

	// UpdatePasswordHash stores a new password hash and clears any pending reset code.
	UpdatePasswordHash(ctx context.Context, accountID string, passwordHash string, updatedAt time.Time) error

	// ConsumePasswordResetOTP stores passwordHash and clears the reset code in one step,
	// provided code is still pending and unexpired at now. Otherwise nothing changes
	// and apperrors.ErrInvalidOTP is returned, so a code is accepted at most once.
	ConsumePasswordResetOTP(ctx context.Context, accountID string, code string, passwordHash string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
// This is a facade for clients that need access to all operations
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountCredentialWriter
}
