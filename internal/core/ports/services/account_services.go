package services

import (
	"context"

	"github.com/SscSPs/account_auth_service/internal/core/domain"
	"github.com/SscSPs/account_auth_service/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves an account by ID with credential fields stripped.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves one page of accounts. Page and page size below 1 fall back to defaults.
	ListAccounts(ctx context.Context, page, pageSize int) (*domain.AccountPage, error)

	// CountAccounts returns the total number of accounts.
	CountAccounts(ctx context.Context) (int64, error)

	// SearchAccounts matches query against usernames and emails, case-insensitively.
	SearchAccounts(ctx context.Context, query string) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// Register creates a new account.
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.Account, error)

	// UpdateUsername renames the account.
	UpdateUsername(ctx context.Context, accountID, username string) (*domain.Account, error)
}

// AccountLifecycleSvc defines operations for managing account lifecycle
type AccountLifecycleSvc interface {
	// DeleteAccount removes the account with targetEmail. Only admins may call it.
	DeleteAccount(ctx context.Context, requesterID, targetEmail string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountLifecycleSvc
}
