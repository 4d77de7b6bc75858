// Package memory is an in-process credential store for local development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/account_auth_service/internal/apperrors"
	"github.com/SscSPs/account_auth_service/internal/core/domain"
	portsrepo "github.com/SscSPs/account_auth_service/internal/core/ports/repositories"
)

// AccountRepository keeps accounts in a map guarded by a mutex. Every method
// returns copies so callers never share state with the store.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

// NewAccountRepository creates an empty store.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]domain.Account)}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func (r *AccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
	}
	return clone(a), nil
}

func (r *AccountRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findBy(func(a domain.Account) bool { return a.Email == email })
}

func (r *AccountRepository) FindAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findBy(func(a domain.Account) bool { return a.Username == username })
}

func (r *AccountRepository) findBy(match func(domain.Account) bool) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if match(a) {
			return clone(a), nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// FindAccounts orders by creation time then ID, matching the SQL store.
func (r *AccountRepository) FindAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	all := r.sorted()
	if offset >= len(all) {
		return []domain.Account{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *AccountRepository) CountAccounts(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.accounts)), nil
}

func (r *AccountRepository) SearchAccounts(ctx context.Context, query string) ([]domain.Account, error) {
	q := strings.ToLower(query)
	out := []domain.Account{}
	for _, a := range r.sorted() {
		if strings.Contains(strings.ToLower(a.Username), q) || strings.Contains(strings.ToLower(a.Email), q) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *AccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.AccountID == account.AccountID || a.Email == account.Email || a.Username == account.Username {
			return apperrors.ErrDuplicate
		}
	}
	r.accounts[account.AccountID] = *clone(account)
	return nil
}

func (r *AccountRepository) UpdateUsername(ctx context.Context, accountID string, username string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.accounts {
		if id != accountID && a.Username == username {
			return apperrors.ErrDuplicate
		}
	}
	return r.mutate(accountID, func(a *domain.Account) {
		a.Username = username
		a.LastUpdatedAt = updatedAt
	})
}

func (r *AccountRepository) DeleteAccountByEmail(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.accounts {
		if a.Email == email {
			delete(r.accounts, id)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *AccountRepository) UpdateRefreshToken(ctx context.Context, accountID string, refreshTokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutate(accountID, func(a *domain.Account) {
		a.RefreshTokenHash = refreshTokenHash
		a.RefreshTokenExpiresAt = &expiresAt
	})
}

func (r *AccountRepository) RotateRefreshToken(ctx context.Context, accountID string, presentedHash string, newHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok || a.RefreshTokenHash == "" || a.RefreshTokenHash != presentedHash {
		return fmt.Errorf("rotate refresh token: %w", apperrors.ErrUnauthorized)
	}
	return r.mutate(accountID, func(a *domain.Account) {
		a.RefreshTokenHash = newHash
		a.RefreshTokenExpiresAt = &expiresAt
	})
}

func (r *AccountRepository) ClearRefreshToken(ctx context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutate(accountID, func(a *domain.Account) {
		a.RefreshTokenHash = ""
		a.RefreshTokenExpiresAt = nil
	})
}

func (r *AccountRepository) SetPasswordResetOTP(ctx context.Context, accountID string, code string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutate(accountID, func(a *domain.Account) {
		a.OTPCode = code
		a.OTPExpiresAt = &expiresAt
	})
}

func (r *AccountRepository) UpdatePasswordHash(ctx context.Context, accountID string, passwordHash string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutate(accountID, func(a *domain.Account) {
		a.PasswordHash = passwordHash
		a.OTPCode = ""
		a.OTPExpiresAt = nil
		a.LastUpdatedAt = updatedAt
	})
}

func (r *AccountRepository) ConsumePasswordResetOTP(ctx context.Context, accountID string, code string, passwordHash string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok || a.OTPCode == "" || a.OTPCode != code || a.OTPExpiresAt == nil || now.After(*a.OTPExpiresAt) {
		return fmt.Errorf("consume password reset code: %w", apperrors.ErrInvalidOTP)
	}
	return r.mutate(accountID, func(a *domain.Account) {
		a.PasswordHash = passwordHash
		a.OTPCode = ""
		a.OTPExpiresAt = nil
		a.LastUpdatedAt = now
	})
}

// mutate must be called with the write lock held.
func (r *AccountRepository) mutate(accountID string, fn func(*domain.Account)) error {
	a, ok := r.accounts[accountID]
	if !ok {
		return fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
	}
	fn(&a)
	r.accounts[accountID] = a
	return nil
}

func (r *AccountRepository) sorted() []domain.Account {
	r.mu.RLock()
	all := make([]domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		all = append(all, *clone(a))
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].AccountID < all[j].AccountID
	})
	return all
}

func clone(a domain.Account) *domain.Account {
	c := a
	if a.RefreshTokenExpiresAt != nil {
		t := *a.RefreshTokenExpiresAt
		c.RefreshTokenExpiresAt = &t
	}
	if a.OTPExpiresAt != nil {
		t := *a.OTPExpiresAt
		c.OTPExpiresAt = &t
	}
	return &c
}
