package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/account_auth_service/internal/apperrors"
	"github.com/SscSPs/account_auth_service/internal/core/domain"
	portsrepo "github.com/SscSPs/account_auth_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/account_auth_service/internal/core/ports/services"
	"github.com/SscSPs/account_auth_service/internal/dto"
	"github.com/SscSPs/account_auth_service/internal/utils/pagination"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo       portsrepo.AccountRepositoryFacade
	hasher            portssvc.PasswordHasher
	validate          *validator.Validate
	minPasswordLength int
}

// ServiceOption is a functional option for configuring the account service
type ServiceOption func(*accountService)

// WithPasswordHasher replaces the default bcrypt hasher.
func WithPasswordHasher(hasher portssvc.PasswordHasher) ServiceOption {
	return func(s *accountService) {
		s.hasher = hasher
	}
}

// WithMinPasswordLength sets the minimum accepted password length.
func WithMinPasswordLength(n int) ServiceOption {
	return func(s *accountService) {
		if n > 0 {
			s.minPasswordLength = n
		}
	}
}

// WithClock overrides the clock used for audit timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *accountService) {
		s.now = now
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...ServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo:       repo,
		hasher:            NewPasswordHasher(0),
		validate:          validator.New(),
		minPasswordLength: defaultMinPasswordLength,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.Account, error) {
	username := domain.NormalizeIdentifier(req.Username)
	email := domain.NormalizeIdentifier(req.Email)
	if username == "" || email == "" || strings.TrimSpace(req.Role) == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("All fields are required")
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return nil, apperrors.NewValidationError("Role must be one of admin, manager or user")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, apperrors.NewValidationError("Email address is not valid")
	}
	if err := checkPasswordLength(req.Password, s.minPasswordLength); err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	account := domain.Account{
		AccountID:    uuid.NewString(),
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: digest,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewConflictError("User already exists")
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("email", email))
		return nil, apperrors.NewInternalServerErrorWithCause("Failed to register user", err)
	}

	s.LogInfo(ctx, "Account registered", slog.String("account_id", account.AccountID), slog.String("role", string(role)))
	sanitized := account.Sanitized()
	return &sanitized, nil
}

// ensureAvailable checks both unique keys before the expensive hash. The
// store's unique index still catches a concurrent registration.
func (s *accountService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.accountRepo.FindAccountByEmail(ctx, email); err == nil {
		return apperrors.NewConflictError("User with this email already exists")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check email availability")
		return apperrors.NewInternalServerErrorWithCause("Failed to register user", err)
	}

	if _, err := s.accountRepo.FindAccountByUsername(ctx, username); err == nil {
		return apperrors.NewConflictError("User with this username already exists")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check username availability")
		return apperrors.NewInternalServerErrorWithCause("Failed to register user", err)
	}
	return nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	if accountID == "" {
		return nil, apperrors.NewUnauthorizedError("Unauthorized request")
	}
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		s.LogError(ctx, err, "Failed to get account", slog.String("account_id", accountID))
		return nil, apperrors.NewInternalServerErrorWithCause("Failed to get user", err)
	}
	sanitized := account.Sanitized()
	return &sanitized, nil
}

func (s *accountService) ListAccounts(ctx context.Context, page, pageSize int) (*domain.AccountPage, error) {
	page, pageSize = pagination.Normalize(page, pageSize)

	accounts, err := s.accountRepo.FindAccounts(ctx, pageSize, pagination.Offset(page, pageSize))
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.Int("page", page), slog.Int("page_size", pageSize))
		return nil, apperrors.NewInternalServerErrorWithCause("Failed to list users", err)
	}
	total, err := s.accountRepo.CountAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to count accounts")
		return nil, apperrors.NewInternalServerErrorWithCause("Failed to list users", err)
	}

	return &domain.AccountPage{
		Accounts:   sanitizeAll(accounts),
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: pagination.TotalPages(total, pageSize),
	}, nil
}

func (s *accountService) CountAccounts(ctx context.Context) (int64, error) {
	total, err := s.accountRepo.CountAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to count accounts")
		return 0, apperrors.NewInternalServerErrorWithCause("Failed to count users", err)
	}
	return total, nil
}

func (s *accountService) SearchAccounts(ctx context.Context, query string) ([]domain.Account, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("Search query is required")
	}
	accounts, err := s.accountRepo.SearchAccounts(ctx, query)
	if err != nil {
		s.LogError(ctx, err, "Failed to search accounts")
		return nil, apperrors.NewInternalServerErrorWithCause("Failed to search users", err)
	}
	return sanitizeAll(accounts), nil
}

func (s *accountService) DeleteAccount(ctx context.Context, requesterID, targetEmail string) error {
	targetEmail = domain.NormalizeIdentifier(targetEmail)
	if targetEmail == "" {
		return apperrors.NewValidationError("Email is required")
	}

	requester, err := s.accountRepo.FindAccountByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("Requesting user not found")
		}
		s.LogError(ctx, err, "Failed to load requesting account", slog.String("account_id", requesterID))
		return apperrors.NewInternalServerErrorWithCause("Failed to delete user", err)
	}
	if !requester.IsAdmin() {
		s.LogWarn(ctx, "Delete rejected: requester is not an admin", slog.String("account_id", requesterID))
		return apperrors.NewForbiddenError("Only Admin can delete records")
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.accountRepo.DeleteAccountByEmail(ctx, targetEmail); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("User not found")
		}
		s.LogError(ctx, err, "Failed to delete account")
		return apperrors.NewInternalServerErrorWithCause("Failed to delete user", err)
	}

	s.LogInfo(ctx, "Account deleted", slog.String("deleted_by", requesterID))
	return nil
}

func (s *accountService) UpdateUsername(ctx context.Context, accountID, username string) (*domain.Account, error) {
	username = domain.NormalizeIdentifier(username)
	if username == "" {
		return nil, apperrors.NewValidationError("Username is required")
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		s.LogError(ctx, err, "Failed to load account", slog.String("account_id", accountID))
		return nil, apperrors.NewInternalServerErrorWithCause("Failed to update username", err)
	}
	if account.Username == username {
		return nil, apperrors.NewValidationError("New username must differ from the current one")
	}

	if _, err := s.accountRepo.FindAccountByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflictError("Username is already taken")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check username availability")
		return nil, apperrors.NewInternalServerErrorWithCause("Failed to update username", err)
	}

	now := s.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.accountRepo.UpdateUsername(ctx, accountID, username, now); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDuplicate):
			return nil, apperrors.NewConflictError("Username is already taken")
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, apperrors.NewNotFoundError("User not found")
		}
		s.LogError(ctx, err, "Failed to update username", slog.String("account_id", accountID))
		return nil, apperrors.NewInternalServerErrorWithCause("Failed to update username", err)
	}

	account.Username = username
	account.LastUpdatedAt = now
	sanitized := account.Sanitized()
	return &sanitized, nil
}

func sanitizeAll(accounts []domain.Account) []domain.Account {
	out := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Sanitized())
	}
	return out
}
