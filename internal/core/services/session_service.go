package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SscSPs/account_auth_service/internal/apperrors"
	"github.com/SscSPs/account_auth_service/internal/core/domain"
	portsrepo "github.com/SscSPs/account_auth_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/account_auth_service/internal/core/ports/services"
	"github.com/SscSPs/account_auth_service/internal/utils"
)

// sessionService drives the Anonymous -> Authenticated -> Anonymous lifecycle and
// the password flows. The account row is the only state; the service itself
// holds none, so concurrent logins simply race and the last write wins.
type sessionService struct {
	BaseService
	accountRepo       portsrepo.AccountRepositoryFacade
	tokens            portssvc.TokenSvcFacade
	hasher            portssvc.PasswordHasher
	otp               portssvc.OTPGenerator
	mailer            portssvc.Mailer
	otpTTL            time.Duration
	minPasswordLength int
}

// SessionServiceOption configures the session service.
type SessionServiceOption func(*sessionService)

// WithSessionClock overrides the clock used for OTP expiry.
func WithSessionClock(now func() time.Time) SessionServiceOption {
	return func(s *sessionService) {
		s.now = now
	}
}

// WithSessionPasswordHasher replaces the default bcrypt hasher.
func WithSessionPasswordHasher(hasher portssvc.PasswordHasher) SessionServiceOption {
	return func(s *sessionService) {
		s.hasher = hasher
	}
}

// WithOTPGenerator replaces the default 6-digit generator.
func WithOTPGenerator(gen portssvc.OTPGenerator) SessionServiceOption {
	return func(s *sessionService) {
		s.otp = gen
	}
}

// WithOTPTTL sets how long a password-reset code stays valid.
func WithOTPTTL(ttl time.Duration) SessionServiceOption {
	return func(s *sessionService) {
		if ttl > 0 {
			s.otpTTL = ttl
		}
	}
}

// WithSessionMinPasswordLength sets the minimum accepted length for new passwords.
func WithSessionMinPasswordLength(n int) SessionServiceOption {
	return func(s *sessionService) {
		if n > 0 {
			s.minPasswordLength = n
		}
	}
}

// NewSessionService creates the session controller.
func NewSessionService(
	repo portsrepo.AccountRepositoryFacade,
	tokens portssvc.TokenSvcFacade,
	mailer portssvc.Mailer,
	options ...SessionServiceOption,
) portssvc.SessionSvcFacade {
	svc := &sessionService{
		accountRepo:       repo,
		tokens:            tokens,
		mailer:            mailer,
		hasher:            NewPasswordHasher(0),
		otp:               NewOTPGenerator(),
		otpTTL:            time.Hour,
		minPasswordLength: defaultMinPasswordLength,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

func (s *sessionService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = domain.NormalizeIdentifier(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("Email and password are required")
	}

	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(ctx, password, account.PasswordHash) {
		s.LogWarn(ctx, "Login rejected: wrong password", slog.String("account_id", account.AccountID))
		return nil, apperrors.NewUnauthorizedError("Invalid user credentials")
	}

	return s.startSession(ctx, account)
}

func (s *sessionService) LoginWithVerifiedEmail(ctx context.Context, email string) (*domain.Session, error) {
	email = domain.NormalizeIdentifier(email)
	if email == "" {
		return nil, apperrors.NewValidationError("Email is required")
	}
	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, account)
}

// startSession issues a fresh pair and overwrites the stored refresh hash,
// which ends any session the account had before.
func (s *sessionService) startSession(ctx context.Context, account *domain.Account) (*domain.Session, error) {
	return s.issueSession(ctx, account, func(hash string, expiresAt time.Time) error {
		return s.accountRepo.UpdateRefreshToken(ctx, account.AccountID, hash, expiresAt)
	})
}

// issueSession mints a pair and hands the refresh hash to store. A store that
// reports ErrUnauthorized lost a rotation race and the pair is discarded.
func (s *sessionService) issueSession(ctx context.Context, account *domain.Account, store func(hash string, expiresAt time.Time) error) (*domain.Session, error) {
	pair, err := s.tokens.IssueTokenPair(ctx, account.AccountID)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := store(utils.HashRefreshToken(pair.Refresh.Token), pair.Refresh.ExpiresAt); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnauthorized):
			s.LogWarn(ctx, "Refresh rejected: token was rotated concurrently", slog.String("account_id", account.AccountID))
			return nil, apperrors.NewUnauthorizedError("Refresh token is expired or used")
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, apperrors.NewNotFoundError("User does not exist")
		}
		s.LogError(ctx, err, "Failed to store refresh token", slog.String("account_id", account.AccountID))
		return nil, apperrors.NewInternalServerErrorWithCause("Failed to start session", err)
	}

	s.LogInfo(ctx, "Session started", slog.String("account_id", account.AccountID))
	return &domain.Session{Tokens: pair, Account: account.Sanitized()}, nil
}

func (s *sessionService) Logout(ctx context.Context, accountID string) error {
	if accountID == "" {
		return apperrors.NewUnauthorizedError("Unauthorized request")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.accountRepo.ClearRefreshToken(ctx, accountID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to clear refresh token", slog.String("account_id", accountID))
		return apperrors.NewInternalServerErrorWithCause("Failed to log out", err)
	}
	s.LogInfo(ctx, "Session ended", slog.String("account_id", accountID))
	return nil
}

func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	accountID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	s.LogDebug(ctx, "Refresh token verified", slog.String("account_id", accountID))

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewUnauthorizedError("Invalid refresh token")
		}
		s.LogError(ctx, err, "Failed to load account for refresh", slog.String("account_id", accountID))
		return nil, apperrors.NewInternalServerErrorWithCause("Failed to refresh session", err)
	}

	if !account.HasActiveSession() || !utils.CompareRefreshTokenHash(refreshToken, account.RefreshTokenHash) {
		s.LogWarn(ctx, "Refresh rejected: token is not the current one", slog.String("account_id", accountID))
		return nil, apperrors.NewUnauthorizedError("Refresh token is expired or used")
	}
	if account.RefreshTokenExpiresAt != nil && s.Now().After(*account.RefreshTokenExpiresAt) {
		return nil, apperrors.NewUnauthorizedErrorWithCause("Refresh token has expired", apperrors.ErrTokenExpired)
	}

	presented := utils.HashRefreshToken(refreshToken)
	return s.issueSession(ctx, account, func(hash string, expiresAt time.Time) error {
		return s.accountRepo.RotateRefreshToken(ctx, account.AccountID, presented, hash, expiresAt)
	})
}

// RequestPasswordReset mails the code before storing it. If the mail fails
// nothing is stored; if ctx ends after the mail went out the code is dropped
// and the user has to ask again.
func (s *sessionService) RequestPasswordReset(ctx context.Context, email string) error {
	email = domain.NormalizeIdentifier(email)
	if email == "" {
		return apperrors.NewValidationError("Email is required")
	}

	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.otp.Generate()
	if err != nil {
		s.LogError(ctx, err, "Failed to generate reset code")
		return apperrors.NewInternalServerErrorWithCause("Failed to generate reset code", err)
	}
	expiresAt := s.Now().Add(s.otpTTL)

	body, err := renderPasswordResetMail(account.Username, code, s.otpTTL)
	if err != nil {
		return apperrors.NewInternalServerErrorWithCause("Failed to render reset email", err)
	}
	if err := s.mailer.Send(ctx, account.Email, passwordResetSubject, body); err != nil {
		s.LogError(ctx, err, "Failed to send reset code", slog.String("account_id", account.AccountID))
		return apperrors.NewInternalServerErrorWithCause("Failed to send reset email", errors.Join(apperrors.ErrMailDelivery, err))
	}
	s.LogDebug(ctx, "Password reset mail handed to mailer", slog.String("account_id", account.AccountID))

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.accountRepo.SetPasswordResetOTP(ctx, account.AccountID, code, expiresAt); err != nil {
		s.LogError(ctx, err, "Failed to store reset code", slog.String("account_id", account.AccountID))
		return apperrors.NewInternalServerErrorWithCause("Failed to store reset code", err)
	}

	s.LogInfo(ctx, "Password reset code issued", slog.String("account_id", account.AccountID), slog.Time("expires_at", expiresAt))
	return nil
}

func (s *sessionService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	email = domain.NormalizeIdentifier(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" || newPassword == "" {
		return apperrors.NewValidationError("Email, OTP code and new password are required")
	}
	if err := s.checkPasswordLength(newPassword); err != nil {
		return err
	}

	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	// A wrong code is reported as such even when the stored one has also expired.
	if !account.HasPendingOTP() || !utils.SecureCompare(code, account.OTPCode) {
		s.LogWarn(ctx, "Password reset rejected: wrong code", slog.String("account_id", account.AccountID))
		return apperrors.NewUnauthorizedErrorWithCause("Invalid OTP", apperrors.ErrInvalidOTP)
	}
	if account.OTPExpired(s.Now()) {
		s.LogWarn(ctx, "Password reset rejected: code expired", slog.String("account_id", account.AccountID))
		return apperrors.NewUnauthorizedErrorWithCause("OTP has expired", apperrors.ErrOTPExpired)
	}

	digest, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// The code is rechecked by the store so a concurrent confirm cannot reuse it.
	if err := s.accountRepo.ConsumePasswordResetOTP(ctx, account.AccountID, code, digest, s.Now()); err != nil {
		if errors.Is(err, apperrors.ErrInvalidOTP) {
			s.LogWarn(ctx, "Password reset rejected: code already used", slog.String("account_id", account.AccountID))
			return apperrors.NewUnauthorizedErrorWithCause("Invalid OTP", apperrors.ErrInvalidOTP)
		}
		s.LogError(ctx, err, "Failed to store password", slog.String("account_id", account.AccountID))
		return apperrors.NewInternalServerErrorWithCause("Failed to update password", err)
	}
	s.LogInfo(ctx, "Password reset", slog.String("account_id", account.AccountID))
	return nil
}

func (s *sessionService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	email = domain.NormalizeIdentifier(email)
	if email == "" || oldPassword == "" || newPassword == "" {
		return apperrors.NewValidationError("Email, old password and new password are required")
	}
	if err := s.checkPasswordLength(newPassword); err != nil {
		return err
	}

	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(ctx, oldPassword, account.PasswordHash) {
		return apperrors.NewUnauthorizedError("Old password is incorrect")
	}

	return s.storePassword(ctx, account.AccountID, newPassword)
}

func (s *sessionService) storePassword(ctx context.Context, accountID, newPassword string) error {
	digest, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.accountRepo.UpdatePasswordHash(ctx, accountID, digest, s.Now()); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("User does not exist")
		}
		s.LogError(ctx, err, "Failed to store password", slog.String("account_id", accountID))
		return apperrors.NewInternalServerErrorWithCause("Failed to update password", err)
	}
	s.LogInfo(ctx, "Password updated", slog.String("account_id", accountID))
	return nil
}

func (s *sessionService) checkPasswordLength(password string) error {
	return checkPasswordLength(password, s.minPasswordLength)
}

func (s *sessionService) findByEmail(ctx context.Context, email string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User does not exist")
		}
		s.LogError(ctx, err, "Failed to look up account by email")
		return nil, apperrors.NewInternalServerErrorWithCause("Failed to look up account", err)
	}
	return account, nil
}

const defaultMinPasswordLength = 8

func checkPasswordLength(password string, minLength int) error {
	if utf8.RuneCountInString(password) < minLength {
		return apperrors.NewValidationError(fmt.Sprintf("Password must be at least %d characters long", minLength))
	}
	return nil
}
