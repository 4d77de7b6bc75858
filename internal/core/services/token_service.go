package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/account_auth_service/internal/apperrors"
	"github.com/SscSPs/account_auth_service/internal/core/domain"
	portssvc "github.com/SscSPs/account_auth_service/internal/core/ports/services"
	"github.com/SscSPs/account_auth_service/internal/platform/config"
	"github.com/SscSPs/account_auth_service/internal/utils"
	"github.com/golang-jwt/jwt/v5"
)

type tokenKey struct {
	secret string
	ttl    time.Duration
}

// tokenService issues and verifies HS256 JWTs. Access and refresh tokens are
// signed with different secrets so one can never pass for the other.
type tokenService struct {
	BaseService
	issuer  string
	access  tokenKey
	refresh tokenKey
}

// TokenServiceOption configures the token service.
type TokenServiceOption func(*tokenService)

// WithTokenClock overrides the clock used for iat/exp and for verification.
func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(s *tokenService) {
		s.now = now
	}
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config, options ...TokenServiceOption) portssvc.TokenSvcFacade {
	svc := &tokenService{
		issuer:  cfg.JWTIssuer,
		access:  tokenKey{secret: cfg.JWTSecret, ttl: cfg.JWTExpiryDuration},
		refresh: tokenKey{secret: cfg.RefreshTokenSecret, ttl: cfg.RefreshTokenExpiryDuration},
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

func (s *tokenService) IssueAccessToken(ctx context.Context, accountID string) (domain.IssuedToken, error) {
	return s.issue(ctx, accountID, domain.TokenClassAccess, s.access)
}

func (s *tokenService) IssueRefreshToken(ctx context.Context, accountID string) (domain.IssuedToken, error) {
	return s.issue(ctx, accountID, domain.TokenClassRefresh, s.refresh)
}

func (s *tokenService) IssueTokenPair(ctx context.Context, accountID string) (domain.TokenPair, error) {
	access, err := s.IssueAccessToken(ctx, accountID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.IssueRefreshToken(ctx, accountID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *tokenService) issue(ctx context.Context, accountID string, class domain.TokenClass, key tokenKey) (domain.IssuedToken, error) {
	if accountID == "" {
		return domain.IssuedToken{}, apperrors.NewInternalServerError("Cannot issue a token without an account ID")
	}
	signed, expiresAt, err := utils.GenerateJWT(accountID, key.secret, key.ttl, s.issuer, string(class), s.Now())
	if err != nil {
		s.LogError(ctx, err, "Failed to sign token", "class", string(class))
		return domain.IssuedToken{}, apperrors.NewInternalServerErrorWithCause("Failed to issue token", err)
	}
	return domain.IssuedToken{Token: signed, Class: class, ExpiresAt: expiresAt, TTL: key.ttl}, nil
}

func (s *tokenService) VerifyAccessToken(token string) (string, error) {
	return s.verify(token, domain.TokenClassAccess, s.access)
}

func (s *tokenService) VerifyRefreshToken(token string) (string, error) {
	return s.verify(token, domain.TokenClassRefresh, s.refresh)
}

func (s *tokenService) verify(token string, class domain.TokenClass, key tokenKey) (string, error) {
	if token == "" {
		return "", apperrors.NewUnauthorizedErrorWithCause(fmt.Sprintf("%s token is missing", className(class)), apperrors.ErrMalformedToken)
	}
	claims, err := utils.ParseAndValidateJWT(token, key.secret, s.issuer, s.Now)
	if err != nil {
		return "", classifyJWTError(class, err)
	}
	if claims.Class != string(class) || claims.Subject == "" {
		return "", apperrors.NewUnauthorizedErrorWithCause(fmt.Sprintf("Invalid %s token", string(class)), apperrors.ErrMalformedToken)
	}
	return claims.Subject, nil
}

func classifyJWTError(class domain.TokenClass, err error) *apperrors.AppError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.NewUnauthorizedErrorWithCause(fmt.Sprintf("%s token has expired", className(class)), apperrors.ErrTokenExpired)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return apperrors.NewUnauthorizedErrorWithCause(fmt.Sprintf("Invalid %s token", string(class)), apperrors.ErrInvalidSignature)
	default:
		return apperrors.NewUnauthorizedErrorWithCause(fmt.Sprintf("Invalid %s token", string(class)), apperrors.ErrMalformedToken)
	}
}

func className(class domain.TokenClass) string {
	if class == domain.TokenClassRefresh {
		return "Refresh"
	}
	return "Access"
}
