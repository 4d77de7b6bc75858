package services

import (
	"context"
	"fmt"

	"github.com/SscSPs/account_auth_service/internal/apperrors"
	portssvc "github.com/SscSPs/account_auth_service/internal/core/ports/services"
	"github.com/SscSPs/account_auth_service/internal/platform/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// googleOAuthHandlerService implements the GoogleOAuthHandlerSvcFacade.
type googleOAuthHandlerService struct {
	clientID string
	// oauth2Config is configured at initialization time
	oauth2Config *oauth2.Config
	validate     func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

// NewGoogleOAuthHandlerService creates a new instance of googleOAuthHandlerService.
func NewGoogleOAuthHandlerService(cfg *config.Config) portssvc.GoogleOAuthHandlerSvcFacade {
	return &googleOAuthHandlerService{
		clientID: cfg.GoogleClientID,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "https://www.googleapis.com/auth/userinfo.email"},
			Endpoint:     google.Endpoint,
		},
		validate: idtoken.Validate,
	}
}

func (s *googleOAuthHandlerService) Enabled() bool {
	return s.clientID != ""
}

// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
func (s *googleOAuthHandlerService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	if !s.Enabled() {
		return nil, apperrors.NewServiceUnavailableError("Google sign-in is not configured")
	}
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.NewUnauthorizedErrorWithCause("Failed to exchange authorization code", fmt.Errorf("failed to exchange oauth code for token: %w", err))
	}
	return token, nil
}

// ValidateGoogleIDToken validates an ID token received from Google and returns the payload if valid.
func (s *googleOAuthHandlerService) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error) {
	if !s.Enabled() {
		return nil, apperrors.NewServiceUnavailableError("Google sign-in is not configured")
	}
	payload, err := s.validate(ctx, idTokenString, s.clientID)
	if err != nil {
		return nil, apperrors.NewUnauthorizedErrorWithCause("Invalid Google ID token", fmt.Errorf("google ID token validation failed: %w", err))
	}
	return payload, nil
}
