package services

import (
	portsrepo "github.com/SscSPs/account_auth_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/account_auth_service/internal/core/ports/services"
	"github.com/SscSPs/account_auth_service/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, mailer portssvc.Mailer) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// One hasher shared by registration and the password flows.
	hasher := NewPasswordHasher(cfg.BcryptCost)

	container.TokenService = NewTokenService(cfg)

	container.Account = NewAccountService(
		repos.AccountRepo,
		WithPasswordHasher(hasher),
		WithMinPasswordLength(cfg.MinPasswordLength),
	)

	container.Session = NewSessionService(
		repos.AccountRepo,
		container.TokenService,
		mailer,
		WithSessionPasswordHasher(hasher),
		WithOTPTTL(cfg.OTPTTL),
		WithSessionMinPasswordLength(cfg.MinPasswordLength),
	)

	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade            = (*accountService)(nil)
	_ portssvc.SessionSvcFacade            = (*sessionService)(nil)
	_ portssvc.TokenSvcFacade              = (*tokenService)(nil)
	_ portssvc.GoogleOAuthHandlerSvcFacade = (*googleOAuthHandlerService)(nil)
)
