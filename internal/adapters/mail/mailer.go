package mail

import (
	"errors"
	"log/slog"

	portssvc "github.com/SscSPs/account_auth_service/internal/core/ports/services"
	"github.com/SscSPs/account_auth_service/internal/platform/config"
)

// ErrSMTPRequired is returned in production when no SMTP relay is configured.
var ErrSMTPRequired = errors.New("SMTP_HOST is required in production")

// New returns an SMTP mailer when SMTP_HOST is set. Outside production it
// falls back to a LogMailer; in production it refuses to start, since reset
// codes would otherwise be stored without ever reaching the user.
func New(cfg *config.Config, logger *slog.Logger) (portssvc.Mailer, error) {
	if cfg.SMTPHost == "" {
		if cfg.IsProduction {
			return nil, ErrSMTPRequired
		}
		logger.Warn("SMTP_HOST not set, mail will be written to the log")
		return LogMailer{}, nil
	}
	m, err := NewSMTPMailer(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("SMTP mailer configured", slog.String("host", cfg.SMTPHost), slog.Int("port", cfg.SMTPPort))
	return m, nil
}
