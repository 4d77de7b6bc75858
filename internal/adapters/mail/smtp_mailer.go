// Package mail delivers the service's outbound email.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/account_auth_service/internal/middleware"
	"github.com/SscSPs/account_auth_service/internal/platform/config"
	gomail "github.com/wneessen/go-mail"
)

// sender is the part of *gomail.Client the mailer uses.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTPMailer sends HTML mail through an authenticated SMTP relay.
type SMTPMailer struct {
	client sender
	from   string
}

// NewSMTPMailer builds a mailer for the configured relay. STARTTLS is required.
func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	client, err := gomail.NewClient(cfg.SMTPHost,
		gomail.WithPort(cfg.SMTPPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.SMTPUsername),
		gomail.WithPassword(cfg.SMTPPassword),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return newSMTPMailer(client, cfg.MailFrom), nil
}

func newSMTPMailer(client sender, from string) *SMTPMailer {
	return &SMTPMailer{client: client, from: from}
}

// Send delivers one message. Delivery is attempted once.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg, err := buildMessage(m.from, to, subject, htmlBody)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("Mail sent", slog.String("subject", subject))
	return nil
}

func buildMessage(from, to, subject, htmlBody string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)
	return msg, nil
}
