package mail

import (
	"context"
	"log/slog"

	"github.com/SscSPs/account_auth_service/internal/middleware"
)

// LogMailer stands in for SMTP outside production. It writes the whole
// message, reset code included, to the request log so a developer can read it.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	middleware.GetLoggerFromCtx(ctx).Warn("SMTP not configured, mail logged instead of sent",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}
