package email

import (
	"context"
	"log/slog"
)

// LogSender satisfies Sender without delivering anything. Used in development
// and tests when no SMTP host is configured. Bodies are not logged; they can
// contain codes and temporary passwords.
type LogSender struct {
	Logger *slog.Logger
}

func (l *LogSender) Send(ctx context.Context, to, subject, _ string) error {
	l.Logger.InfoContext(ctx, "email delivery skipped (smtp not configured)",
		"to", to,
		"subject", subject,
	)
	return nil
}
