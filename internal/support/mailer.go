// Package support delivers the mails triggered by domain events: contact
// form submissions, password reset codes and welcome messages.
package support

import (
	"context"
	"log/slog"
)

// Mail is one outbound message.
type Mail struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer delivers mail through one provider.
type Mailer interface {
	Name() string
	Send(ctx context.Context, m Mail) error
}

// LogMailer writes mails to the log instead of sending them. It is the
// default until an SMTP relay is configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Name() string { return "log" }

func (m *LogMailer) Send(ctx context.Context, mail Mail) error {
	m.logger.InfoContext(ctx, "mail sent",
		slog.String("mailer", m.Name()),
		slog.String("to", mail.To),
		slog.String("reply_to", mail.ReplyTo),
		slog.String("subject", mail.Subject),
		slog.Int("body_bytes", len(mail.Body)),
	)
	return nil
}
