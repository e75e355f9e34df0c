package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	datamodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/notification"
)

// Sender delivers a single notification mail. Implementations must be
// safe for concurrent use: the dispatcher calls from event goroutines.
type Sender interface {
	Send(ctx context.Context, settings datamodel.Settings, subject, body string) error
}

// SMTPSender delivers mail through the SMTP server named in the
// settings record, with PLAIN auth when credentials are configured.
type SMTPSender struct{}

func (SMTPSender) Send(_ context.Context, settings datamodel.Settings, subject, body string) error {
	if settings.SMTPHost == "" || settings.AdminEmail == "" {
		return fmt.Errorf("smtp sender: host and admin email must be configured")
	}

	from := settings.SMTPUser
	if from == "" {
		from = "lead-rotation@localhost"
	}

	msg := []byte("From: " + from + "\r\n" +
		"To: " + settings.AdminEmail + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", settings.SMTPHost, settings.SMTPPort)

	var auth smtp.Auth
	if settings.SMTPUser != "" {
		auth = smtp.PlainAuth("", settings.SMTPUser, settings.SMTPPassword, settings.SMTPHost)
	}

	return smtp.SendMail(addr, auth, from, []string{settings.AdminEmail}, msg)
}

// LogSender writes notifications to the log instead of delivering them.
// Used when email is disabled and in development.
type LogSender struct {
	Logger *slog.Logger
}

func (l LogSender) Send(_ context.Context, settings datamodel.Settings, subject, body string) error {
	l.Logger.Info("notification (email disabled)",
		"to", settings.AdminEmail,
		"subject", subject,
		"body", body)
	return nil
}
