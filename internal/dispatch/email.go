package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailSender delivers one rendered email.
type EmailSender interface {
	SendEmail(ctx context.Context, email Email) error
}

// NewEmailSender returns a SendGrid-backed sender when an API key is
// configured and a logging sender otherwise.
func NewEmailSender(apiKey, senderEmail, senderName string, logger *slog.Logger) EmailSender {
	if logger == nil {
		logger = slog.Default()
	}
	if apiKey == "" {
		logger.Warn("no SendGrid API key configured, emails will be logged only")
		return &LogEmailSender{logger: logger}
	}
	return &SendGridEmailSender{
		client:      sendgrid.NewSendClient(apiKey),
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

// LogEmailSender writes the message to the log instead of delivering it.
type LogEmailSender struct {
	logger *slog.Logger
}

// NewLogEmailSender returns a sender that only logs.
func NewLogEmailSender(logger *slog.Logger) *LogEmailSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEmailSender{logger: logger}
}

// SendEmail logs the rendered message.
func (s *LogEmailSender) SendEmail(ctx context.Context, email Email) error {
	s.logger.InfoContext(ctx, "email would be sent",
		"to", email.To,
		"subject", email.Subject,
		"body", email.PlainText,
	)
	return nil
}

// SendGridEmailSender delivers mail through the SendGrid API.
type SendGridEmailSender struct {
	client      *sendgrid.Client
	senderEmail string
	senderName  string
}

// SendEmail submits the message to SendGrid.
func (s *SendGridEmailSender) SendEmail(_ context.Context, email Email) error {
	from := mail.NewEmail(s.senderName, s.senderEmail)
	to := mail.NewEmail("", email.To)
	message := mail.NewSingleEmail(from, email.Subject, to, email.PlainText, email.HTML)

	response, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("dispatch: send email to %s: %w", email.To, err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("dispatch: send email to %s: status %d: %s", email.To, response.StatusCode, response.Body)
	}
	return nil
}
