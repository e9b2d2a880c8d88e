package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender delivers one rendered text message.
type SMSSender interface {
	SendSMS(ctx context.Context, sms SMS) error
}

// NewSMSSender returns a Twilio-backed sender when credentials are configured
// and a logging sender otherwise.
func NewSMSSender(accountSID, authToken, fromNumber string, logger *slog.Logger) SMSSender {
	if logger == nil {
		logger = slog.Default()
	}
	if accountSID == "" || authToken == "" || fromNumber == "" {
		logger.Warn("no Twilio credentials configured, text messages will be logged only")
		return &LogSMSSender{logger: logger}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSMSSender{client: client, from: fromNumber}
}

// LogSMSSender writes the message to the log instead of delivering it.
type LogSMSSender struct {
	logger *slog.Logger
}

// NewLogSMSSender returns a sender that only logs.
func NewLogSMSSender(logger *slog.Logger) *LogSMSSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSMSSender{logger: logger}
}

// SendSMS logs the rendered message.
func (s *LogSMSSender) SendSMS(ctx context.Context, sms SMS) error {
	s.logger.InfoContext(ctx, "text message would be sent",
		"to", sms.To,
		"body", sms.Body,
	)
	return nil
}

// TwilioSMSSender delivers texts through the Twilio messaging API.
type TwilioSMSSender struct {
	client *twilio.RestClient
	from   string
}

// SendSMS submits the message to Twilio.
func (s *TwilioSMSSender) SendSMS(_ context.Context, sms SMS) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(sms.To)
	params.SetFrom(s.from)
	params.SetBody(sms.Body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("dispatch: send sms to %s: %w", sms.To, err)
	}
	return nil
}
