package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/campshare/internal/dispatch"
	"github.com/example/campshare/internal/model"
)

// Invitation is the follow-up command produced by Invite and ResetCode. The
// user record is already persisted when an Invitation exists; Dispatch only
// delivers the messages carrying the temporary code.
type Invitation struct {
	User model.User
	Code string

	reset  bool
	email  dispatch.EmailSender
	sms    dispatch.SMSSender
	appURL string
	logger *slog.Logger
}

// Dispatch sends the SMS and, when the user has an email address, the email.
// Both channels are attempted even if one fails; the joined error reports
// every failure.
func (inv *Invitation) Dispatch(ctx context.Context) error {
	if inv == nil {
		return nil
	}

	var errs []error

	if inv.sms != nil {
		sms := dispatch.InvitationSMS(inv.User.PhoneNumber, inv.User.Name, inv.Code)
		if inv.reset {
			sms = dispatch.PasswordResetSMS(inv.User.PhoneNumber, inv.User.Name, inv.Code)
		}
		if err := inv.sms.SendSMS(ctx, sms); err != nil {
			errs = append(errs, err)
		}
	}

	if inv.email != nil && inv.User.Email != "" {
		email := dispatch.InvitationEmail(inv.appURL, inv.User.Email, inv.User.Name, inv.Code)
		if inv.reset {
			email = dispatch.PasswordResetEmail(inv.User.Email, inv.User.Name, inv.Code)
		}
		if err := inv.email.SendEmail(ctx, email); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		if inv.logger != nil {
			inv.logger.WarnContext(ctx, "invitation delivery failed", "user_id", inv.User.ID, "error", err)
		}
		return err
	}
	return nil
}
