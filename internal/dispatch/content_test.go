package dispatch

import (
	"strings"
	"testing"
)

func TestInvitationEmail(t *testing.T) {
	t.Parallel()

	email := InvitationEmail("https://camp.example.org/", "dana@example.org", "Dana", "482913")

	if email.To != "dana@example.org" {
		t.Errorf("To = %q", email.To)
	}
	if email.Subject != "Welcome to Camp Share - Invitation" {
		t.Errorf("Subject = %q", email.Subject)
	}
	for _, want := range []string{"Hello Dana", "482913", "https://camp.example.org/login"} {
		if !strings.Contains(email.PlainText, want) {
			t.Errorf("plain text missing %q", want)
		}
		if !strings.Contains(email.HTML, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestPasswordResetEmail(t *testing.T) {
	t.Parallel()

	email := PasswordResetEmail("dana@example.org", "Dana", "771204")

	if email.Subject != "Camp Share - Password Reset" {
		t.Errorf("Subject = %q", email.Subject)
	}
	if !strings.Contains(email.PlainText, "771204") {
		t.Error("plain text missing the reset code")
	}
	if strings.Contains(email.PlainText, "invited") {
		t.Error("reset email reuses invitation wording")
	}
}

func TestInvitationSMS(t *testing.T) {
	t.Parallel()

	sms := InvitationSMS("+15550003333", "Dana", "482913")

	if sms.To != "+15550003333" {
		t.Errorf("To = %q", sms.To)
	}
	for _, want := range []string{"Hi Dana!", "482913", "invited to join Camp Share"} {
		if !strings.Contains(sms.Body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestPasswordResetSMS(t *testing.T) {
	t.Parallel()

	sms := PasswordResetSMS("+15550003333", "Dana", "771204")

	if !strings.Contains(sms.Body, "reset your Camp Share access") {
		t.Errorf("body = %q", sms.Body)
	}
	if !strings.Contains(sms.Body, "771204") {
		t.Error("body missing the reset code")
	}
}

func TestFactoriesFallBackToLogging(t *testing.T) {
	t.Parallel()

	if _, ok := NewEmailSender("", "noreply@campshare.app", "Camp Share", nil).(*LogEmailSender); !ok {
		t.Error("missing API key did not yield the logging email sender")
	}
	if _, ok := NewSMSSender("", "", "", nil).(*LogSMSSender); !ok {
		t.Error("missing credentials did not yield the logging sms sender")
	}
	if _, ok := NewEmailSender("SG.key", "noreply@campshare.app", "Camp Share", nil).(*SendGridEmailSender); !ok {
		t.Error("configured API key did not yield the SendGrid sender")
	}
	if _, ok := NewSMSSender("AC123", "token", "+15550000000", nil).(*TwilioSMSSender); !ok {
		t.Error("configured credentials did not yield the Twilio sender")
	}
}
