// Package dispatch delivers invitation and password reset messages. Each
// provider has a real client and a logging stand-in; the factories pick the
// logging variant whenever credentials are missing so development installs
// never need provider accounts.
package dispatch

import (
	"fmt"
	"strings"
)

// Email is a rendered message ready for an EmailSender.
type Email struct {
	To        string
	Subject   string
	PlainText string
	HTML      string
}

// SMS is a rendered message ready for an SMSSender.
type SMS struct {
	To   string
	Body string
}

// InvitationEmail renders the welcome email carrying a first-login code.
func InvitationEmail(appURL, email, name, code string) Email {
	loginURL := strings.TrimRight(appURL, "/") + "/login"

	plain := fmt.Sprintf(`Hello %s,

You have been invited to join Camp Share!

To get started, please visit: %s

Your login credentials:
Email: %s
Temporary Password: %s

For security reasons, please change your password after your first login.

If you have any questions, please contact the administrator.

Welcome aboard!
The Camp Share Team
`, name, loginURL, email, code)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Welcome to Camp Share!</h2>
  <p>Hello %s,</p>
  <p>You have been invited to join <strong>Camp Share</strong>!</p>
  <p>To get started, please visit: <a href="%s">%s</a></p>
  <p><strong>Your login credentials:</strong><br>Email: %s<br>Temporary Password: <code>%s</code></p>
  <p><em>For security reasons, please change your password after your first login.</em></p>
  <p>Welcome aboard!<br>The Camp Share Team</p>
</div>`, name, loginURL, loginURL, email, code)

	return Email{
		To:        email,
		Subject:   "Welcome to Camp Share - Invitation",
		PlainText: plain,
		HTML:      html,
	}
}

// PasswordResetEmail renders the reset email carrying a fresh code.
func PasswordResetEmail(email, name, code string) Email {
	plain := fmt.Sprintf(`Hello %s,

We received a request to reset your password for Camp Share.

To reset your password, please use this temporary code: %s

If you didn't request this, you can safely ignore this email.

The Camp Share Team
`, name, code)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Camp Share - Password Reset</h2>
  <p>Hello %s,</p>
  <p>We received a request to reset your password for <strong>Camp Share</strong>.</p>
  <p>To reset your password, please use this temporary code: <code>%s</code></p>
  <p><em>If you didn't request this, you can safely ignore this email.</em></p>
  <p>The Camp Share Team</p>
</div>`, name, code)

	return Email{
		To:        email,
		Subject:   "Camp Share - Password Reset",
		PlainText: plain,
		HTML:      html,
	}
}

// InvitationSMS renders the welcome text carrying a first-login code.
func InvitationSMS(phoneNumber, name, code string) SMS {
	body := fmt.Sprintf(`Hi %s!

You've been invited to join Camp Share.

Use this verification code to login: %s

This code is temporary and will expire after your first login.`, name, code)

	return SMS{To: phoneNumber, Body: body}
}

// PasswordResetSMS renders the reset text carrying a fresh code.
func PasswordResetSMS(phoneNumber, name, code string) SMS {
	body := fmt.Sprintf(`Hi %s!

We received a request to reset your Camp Share access.

Use this verification code to login: %s

If you didn't request this code, please ignore this message.`, name, code)

	return SMS{To: phoneNumber, Body: body}
}
