package mailer

import (
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPSender delivers emails through an SMTP relay.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s *SMTPSender) SendVerificationEmail(to, verificationLink string) error {
	html := verificationHTML(verificationLink)
	return s.send(to, "Verify Your Email - QuickAid", html)
}

func (s *SMTPSender) SendPasswordResetEmail(to, resetLink string) error {
	html := passwordResetHTML(resetLink)
	return s.send(to, "Reset Your Password - QuickAid", html)
}

func (s *SMTPSender) send(to, subject, html string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	client, err := mail.NewClient(s.Host,
		mail.WithPort(s.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.Username),
		mail.WithPassword(s.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSend(msg)
}

func verificationHTML(link string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
      <div style="background-color: #1f2937; color: white; padding: 20px; text-align: center;">
        <h1>Welcome to QuickAid</h1>
      </div>
      <div style="background-color: #f9fafb; padding: 30px;">
        <h2>Verify Your Email</h2>
        <p>Hi there!</p>
        <p>Thanks for signing up for QuickAid. Click the button below to verify your email address:</p>
        <div style="text-align: center;">
          <a href="%[1]s" style="display: inline-block; background-color: #ef4444; color: white; padding: 12px 30px; text-decoration: none; border-radius: 6px;">Verify Email</a>
        </div>
        <p>If the button doesn't work, copy and paste this link into your browser:</p>
        <p style="background-color: #e5e7eb; padding: 10px; word-break: break-all;">%[1]s</p>
        <p><strong>This verification link will expire in 24 hours.</strong></p>
        <p>Best regards,<br>The QuickAid Team</p>
      </div>
    </div>
  </body>
</html>`, link)
}

func passwordResetHTML(link string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
      <div style="background-color: #1f2937; color: white; padding: 20px; text-align: center;">
        <h1>Password Reset - QuickAid</h1>
      </div>
      <div style="background-color: #f9fafb; padding: 30px;">
        <h2>Reset Your Password</h2>
        <p>Hi there!</p>
        <p>We received a request to reset your password for your QuickAid account. Click the button below to reset it:</p>
        <div style="text-align: center;">
          <a href="%[1]s" style="display: inline-block; background-color: #ef4444; color: white; padding: 12px 30px; text-decoration: none; border-radius: 6px;">Reset Password</a>
        </div>
        <p>If the button doesn't work, copy and paste this link into your browser:</p>
        <p style="background-color: #e5e7eb; padding: 10px; word-break: break-all;">%[1]s</p>
        <p><strong>This password reset link will expire in 1 hour.</strong></p>
        <p>If you didn't request a password reset, you can safely ignore this email. Your password will remain unchanged.</p>
        <p>Best regards,<br>The QuickAid Team</p>
      </div>
    </div>
  </body>
</html>`, link)
}
