package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quickaid/quickaid/internal/store"
)

// RequestReset starts a password-reset challenge for the given email. It
// returns nil whether or not the email matches an account: the caller's
// response must be indistinguishable in both cases, so the endpoint cannot
// be used to enumerate accounts. When there is no match, no token is
// generated and no email is sent.
func (w *Workflow) RequestReset(ctx context.Context, email string) error {
	acct, err := w.Store.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		slog.Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		slog.Error("looking up account for password reset", "err", err)
		return nil
	}

	tok, err := GenerateSecureToken()
	if err != nil {
		slog.Error("generating reset token", "err", err)
		return nil
	}
	expiry := time.Now().Add(ResetExpiry)
	if err := w.Store.SetResetChallenge(ctx, acct.PublicID, tok, expiry); err != nil {
		slog.Error("persisting reset token", "err", err)
		return nil
	}

	link := fmt.Sprintf("%s/auth/reset-password?token=%s", w.ClientURL, tok)
	to := acct.Email
	go func() {
		if err := w.Mailer.SendPasswordResetEmail(to, link); err != nil {
			slog.Error("sending reset email", "to", to, "err", err)
		}
	}()
	return nil
}

// ConsumeReset validates a reset token and applies the new password. The
// password write and the token clear are one conditional store update, so a
// token consumed concurrently succeeds exactly once.
func (w *Workflow) ConsumeReset(ctx context.Context, token, newPassword string) error {
	acct, err := w.Store.FindByResetToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return ErrTokenNotFound
	}
	if err != nil {
		return err
	}

	if acct.PasswordResetExpiry == nil || time.Now().After(*acct.PasswordResetExpiry) {
		return ErrTokenExpired
	}

	err = w.Store.ConsumeResetToken(ctx, token, newPassword)
	if errors.Is(err, store.ErrNotFound) {
		return ErrTokenNotFound
	}
	return err
}
