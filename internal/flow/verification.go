// Package flow implements the two single-use-token workflows: email
// ownership verification and password reset. Both share one token generation
// primitive and both rely on the store's conditional update for single-use
// semantics under concurrency.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quickaid/quickaid/internal/mailer"
	"github.com/quickaid/quickaid/internal/store"
)

var (
	ErrTokenNotFound   = errors.New("token not found")
	ErrTokenExpired    = errors.New("token expired")
	ErrAlreadyVerified = errors.New("email already verified")
)

// Workflow drives verification and reset against the store, sending the
// challenge emails through the configured sender.
type Workflow struct {
	Store  *store.Store
	Mailer mailer.Sender

	// ClientURL is the web client base; token links embed into its pages.
	ClientURL string
}

// IssueVerification starts (or restarts) an email-verification challenge.
// Any prior unconsumed token is overwritten and stops working immediately.
// The email send happens off the request path; delivery failure is logged
// and never fails the caller.
func (w *Workflow) IssueVerification(ctx context.Context, acct *store.Account) (string, error) {
	tok, err := GenerateSecureToken()
	if err != nil {
		return "", err
	}
	expiry := time.Now().Add(VerificationExpiry)
	if err := w.Store.SetVerificationChallenge(ctx, acct.PublicID, tok, expiry); err != nil {
		return "", err
	}

	link := fmt.Sprintf("%s/auth/verify-email?token=%s", w.ClientURL, tok)
	email := acct.Email
	go func() {
		if err := w.Mailer.SendVerificationEmail(email, link); err != nil {
			slog.Error("sending verification email", "to", email, "err", err)
		}
	}()
	return tok, nil
}

// ConsumeVerification validates and consumes a verification token. An
// expired token is reported but deliberately left in place; it stays visible
// until a resend overwrites it.
func (w *Workflow) ConsumeVerification(ctx context.Context, token string) (*store.Account, error) {
	acct, err := w.Store.FindByVerificationToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	if acct.EmailVerificationExpiry == nil || time.Now().After(*acct.EmailVerificationExpiry) {
		return nil, ErrTokenExpired
	}

	acct, err = w.Store.ConsumeVerificationToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		// a concurrent consumer got there first
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// ResendVerification issues a fresh challenge for an unverified account.
// Returns store.ErrNotFound for an unknown email and ErrAlreadyVerified when
// there is nothing left to verify, so callers avoid redundant sends.
func (w *Workflow) ResendVerification(ctx context.Context, email string) error {
	acct, err := w.Store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if acct.EmailVerified {
		return ErrAlreadyVerified
	}
	_, err = w.IssueVerification(ctx, acct)
	return err
}
