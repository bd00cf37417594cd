package auth

import (
	"context"
	"errors"

	"github.com/quickaid/quickaid/internal/store"
)

// Local authenticates email+password against the credential store.
type Local struct {
	Store *store.Store
}

func NewLocal(s *store.Store) *Local {
	return &Local{Store: s}
}

// Authenticate looks the account up by email, compares the password, and
// enforces the verified-email gate for accounts without an OAuth link.
// Accounts that came in through OAuth had their email vouched for by the
// provider and skip the gate.
func (l *Local) Authenticate(ctx context.Context, creds Credentials) (*store.Account, error) {
	acct, err := l.Store.FindByEmail(ctx, creds.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, failed(ReasonNotFound, "Account not found")
	}
	if err != nil {
		return nil, err
	}

	if !l.Store.VerifyPassword(acct, creds.Password) {
		return nil, failed(ReasonBadPassword, "Invalid credentials")
	}

	if !acct.HasOAuthLink() && !acct.EmailVerified {
		return nil, failed(ReasonEmailUnverified, "Email not verified")
	}

	return acct, nil
}
