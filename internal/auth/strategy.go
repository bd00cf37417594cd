// Package auth holds the identity-provider strategies. Each strategy resolves
// a set of credentials to a stored account; the web layer picks a strategy by
// name from an explicit map built at construction time.
package auth

import (
	"context"

	"github.com/quickaid/quickaid/internal/store"
)

// ProfileAssertion is a provider-verified profile, produced by a completed
// OAuth handshake. By the time one of these exists, the provider has already
// authenticated the user and vouched for the email.
type ProfileAssertion struct {
	Subject   string // provider's stable subject id
	Email     string
	Name      string
	AvatarURL string
}

// Credentials carries the input of either strategy: Email+Password for
// local, Assertion for federated.
type Credentials struct {
	Email    string
	Password string

	Assertion *ProfileAssertion
}

// Strategy authenticates credentials against the credential store. Failures
// that are the caller's fault come back as *Error; anything else is an
// internal fault.
type Strategy interface {
	Authenticate(ctx context.Context, creds Credentials) (*store.Account, error)
}

// Strategies maps provider name ("local", "google") to its strategy.
type Strategies map[string]Strategy
