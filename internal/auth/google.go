package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/quickaid/quickaid/internal/store"
)

// Google resolves a provider-verified profile assertion to an account,
// creating or linking one as needed. The OAuth handshake itself (redirect,
// state check, code exchange, userinfo fetch) is handled by the helpers
// below; Authenticate only sees the finished assertion.
type Google struct {
	Store  *store.Store
	config *oauth2.Config
}

func NewGoogle(s *store.Store, clientID, clientSecret, callbackURL string) *Google {
	return &Google{
		Store: s,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

// AuthCodeURL builds the provider redirect URL for the given state value.
func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// Exchange trades the authorization code for provider tokens.
func (g *Google) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return g.config.Exchange(ctx, code)
}

// FetchProfile retrieves the userinfo profile for an exchanged token.
func (g *Google) FetchProfile(ctx context.Context, tok *oauth2.Token) (*ProfileAssertion, error) {
	svc, err := goauth2.NewService(ctx, option.WithTokenSource(g.config.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("building userinfo service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetching userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("provider profile has no email")
	}
	return &ProfileAssertion{
		Subject:   info.Id,
		Email:     info.Email,
		Name:      info.Name,
		AvatarURL: info.Picture,
	}, nil
}

// Authenticate resolves the assertion by email: an unknown email gets a new
// account, a known one is linked to the provider if it wasn't already. The
// verified-email gate never applies here.
func (g *Google) Authenticate(ctx context.Context, creds Credentials) (*store.Account, error) {
	assertion := creds.Assertion
	if assertion == nil {
		return nil, fmt.Errorf("google strategy requires a profile assertion")
	}

	acct, err := g.Store.FindByEmail(ctx, assertion.Email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return g.createLinked(ctx, assertion)
	case err != nil:
		return nil, err
	}

	if !acct.HasOAuthLink() {
		if err := g.Store.LinkGoogle(ctx, acct.PublicID, assertion.Subject, assertion.AvatarURL); err != nil {
			return nil, err
		}
		return g.Store.FindByPublicID(ctx, acct.PublicID)
	}
	return acct, nil
}

func (g *Google) createLinked(ctx context.Context, assertion *ProfileAssertion) (*store.Account, error) {
	// The placeholder password keeps the schema constraints satisfied but
	// can never pass local signin: nobody knows its plaintext.
	acct, err := g.Store.Create(ctx, assertion.Email, unguessablePassword())
	if err != nil {
		return nil, err
	}

	upd := store.Update{AvatarURL: &assertion.AvatarURL}
	if assertion.Name != "" {
		upd.Name = &assertion.Name
	}
	if _, err := g.Store.Update(ctx, acct.PublicID, upd); err != nil {
		return nil, err
	}
	if err := g.Store.LinkGoogle(ctx, acct.PublicID, assertion.Subject, assertion.AvatarURL); err != nil {
		return nil, err
	}
	return g.Store.FindByPublicID(ctx, acct.PublicID)
}

func unguessablePassword() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
