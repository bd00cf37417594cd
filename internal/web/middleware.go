package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/quickaid/quickaid/internal/store"
	"github.com/quickaid/quickaid/internal/token"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "jwt"

type contextKey int

const accountContextKey contextKey = 0

// Gate is the single enforcement point for protected routes: it extracts the
// session cookie, validates the token, loads the account, and attaches it to
// the request context, or rejects the request.
type Gate struct {
	Store  *store.Store
	Issuer *token.Issuer

	// Sliding re-issues a fresh cookie on every successful validation,
	// renewing the 12h window. When false (the default) the expiry set at
	// signin is final.
	Sliding bool

	// Secure marks session cookies Secure (production).
	Secure bool
}

// Require wraps a handler with the session check.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		accountID, err := g.Issuer.Validate(cookie.Value)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		acct, err := g.Store.FindByPublicID(r.Context(), accountID)
		if errors.Is(err, store.ErrNotFound) {
			// token outlived the account
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			slog.Error("loading account for session", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		if g.Sliding {
			if fresh, err := g.Issuer.Issue(acct.PublicID); err == nil {
				setSessionCookie(w, fresh, g.Issuer.TTL(), g.Secure)
			} else {
				slog.Warn("re-issuing session token", "err", err)
			}
		}

		ctx := context.WithValue(r.Context(), accountContextKey, acct)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccountFrom returns the authenticated account the gate attached, or nil on
// an unprotected route.
func AccountFrom(r *http.Request) *store.Account {
	acct, _ := r.Context().Value(accountContextKey).(*store.Account)
	return acct
}
