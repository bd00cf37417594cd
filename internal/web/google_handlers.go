package web

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/quickaid/quickaid/internal/auth"
)

const oauthStateCookie = "oauthstate"

func generateStateCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(10 * time.Minute),
		MaxAge:   600,
	})
	return state
}

// handleGoogle starts the OAuth handshake: set a state cookie and bounce the
// browser to the provider.
func (s *Server) handleGoogle(w http.ResponseWriter, r *http.Request) {
	state := generateStateCookie(w)
	http.Redirect(w, r, s.Google.AuthCodeURL(state), http.StatusFound)
}

// handleGoogleCallback finishes the handshake. Provider-side failures send
// the browser back to the signin page rather than surfacing JSON errors.
func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	fail := func(why string, err error) {
		slog.Warn("google callback failed", "why", why, "err", err)
		http.Redirect(w, r, s.ClientURL+"/auth/signin", http.StatusTemporaryRedirect)
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		fail("state mismatch", err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		fail("missing code", nil)
		return
	}

	tok, err := s.Google.Exchange(r.Context(), code)
	if err != nil {
		fail("code exchange", err)
		return
	}

	assertion, err := s.Google.FetchProfile(r.Context(), tok)
	if err != nil {
		fail("userinfo fetch", err)
		return
	}

	acct, err := s.Strategies["google"].Authenticate(r.Context(), auth.Credentials{Assertion: assertion})
	if err != nil {
		fail("resolving account", err)
		return
	}

	sessionTok, err := s.Issuer.Issue(acct.PublicID)
	if err != nil {
		fail("issuing session token", err)
		return
	}
	setSessionCookie(w, sessionTok, s.Issuer.TTL(), s.Secure)

	// accounts that never completed onboarding land on the onboarding form
	target := s.ClientURL + "/user/dashboard"
	if !acct.Onboarded() {
		target = s.ClientURL + "/onboard/user"
	}
	http.Redirect(w, r, target, http.StatusFound)
}
