// Package web wires the auth surface: HTTP handlers, routing, and the
// session-gate middleware protecting everything downstream.
package web

import (
	"net/http"
	"regexp"

	"github.com/gorilla/mux"

	"github.com/quickaid/quickaid/internal/auth"
	"github.com/quickaid/quickaid/internal/flow"
	"github.com/quickaid/quickaid/internal/store"
	"github.com/quickaid/quickaid/internal/token"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const minPasswordLength = 8

// Server orchestrates the auth components behind the public endpoints. The
// strategy map is injected here at construction; there is no process-wide
// registry.
type Server struct {
	Store      *store.Store
	Issuer     *token.Issuer
	Strategies auth.Strategies
	Flows      *flow.Workflow
	Gate       *Gate

	// Google handles the OAuth handshake mechanics (redirect URL, code
	// exchange, userinfo fetch). Its Authenticate side is reached through
	// Strategies["google"].
	Google *auth.Google

	// ClientURL is where browser-facing redirects land.
	ClientURL string
	Secure    bool
}

// Routes builds the /api/v1 router.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	a := api.PathPrefix("/auth").Subrouter()
	a.HandleFunc("/user/signup", s.handleSignup).Methods(http.MethodPost)
	a.HandleFunc("/user/signin", s.handleSignin).Methods(http.MethodPost)
	a.Handle("/user/signout", s.Gate.Require(http.HandlerFunc(s.handleSignout))).Methods(http.MethodGet)
	a.Handle("/user/whoami", s.Gate.Require(http.HandlerFunc(s.handleWhoami))).Methods(http.MethodGet)

	a.HandleFunc("/google", s.handleGoogle).Methods(http.MethodGet)
	a.HandleFunc("/google/callback", s.handleGoogleCallback).Methods(http.MethodGet)

	a.HandleFunc("/verify-email", s.handleVerifyEmail).Methods(http.MethodPost)
	a.HandleFunc("/resend-verification", s.handleResendVerification).Methods(http.MethodPost)
	a.HandleFunc("/forgot-password", s.handleForgotPassword).Methods(http.MethodPost)
	a.HandleFunc("/reset-password", s.handleResetPassword).Methods(http.MethodPost)

	account := api.PathPrefix("/account").Subrouter()
	account.Use(s.Gate.Require)
	account.HandleFunc("/user/view", s.handleViewAccount).Methods(http.MethodGet)
	account.HandleFunc("/user/update", s.handleUpdateAccount).Methods(http.MethodPut)
	account.HandleFunc("/user/delete", s.handleDeleteAccount).Methods(http.MethodDelete)

	onboard := api.PathPrefix("/onboard").Subrouter()
	onboard.Use(s.Gate.Require)
	onboard.HandleFunc("/user", s.handleOnboard).Methods(http.MethodPost)

	return r
}
