package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/quickaid/quickaid/internal/auth"
	"github.com/quickaid/quickaid/internal/flow"
	"github.com/quickaid/quickaid/internal/store"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid Email / Password")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	if !emailRegex.MatchString(req.Email) || len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "Invalid Email / Password")
		return
	}

	acct, err := s.Store.Create(r.Context(), req.Email, req.Password)
	if errors.Is(err, store.ErrDuplicateEmail) {
		writeError(w, http.StatusConflict, "Account already exists")
		return
	}
	if err != nil {
		slog.Error("creating account", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	// Signup success does not depend on the verification email making it
	// out; a failed issue is logged and the user can hit resend.
	if _, err := s.Flows.IssueVerification(r.Context(), acct); err != nil {
		slog.Error("issuing verification challenge", "account", acct.PublicID, "err", err)
	}

	writeMessage(w, http.StatusCreated, "Account created. Please check your email to verify your account.")
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid Email / Password")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	if !emailRegex.MatchString(req.Email) || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Invalid Email / Password")
		return
	}

	acct, err := s.Strategies["local"].Authenticate(r.Context(), auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var authErr *auth.Error
		if errors.As(err, &authErr) {
			switch authErr.Reason {
			case auth.ReasonNotFound:
				writeError(w, http.StatusNotFound, "Account not found")
			case auth.ReasonEmailUnverified:
				// distinct, actionable: the client offers the
				// resend-verification flow on this code
				writeError(w, http.StatusForbidden, "Email not verified. Please verify your email to sign in.")
			default:
				writeError(w, http.StatusBadRequest, "Invalid credentials")
			}
			return
		}
		slog.Error("local authentication", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	s.startSession(w, acct, "Sign in successful")
}

// startSession mints a session token, sets the cookie, and writes the
// success envelope.
func (s *Server) startSession(w http.ResponseWriter, acct *store.Account, message string) {
	tok, err := s.Issuer.Issue(acct.PublicID)
	if err != nil {
		slog.Error("issuing session token", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	setSessionCookie(w, tok, s.Issuer.TTL(), s.Secure)
	writeMessage(w, http.StatusOK, message)
}

func (s *Server) handleSignout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, s.Secure)
	writeMessage(w, http.StatusOK, "Sign out successful")
}

func (s *Server) handleWhoami(w http.ResponseWriter, r *http.Request) {
	acct := AccountFrom(r)
	writeData(w, http.StatusOK, map[string]any{"user": accountJSON(acct)})
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "Token required")
		return
	}

	_, err := s.Flows.ConsumeVerification(r.Context(), req.Token)
	switch {
	case errors.Is(err, flow.ErrTokenNotFound):
		writeError(w, http.StatusBadRequest, "Invalid verification token")
	case errors.Is(err, flow.ErrTokenExpired):
		writeError(w, http.StatusBadRequest, "Verification token has expired")
	case err != nil:
		slog.Error("consuming verification token", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	default:
		writeMessage(w, http.StatusOK, "Email verified successfully")
	}
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email required")
		return
	}

	err := s.Flows.ResendVerification(r.Context(), req.Email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Account not found")
	case errors.Is(err, flow.ErrAlreadyVerified):
		writeError(w, http.StatusBadRequest, "Email already verified")
	case err != nil:
		slog.Error("resending verification", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	default:
		writeMessage(w, http.StatusOK, "Verification email sent")
	}
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	// The response is identical whatever happens: this endpoint must not
	// reveal whether an account exists.
	if err := decodeJSON(r, &req); err == nil && req.Email != "" {
		s.Flows.RequestReset(r.Context(), req.Email)
	}
	writeMessage(w, http.StatusOK, "If that email exists, a reset link has been sent")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Token == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Token and password required")
		return
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	err := s.Flows.ConsumeReset(r.Context(), req.Token, strings.TrimSpace(req.Password))
	switch {
	case errors.Is(err, flow.ErrTokenNotFound):
		writeError(w, http.StatusBadRequest, "Invalid reset token")
	case errors.Is(err, flow.ErrTokenExpired):
		writeError(w, http.StatusBadRequest, "Reset token has expired")
	case err != nil:
		slog.Error("consuming reset token", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	default:
		writeMessage(w, http.StatusOK, "Password reset successfully")
	}
}
