package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quickaid/quickaid/internal/auth"
	"github.com/quickaid/quickaid/internal/flow"
	"github.com/quickaid/quickaid/internal/store"
	"github.com/quickaid/quickaid/internal/token"
)

type nullSender struct{}

func (nullSender) SendVerificationEmail(to, link string) error  { return nil }
func (nullSender) SendPasswordResetEmail(to, link string) error { return nil }

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s := store.New(db)
	require.NoError(t, s.AutoMigrate())

	issuer := token.NewIssuer("test-secret", "quickaid-test", time.Hour)
	flows := &flow.Workflow{Store: s, Mailer: nullSender{}, ClientURL: "http://client.test"}
	google := auth.NewGoogle(s, "client-id", "client-secret", "http://server.test/api/v1/auth/google/callback")

	srv := &Server{
		Store:  s,
		Issuer: issuer,
		Strategies: auth.Strategies{
			"local":  auth.NewLocal(s),
			"google": google,
		},
		Flows:     flows,
		Google:    google,
		Gate:      &Gate{Store: s, Issuer: issuer},
		ClientURL: "http://client.test",
	}
	return srv, s
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func TestSignupVerifySigninJourney(t *testing.T) {
	srv, s := newTestServer(t)
	h := srv.Routes()
	ctx := context.Background()

	creds := map[string]string{"email": "alice@x.com", "password": "Secret123"}

	w := doJSON(t, h, http.MethodPost, "/api/v1/auth/user/signup", creds)
	require.Equal(t, http.StatusCreated, w.Code)

	// a verification challenge was persisted at signup
	acct, err := s.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, acct.EmailVerificationToken)

	// signin before verification is a distinct, actionable failure
	w = doJSON(t, h, http.MethodPost, "/api/v1/auth/user/signin", creds)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, sessionCookie(t, w))

	w = doJSON(t, h, http.MethodPost, "/api/v1/auth/verify-email",
		map[string]string{"token": acct.EmailVerificationToken})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/v1/auth/user/signin", creds)
	require.Equal(t, http.StatusOK, w.Code)

	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	// the cookie's token resolves back to this account
	id, err := srv.Issuer.Validate(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, acct.PublicID, id)

	// and the session works
	w = doJSON(t, h, http.MethodGet, "/api/v1/auth/user/whoami", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var whoami struct {
		Data struct {
			User struct {
				ID    string `json:"id"`
				Email string `json:"email"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &whoami))
	assert.Equal(t, acct.PublicID, whoami.Data.User.ID)
	assert.Equal(t, "alice@x.com", whoami.Data.User.Email)
}

func TestSignupValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"bad email", map[string]string{"email": "not-an-email", "password": "Secret123"}, http.StatusBadRequest},
		{"short password", map[string]string{"email": "a@x.com", "password": "short"}, http.StatusBadRequest},
		{"missing password", map[string]string{"email": "a@x.com"}, http.StatusBadRequest},
		{"ok", map[string]string{"email": "a@x.com", "password": "Secret123"}, http.StatusCreated},
		{"duplicate", map[string]string{"email": "a@x.com", "password": "Secret123"}, http.StatusConflict},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodPost, "/api/v1/auth/user/signup", tc.body)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestSigninFailureKinds(t *testing.T) {
	srv, s := newTestServer(t)
	h := srv.Routes()

	_, err := s.Create(context.Background(), "alice@x.com", "Secret123")
	require.NoError(t, err)

	w := doJSON(t, h, http.MethodPost, "/api/v1/auth/user/signin",
		map[string]string{"email": "ghost@x.com", "password": "Secret123"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/v1/auth/user/signin",
		map[string]string{"email": "alice@x.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForgotPasswordIndistinguishable(t *testing.T) {
	srv, s := newTestServer(t)
	h := srv.Routes()
	ctx := context.Background()

	_, err := s.Create(ctx, "alice@x.com", "Secret123")
	require.NoError(t, err)

	known := doJSON(t, h, http.MethodPost, "/api/v1/auth/forgot-password",
		map[string]string{"email": "alice@x.com"})
	unknown := doJSON(t, h, http.MethodPost, "/api/v1/auth/forgot-password",
		map[string]string{"email": "ghost@x.com"})

	assert.Equal(t, known.Code, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
	assert.Equal(t, http.StatusOK, known.Code)

	// no account materialized for the unknown email
	_, err = s.FindByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResetPasswordJourney(t *testing.T) {
	srv, s := newTestServer(t)
	h := srv.Routes()
	ctx := context.Background()

	acct, err := s.Create(ctx, "alice@x.com", "Secret123")
	require.NoError(t, err)

	w := doJSON(t, h, http.MethodPost, "/api/v1/auth/forgot-password",
		map[string]string{"email": "alice@x.com"})
	require.Equal(t, http.StatusOK, w.Code)

	acct, err = s.FindByPublicID(ctx, acct.PublicID)
	require.NoError(t, err)
	require.NotEmpty(t, acct.PasswordResetToken)

	w = doJSON(t, h, http.MethodPost, "/api/v1/auth/reset-password",
		map[string]string{"token": acct.PasswordResetToken, "password": "NewSecret9"})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := s.FindByPublicID(ctx, acct.PublicID)
	require.NoError(t, err)
	assert.True(t, s.VerifyPassword(got, "NewSecret9"))

	// the consumed token is gone
	w = doJSON(t, h, http.MethodPost, "/api/v1/auth/reset-password",
		map[string]string{"token": acct.PasswordResetToken, "password": "Another999"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGateRejections(t *testing.T) {
	srv, s := newTestServer(t)
	h := srv.Routes()
	ctx := context.Background()

	// no cookie
	w := doJSON(t, h, http.MethodGet, "/api/v1/auth/user/whoami", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// garbage token
	w = doJSON(t, h, http.MethodGet, "/api/v1/auth/user/whoami", nil,
		&http.Cookie{Name: SessionCookieName, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// wrong signing secret
	foreign := token.NewIssuer("other-secret", "quickaid-test", time.Hour)
	tok, err := foreign.Issue("some-id")
	require.NoError(t, err)
	w = doJSON(t, h, http.MethodGet, "/api/v1/auth/user/whoami", nil,
		&http.Cookie{Name: SessionCookieName, Value: tok})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// valid token for an account deleted after issuance
	acct, err := s.Create(ctx, "gone@x.com", "Secret123")
	require.NoError(t, err)
	tok, err = srv.Issuer.Issue(acct.PublicID)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, acct.PublicID))
	w = doJSON(t, h, http.MethodGet, "/api/v1/auth/user/whoami", nil,
		&http.Cookie{Name: SessionCookieName, Value: tok})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func signedInCookie(t *testing.T, srv *Server, s *store.Store, email string) (*http.Cookie, *store.Account) {
	t.Helper()
	acct, err := s.Create(context.Background(), email, "Secret123")
	require.NoError(t, err)
	tok, err := srv.Issuer.Issue(acct.PublicID)
	require.NoError(t, err)
	return &http.Cookie{Name: SessionCookieName, Value: tok}, acct
}

func TestFixedWindowDoesNotReissue(t *testing.T) {
	srv, s := newTestServer(t)
	h := srv.Routes()
	cookie, _ := signedInCookie(t, srv, s, "alice@x.com")

	w := doJSON(t, h, http.MethodGet, "/api/v1/auth/user/whoami", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, sessionCookie(t, w), "fixed-window sessions keep the original expiry")
}

func TestSlidingWindowReissues(t *testing.T) {
	srv, s := newTestServer(t)
	srv.Gate.Sliding = true
	h := srv.Routes()
	cookie, acct := signedInCookie(t, srv, s, "alice@x.com")

	w := doJSON(t, h, http.MethodGet, "/api/v1/auth/user/whoami", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	fresh := sessionCookie(t, w)
	require.NotNil(t, fresh, "sliding sessions renew the cookie on every request")
	id, err := srv.Issuer.Validate(fresh.Value)
	require.NoError(t, err)
	assert.Equal(t, acct.PublicID, id)
}

func TestSignoutClearsCookie(t *testing.T) {
	srv, s := newTestServer(t)
	h := srv.Routes()
	cookie, _ := signedInCookie(t, srv, s, "alice@x.com")

	w := doJSON(t, h, http.MethodGet, "/api/v1/auth/user/signout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	cleared := sessionCookie(t, w)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// no session at all is a 401
	w = doJSON(t, h, http.MethodGet, "/api/v1/auth/user/signout", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOnboardAndAccountLifecycle(t *testing.T) {
	srv, s := newTestServer(t)
	h := srv.Routes()
	ctx := context.Background()
	cookie, acct := signedInCookie(t, srv, s, "alice@x.com")

	// incomplete onboarding payload
	w := doJSON(t, h, http.MethodPost, "/api/v1/onboard/user",
		map[string]string{"name": "Alice"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/v1/onboard/user", map[string]string{
		"name": "Alice", "phone": "+1-555-0100", "dob": "1990-04-01", "address": "1 Main St",
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := s.FindByPublicID(ctx, acct.PublicID)
	require.NoError(t, err)
	assert.True(t, got.Onboarded())
	assert.Equal(t, "Alice", got.Name)

	// partial profile update leaves other fields alone
	w = doJSON(t, h, http.MethodPut, "/api/v1/account/user/update",
		map[string]string{"gender": "female"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	got, err = s.FindByPublicID(ctx, acct.PublicID)
	require.NoError(t, err)
	assert.Equal(t, "female", got.Gender)
	assert.Equal(t, "Alice", got.Name)

	w = doJSON(t, h, http.MethodPut, "/api/v1/account/user/update",
		map[string]string{"gender": "invalid"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// deletion cascades into the community posts
	_, err = s.CreatePost(ctx, acct.PublicID, "my first post")
	require.NoError(t, err)
	other, err := s.Create(ctx, "bob@x.com", "Secret123")
	require.NoError(t, err)
	bobPost, err := s.CreatePost(ctx, other.PublicID, "bob's post")
	require.NoError(t, err)
	require.NoError(t, s.LikePost(ctx, bobPost.ID, acct.PublicID))

	w = doJSON(t, h, http.MethodDelete, "/api/v1/account/user/delete", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	cleared := sessionCookie(t, w)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)

	_, err = s.FindByPublicID(ctx, acct.PublicID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	posts, err := s.AllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Empty(t, []string(posts[0].LikedBy))
}

func TestGoogleCallbackStateMismatch(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=forged&code=x", nil)
	req.AddCookie(&http.Cookie{Name: "oauthstate", Value: "real"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "http://client.test/auth/signin", w.Header().Get("Location"))
}

func TestGoogleRedirectSetsState(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", loc.Host)

	var state string
	for _, c := range w.Result().Cookies() {
		if c.Name == "oauthstate" {
			state = c.Value
		}
	}
	require.NotEmpty(t, state)
	assert.Equal(t, state, loc.Query().Get("state"))
}

func TestResendVerification(t *testing.T) {
	srv, s := newTestServer(t)
	h := srv.Routes()
	ctx := context.Background()

	w := doJSON(t, h, http.MethodPost, "/api/v1/auth/resend-verification",
		map[string]string{"email": "ghost@x.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	acct, err := s.Create(ctx, "alice@x.com", "Secret123")
	require.NoError(t, err)

	w = doJSON(t, h, http.MethodPost, "/api/v1/auth/resend-verification",
		map[string]string{"email": "alice@x.com"})
	assert.Equal(t, http.StatusOK, w.Code)

	acct, err = s.FindByPublicID(ctx, acct.PublicID)
	require.NoError(t, err)
	require.NotEmpty(t, acct.EmailVerificationToken)
	_, err = srv.Flows.ConsumeVerification(ctx, acct.EmailVerificationToken)
	require.NoError(t, err)

	w = doJSON(t, h, http.MethodPost, "/api/v1/auth/resend-verification",
		map[string]string{"email": "alice@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "already verified")
}
