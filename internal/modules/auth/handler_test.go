package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ummachristians-netizen/umma-christians/internal/config"
	"github.com/ummachristians-netizen/umma-christians/internal/middleware"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/auth/gate"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/render"
)

type testEnv struct {
	router   *gin.Engine
	sessions *Sessions
	states   *StateBus
	changes  []StateChange
}

func newTestEnv(t *testing.T, limit int) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider, _ := newLocal(t)
	if _, err := provider.CreateAccount(context.Background(), "office@church.org", "secret1"); err != nil {
		t.Fatal(err)
	}
	sessions, _ := newSessions(t, config.PersistenceLocal)
	renderer, err := render.New(time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	env := &testEnv{router: gin.New(), sessions: sessions, states: NewStateBus(nil, nil)}
	env.states.Subscribe(func(c StateChange) { env.changes = append(env.changes, c) })

	h := NewHandler(provider, sessions, env.states, renderer, nil)
	limiter := middleware.RateLimit(middleware.NewMemoryCounter(), "signin", limit, time.Minute, h.RateLimited)
	h.RegisterRoutes(env.router, limiter)
	return env
}

func (e *testEnv) form(path string, values url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) json(path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	var out map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestSignInFormRedirectsToDashboard(t *testing.T) {
	env := newTestEnv(t, 100)
	rec := env.form("/office/login", url.Values{"email": {"office@church.org"}, "password": {"secret1"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != gate.DashboardPath {
		t.Fatalf("status %d location %q", rec.Code, rec.Header().Get("Location"))
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Fatal("no session cookie set")
	}
	if len(env.changes) != 1 || env.changes[0].State != gate.SignedIn {
		t.Errorf("state changes = %+v", env.changes)
	}

	// A signed-in visit to the login page bounces to the dashboard.
	req := httptest.NewRequest(http.MethodGet, "/office/login", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	page := httptest.NewRecorder()
	env.router.ServeHTTP(page, req)
	if page.Code != http.StatusSeeOther || page.Header().Get("Location") != gate.DashboardPath {
		t.Errorf("login page for signed-in user: %d %q", page.Code, page.Header().Get("Location"))
	}
}

func TestSignInJSONErrors(t *testing.T) {
	env := newTestEnv(t, 100)
	rec, body := env.json("/office/login", CredentialsDTO{Email: "office@church.org", Password: "nope"})
	if rec.Code != http.StatusUnauthorized || body["message"] != "Wrong password." {
		t.Fatalf("status %d body %v", rec.Code, body)
	}
	rec, body = env.json("/office/login", CredentialsDTO{Email: "bad", Password: "x"})
	if rec.Code != http.StatusBadRequest || body["message"] != "Invalid email format." {
		t.Fatalf("status %d body %v", rec.Code, body)
	}
}

func TestSignInFormErrorRendersLoginPage(t *testing.T) {
	env := newTestEnv(t, 100)
	rec := env.form("/office/login", url.Values{"email": {"ghost@church.org"}, "password": {"secret1"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No account found for this email.") {
		t.Errorf("login page missing status:\n%s", rec.Body.String())
	}
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t, 100)
	rec, body := env.json("/office/register", CredentialsDTO{Email: "new@church.org"})
	if rec.Code != http.StatusBadRequest || body["message"] != StatusNeedCredentials {
		t.Fatalf("missing password: %d %v", rec.Code, body)
	}
	rec, body = env.json("/office/register", CredentialsDTO{Email: "new@church.org", Password: "secret1"})
	if rec.Code != http.StatusOK || body["message"] != StatusAccountCreated {
		t.Fatalf("create: %d %v", rec.Code, body)
	}
	rec, body = env.json("/office/register", CredentialsDTO{Email: "new@church.org", Password: "secret1"})
	if rec.Code != http.StatusConflict || body["message"] != "This email is already in use." {
		t.Fatalf("duplicate: %d %v", rec.Code, body)
	}
}

func TestReset(t *testing.T) {
	env := newTestEnv(t, 100)
	rec, body := env.json("/office/reset", CredentialsDTO{})
	if rec.Code != http.StatusBadRequest || body["message"] != StatusNeedResetEmail {
		t.Fatalf("empty email: %d %v", rec.Code, body)
	}
	rec, body = env.json("/office/reset", CredentialsDTO{Email: "office@church.org"})
	if rec.Code != http.StatusOK || body["message"] != StatusResetSent {
		t.Fatalf("reset: %d %v", rec.Code, body)
	}
	rec, body = env.json("/office/reset/confirm", ResetConfirmDTO{Token: "forged", Password: "secret9"})
	if rec.Code != http.StatusUnauthorized || body["message"] != Message(CodeInvalidActionCode) {
		t.Fatalf("forged token: %d %v", rec.Code, body)
	}
}

func TestLogoutPublishesSignedOut(t *testing.T) {
	env := newTestEnv(t, 100)
	login := env.form("/office/login", url.Values{"email": {"office@church.org"}, "password": {"secret1"}})
	cookie := login.Result().Cookies()[0]

	rec := env.form("/office/logout", nil, cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != gate.LoginPath {
		t.Fatalf("logout: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	last := env.changes[len(env.changes)-1]
	if last.State != gate.SignedOut {
		t.Errorf("last change = %+v", last)
	}

	req := httptest.NewRequest(http.MethodGet, "/office/login", nil)
	req.AddCookie(cookie)
	if s, _ := env.sessions.Resolve(req); s != nil {
		t.Error("session survived logout")
	}
}

func TestSignInRateLimited(t *testing.T) {
	env := newTestEnv(t, 2)
	for i := 0; i < 2; i++ {
		env.json("/office/login", CredentialsDTO{Email: "office@church.org", Password: "nope"})
	}
	rec, body := env.json("/office/login", CredentialsDTO{Email: "office@church.org", Password: "secret1"})
	if rec.Code != http.StatusTooManyRequests || body["message"] != "Too many attempts. Try again later." {
		t.Fatalf("status %d body %v", rec.Code, body)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}
