package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ummachristians-netizen/umma-christians/internal/config"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/auth/gate"
	"github.com/ummachristians-netizen/umma-christians/internal/pkg/jwt"
	sessionpkg "github.com/ummachristians-netizen/umma-christians/internal/pkg/session"
)

func TestMessage(t *testing.T) {
	cases := map[string]string{
		CodeInvalidEmail:        "Invalid email format.",
		CodeUserNotFound:        "No account found for this email.",
		CodeWrongPassword:       "Wrong password.",
		CodeInvalidCredential:   "Invalid email or password.",
		CodeTooManyRequests:     "Too many attempts. Try again later.",
		CodeNetworkFailed:       "Network error. Check internet connection.",
		CodeEmailInUse:          "This email is already in use.",
		CodeWeakPassword:        "Password is too weak (minimum 6 characters).",
		CodeOperationNotAllowed: "Email/password sign-in is not enabled in Firebase Auth.",
		"auth/something-else":   FallbackMessage,
		"":                      FallbackMessage,
	}
	for code, want := range cases {
		if got := Message(code); got != want {
			t.Errorf("Message(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestCode(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), newError(CodeWrongPassword, nil))
	if got := Code(wrapped); got != CodeWrongPassword {
		t.Errorf("Code = %q", got)
	}
	if got := Code(errors.New("plain")); got != CodeInternal {
		t.Errorf("Code(plain) = %q", got)
	}
}

func TestToolkitCode(t *testing.T) {
	cases := map[string]string{
		"EMAIL_NOT_FOUND":                 CodeUserNotFound,
		"INVALID_PASSWORD":                CodeWrongPassword,
		"INVALID_LOGIN_CREDENTIALS":       CodeInvalidCredential,
		"WEAK_PASSWORD : Too short":       CodeWeakPassword,
		"TOO_MANY_ATTEMPTS_TRY_LATER : x": CodeTooManyRequests,
		"EMAIL_EXISTS":                    CodeEmailInUse,
		"SOMETHING_NEW":                   CodeInternal,
	}
	for msg, want := range cases {
		if got := toolkitCode(msg); got != want {
			t.Errorf("toolkitCode(%q) = %q, want %q", msg, got, want)
		}
	}
}

func fakeToolkit(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "web-key" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API_KEY_INVALID"}}`))
			return
		}
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch {
		case strings.HasSuffix(r.URL.Path, "accounts:signInWithPassword"):
			if body["password"] != "hunter22" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":400,"message":"INVALID_LOGIN_CREDENTIALS"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"localId":"uid-1","email":"office@church.org","idToken":"x"}`))
		case strings.HasSuffix(r.URL.Path, "accounts:signUp"):
			_, _ = w.Write([]byte(`{"localId":"uid-2","email":"new@church.org"}`))
		case strings.HasSuffix(r.URL.Path, "accounts:sendOobCode"):
			if body["requestType"] != "PASSWORD_RESET" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"email":"office@church.org"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFirebaseProvider(t *testing.T) {
	srv := fakeToolkit(t)
	p := NewFirebaseProvider("web-key", nil).WithEndpoint(srv.URL)
	ctx := context.Background()

	id, err := p.SignIn(ctx, " office@church.org ", "hunter22")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if id.UID != "uid-1" || id.Email != "office@church.org" {
		t.Errorf("identity = %+v", id)
	}

	_, err = p.SignIn(ctx, "office@church.org", "nope")
	if Code(err) != CodeInvalidCredential {
		t.Errorf("bad password code = %q", Code(err))
	}

	id, err = p.CreateAccount(ctx, "new@church.org", "secret1")
	if err != nil || id.UID != "uid-2" {
		t.Fatalf("CreateAccount = %+v, %v", id, err)
	}
	if _, err := p.CreateAccount(ctx, "new@church.org", "123"); Code(err) != CodeWeakPassword {
		t.Errorf("weak password code = %q", Code(err))
	}

	if err := p.SendPasswordReset(ctx, "office@church.org"); err != nil {
		t.Errorf("SendPasswordReset: %v", err)
	}
}

func TestFirebaseProviderNetworkError(t *testing.T) {
	srv := fakeToolkit(t)
	p := NewFirebaseProvider("web-key", nil).WithEndpoint(srv.URL)
	srv.Close()
	_, err := p.SignIn(context.Background(), "office@church.org", "hunter22")
	if Code(err) != CodeNetworkFailed {
		t.Errorf("code = %q, want network failure", Code(err))
	}
}

func TestFirebaseProviderWithoutKey(t *testing.T) {
	_, err := NewFirebaseProvider("", nil).SignIn(context.Background(), "a@b.org", "x")
	if Code(err) != CodeOperationNotAllowed {
		t.Errorf("code = %q", Code(err))
	}
}

func newLocal(t *testing.T) (*LocalProvider, *sessionpkg.MemoryStore) {
	t.Helper()
	tokens := sessionpkg.NewMemoryStore()
	p := NewLocalProvider(NewMemoryUsers(), tokens, nil, "http://localhost:8080/", nil)
	p.cost = 4
	return p, tokens
}

func TestLocalProviderAccounts(t *testing.T) {
	p, _ := newLocal(t)
	ctx := context.Background()

	if _, err := p.CreateAccount(ctx, "not-an-email", "secret1"); Code(err) != CodeInvalidEmail {
		t.Errorf("invalid email code = %q", Code(err))
	}
	if _, err := p.CreateAccount(ctx, "office@church.org", "12345"); Code(err) != CodeWeakPassword {
		t.Errorf("weak password code = %q", Code(err))
	}
	created, err := p.CreateAccount(ctx, "Office@Church.org", "secret1")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if created.Email != "office@church.org" {
		t.Errorf("email not normalized: %q", created.Email)
	}
	if _, err := p.CreateAccount(ctx, "office@church.org", "secret2"); Code(err) != CodeEmailInUse {
		t.Errorf("duplicate code = %q", Code(err))
	}

	if _, err := p.SignIn(ctx, "missing@church.org", "secret1"); Code(err) != CodeUserNotFound {
		t.Errorf("missing user code = %q", Code(err))
	}
	if _, err := p.SignIn(ctx, "office@church.org", "wrong!"); Code(err) != CodeWrongPassword {
		t.Errorf("wrong password code = %q", Code(err))
	}
	id, err := p.SignIn(ctx, "office@church.org", "secret1")
	if err != nil || id.UID != created.UID {
		t.Fatalf("SignIn = %+v, %v", id, err)
	}
}

func TestLocalProviderPasswordReset(t *testing.T) {
	p, tokens := newLocal(t)
	ctx := context.Background()
	created, _ := p.CreateAccount(ctx, "office@church.org", "secret1")

	if err := p.SendPasswordReset(ctx, "nobody@church.org"); Code(err) != CodeUserNotFound {
		t.Errorf("unknown email code = %q", Code(err))
	}
	if err := p.SendPasswordReset(ctx, "office@church.org"); err != nil {
		t.Fatalf("SendPasswordReset: %v", err)
	}

	// Plant a known token alongside the mailed one.
	if err := tokens.PutToken(ctx, resetTokenPrefix+"known", created.UID, time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := p.ConfirmPasswordReset(ctx, "known", "123"); Code(err) != CodeWeakPassword {
		t.Errorf("weak reset code = %q", Code(err))
	}
	if err := p.ConfirmPasswordReset(ctx, "known", "brand-new"); err != nil {
		t.Fatalf("ConfirmPasswordReset: %v", err)
	}
	if err := p.ConfirmPasswordReset(ctx, "known", "brand-new"); Code(err) != CodeInvalidActionCode {
		t.Errorf("reused token code = %q", Code(err))
	}
	if _, err := p.SignIn(ctx, "office@church.org", "brand-new"); err != nil {
		t.Errorf("sign in with new password: %v", err)
	}
}

func newSessions(t *testing.T, persistence string) (*Sessions, *sessionpkg.MemoryStore) {
	t.Helper()
	signer, err := jwt.NewSigner("test-secret")
	if err != nil {
		t.Fatal(err)
	}
	store := sessionpkg.NewMemoryStore()
	return NewSessions(signer, store, config.SessionConfig{CookieName: "church_session", Persistence: persistence}), store
}

func TestSessionsLifecycle(t *testing.T) {
	s, _ := newSessions(t, config.PersistenceLocal)
	rec := httptest.NewRecorder()
	sess, err := s.Start(context.Background(), rec, &Identity{UID: "uid", Email: "office@church.org"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	cookie := rec.Result().Cookies()[0]
	if cookie.MaxAge != int(sessionpkg.PersistentTTL.Seconds()) || !cookie.HttpOnly {
		t.Errorf("cookie = %+v", cookie)
	}

	req := httptest.NewRequest(http.MethodGet, "/office", nil)
	req.AddCookie(cookie)
	got, err := s.Resolve(req)
	if err != nil || got == nil || got.ID != sess.ID {
		t.Fatalf("Resolve = %+v, %v", got, err)
	}
	fromHeader, _ := s.ResolveCookieHeader(context.Background(), "other=1; church_session="+cookie.Value)
	if fromHeader == nil || fromHeader.ID != sess.ID {
		t.Error("ResolveCookieHeader did not find the session")
	}

	ended, err := s.End(httptest.NewRecorder(), req)
	if err != nil || ended == nil || ended.ID != sess.ID {
		t.Fatalf("End = %+v, %v", ended, err)
	}
	if got, _ := s.Resolve(req); got != nil {
		t.Error("session still resolves after End")
	}
}

func TestSessionPersistenceCookie(t *testing.T) {
	s, _ := newSessions(t, config.PersistenceSession)
	rec := httptest.NewRecorder()
	if _, err := s.Start(context.Background(), rec, &Identity{UID: "uid"}); err != nil {
		t.Fatal(err)
	}
	if c := rec.Result().Cookies()[0]; c.MaxAge != 0 {
		t.Errorf("browser-session cookie has MaxAge %d", c.MaxAge)
	}
}

func TestStateBus(t *testing.T) {
	bus := NewStateBus(nil, nil)
	var got []StateChange
	cancel := bus.Subscribe(func(c StateChange) { got = append(got, c) })
	bus.Publish(context.Background(), StateChange{SessionID: "s1", State: gate.SignedOut})
	cancel()
	cancel()
	bus.Publish(context.Background(), StateChange{SessionID: "s2", State: gate.SignedIn})
	if len(got) != 1 || got[0].SessionID != "s1" {
		t.Errorf("received %+v", got)
	}
}
