package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ummachristians-netizen/umma-christians/internal/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg, err := config.Parse([]byte(`
port: 9000
backends:
  documents: memory
  realtime: memory
  auth: local
redis:
  enable: false
paths:
  static: ` + filepath.Join(t.TempDir(), "missing") + `
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	a, err := New(zap.NewNop(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Shutdown)
	return a
}

func serve(a *App, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if strings.Contains(path, "/api/") {
		req.Header.Set("Accept", "application/json")
	}
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	return rec
}

func TestAppRoutes(t *testing.T) {
	a := newTestApp(t)
	if a.Addr() != ":9000" {
		t.Errorf("addr = %q", a.Addr())
	}

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/bridge", http.StatusOK},
		{http.MethodGet, "/api/site/programs", http.StatusOK},
		{http.MethodGet, "/office/login", http.StatusOK},
		{http.MethodGet, "/office", http.StatusSeeOther},
		{http.MethodGet, "/office/api/programs", http.StatusUnauthorized},
		{http.MethodGet, "/office/api/system", http.StatusUnauthorized},
		{http.MethodGet, "/static/live.js", http.StatusOK},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
		{http.MethodDelete, "/healthz", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		if rec := serve(a, tc.method, tc.path); rec.Code != tc.want {
			t.Errorf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.want)
		}
	}

	if loc := serve(a, http.MethodGet, "/office").Header().Get("Location"); loc != "/office/login" {
		t.Errorf("dashboard redirect = %q", loc)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	cfg := &config.AppConfig{AllowedOrigins: []string{"*.church.org"}, Env: "production"}
	c := corsConfig(cfg)
	if !c.AllowOriginFunc("https://office.church.org") {
		t.Error("subdomain rejected")
	}
	if c.AllowOriginFunc("https://elsewhere.org") {
		t.Error("foreign origin allowed")
	}
	if !strings.Contains(strings.Join(c.ExposeHeaders, ","), "x-church-cache") {
		t.Errorf("expose = %v", c.ExposeHeaders)
	}
}
