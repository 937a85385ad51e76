package chrome

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func postSidebar(t *testing.T, r *gin.Engine, path string, kind string, width int, cookies []*http.Cookie) (*httptest.ResponseRecorder, SidebarView) {
	t.Helper()
	form := url.Values{"kind": {kind}}
	if width > 0 {
		form.Set("width", strconv.Itoa(width))
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body struct {
		Data SidebarView `json:"data"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body.Data
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler().RegisterRoutes(r)
	return r
}

func TestSidebarEndpointRoundTrip(t *testing.T) {
	r := newRouter()

	rec, view := postSidebar(t, r, "/office/chrome/sidebar", "toggle", 1280, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if view.Class != "closed" || !view.MainExpanded || view.Expanded {
		t.Fatalf("desktop toggle view = %+v", view)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieOffice || cookies[0].Value != "1280.c" {
		t.Fatalf("cookies = %+v", cookies)
	}

	// Shrinking to mobile drops the desktop flag; a toggle then opens the overlay.
	rec, view = postSidebar(t, r, "/office/chrome/sidebar", "toggle", 375, cookies)
	if view.Class != "active" || !view.Overlay || !view.Expanded {
		t.Fatalf("mobile toggle view = %+v", view)
	}
	cookies = rec.Result().Cookies()

	_, view = postSidebar(t, r, "/office/chrome/sidebar", "navigate", 375, cookies)
	if view.Overlay || view.Class != "" {
		t.Fatalf("navigate should close overlay: %+v", view)
	}
}

func TestSidebarEndpointSurfaces(t *testing.T) {
	r := newRouter()
	// 880 is mobile for the office and desktop for the public site.
	_, office := postSidebar(t, r, "/office/chrome/sidebar", "toggle", 880, nil)
	rec, public := postSidebar(t, r, "/chrome/sidebar", "toggle", 880, nil)
	if office.Class != "active" || public.Class != "closed" {
		t.Fatalf("office = %+v public = %+v", office, public)
	}
	if c := rec.Result().Cookies(); len(c) != 1 || c[0].Name != CookiePublic {
		t.Fatalf("public cookie = %+v", c)
	}
}

func TestSidebarEndpointRejectsUnknownKind(t *testing.T) {
	rec, _ := postSidebar(t, newRouter(), "/chrome/sidebar", "explode", 1280, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
