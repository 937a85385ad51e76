package render

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ummachristians-netizen/umma-christians/internal/livequery"
	"github.com/ummachristians-netizen/umma-christians/internal/models"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/auth/gate"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/chrome"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(time.UTC)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func mustContain(t *testing.T, html fmt.Stringer, parts ...string) {
	t.Helper()
	s := html.String()
	for _, p := range parts {
		if !strings.Contains(s, p) {
			t.Errorf("output missing %q:\n%s", p, s)
		}
	}
}

type htmlString string

func (h htmlString) String() string { return string(h) }

func TestEmptyPlaceholders(t *testing.T) {
	r := newRenderer(t)
	cases := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"public programs", func() (string, error) { h, err := r.Programs(Public, nil); return string(h), err }, EmptyPublicPrograms},
		{"public events", func() (string, error) { h, err := r.Events(Public, nil); return string(h), err }, EmptyPublicEvents},
		{"public gallery", func() (string, error) { h, err := r.Gallery(Public, nil); return string(h), err }, EmptyPublicGallery},
		{"office programs", func() (string, error) { h, err := r.Programs(Office, nil); return string(h), err }, EmptyOfficePrograms},
		{"office events", func() (string, error) { h, err := r.Events(Office, nil); return string(h), err }, EmptyOfficeEvents},
		{"office gallery", func() (string, error) { h, err := r.Gallery(Office, nil); return string(h), err }, EmptyOfficeGallery},
		{"activity", func() (string, error) { h, err := r.Activity(ActivityView{}); return string(h), err }, EmptyActivity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.fn()
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(got, tc.want) {
				t.Fatalf("got %q, want placeholder %q", got, tc.want)
			}
		})
	}
}

func TestPublicProgramsFormat(t *testing.T) {
	r := newRenderer(t)
	h, err := r.Programs(Public, []models.Program{
		{Day: "Sunday", Title: "Service", Time: "9:00", Venue: "Main Hall"},
		{Title: "Choir"},
	})
	if err != nil {
		t.Fatal(err)
	}
	mustContain(t, htmlString(h),
		"<li><strong>Sunday:</strong> Service (9:00, Main Hall)</li>",
		"<strong>Day:</strong> Choir (, )",
	)
}

func TestEventsEscapeAndMarkdown(t *testing.T) {
	r := newRenderer(t)
	h, err := r.Events(Public, []models.Event{{
		Title:       "<script>alert(1)</script>",
		Date:        "2025-04-20",
		Description: "**Easter** service\n\n<b>raw</b>",
	}, {
		Date: "someday",
	}})
	if err != nil {
		t.Fatal(err)
	}
	s := string(h)
	if strings.Contains(s, "<script>") || strings.Contains(s, "<b>raw</b>") {
		t.Fatalf("unescaped html in output:\n%s", s)
	}
	mustContain(t, htmlString(h),
		"&lt;script&gt;",
		"Sun, Apr 20, 2025",
		"<strong>Easter</strong>",
		`<span class="chip">General</span>`,
		"Untitled Event",
		"someday",
	)
}

func TestImageSourcePrecedence(t *testing.T) {
	cases := []struct {
		name   string
		photo  models.GalleryPhoto
		want   string
		broken bool
	}{
		{"inline wins", models.GalleryPhoto{Image: "QUJD", URL: "https://u", Link: "https://l"}, "data:image/jpeg;base64,QUJD", false},
		{"url next", models.GalleryPhoto{URL: "https://u", Link: "https://l"}, "https://u", false},
		{"link normalized", models.GalleryPhoto{Link: "https://drive.google.com/file/d/ABC/view"}, "https://drive.google.com/uc?export=view&id=ABC", false},
		{"nothing", models.GalleryPhoto{Title: "x"}, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, broken := ImageSource(tc.photo)
			if got != tc.want || broken != tc.broken {
				t.Fatalf("ImageSource = %q, %v; want %q, %v", got, broken, tc.want, tc.broken)
			}
		})
	}
}

func TestGalleryFragments(t *testing.T) {
	r := newRenderer(t)
	photos := []models.GalleryPhoto{
		{Key: "k1", Title: "Choir", Image: "QUJD"},
		{Key: "k2", Link: "https://example.com/p.jpg"},
		{Key: "k3", Title: "Empty"},
	}
	pub, err := r.Gallery(Public, photos)
	if err != nil {
		t.Fatal(err)
	}
	mustContain(t, htmlString(pub),
		`src="data:image/jpeg;base64,QUJD"`,
		`alt="Gallery photo"`,
		"<h3>Untitled</h3>",
		`class="card broken"`,
	)

	office, err := r.Gallery(Office, photos)
	if err != nil {
		t.Fatal(err)
	}
	mustContain(t, htmlString(office),
		"Opens: https://example.com/p.jpg",
		"No external link set.",
		`data-api="/office/api/gallery/k1"`,
	)
}

func TestActivityFragment(t *testing.T) {
	r := newRenderer(t)
	when := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC).UnixMilli()
	h, err := r.Activity(ActivityView{
		Banner: BannerActivityBlocked,
		Items: []models.ActivityLog{
			{ID: "a1", Message: "Added event: Easter", Type: "event", CreatedAt: when},
			{Message: "Local only", CreatedAt: when},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	s := string(h)
	mustContain(t, htmlString(h), BannerActivityBlocked, "Sun, Mar 2, 2025", `<span class="chip">info</span>`)
	if strings.Count(s, "data-method=\"DELETE\"") != 1 {
		t.Fatalf("only persisted entries get a delete button:\n%s", s)
	}
}

func TestSiteBlockDefaults(t *testing.T) {
	v := NewSiteView(nil)
	if v.VerseText != DefaultVerseText || v.VerseReference != "-" || v.ThemeYear != DefaultTheme || v.ThemeDay != DefaultTheme {
		t.Fatalf("defaults = %+v", v)
	}
	legacy := NewSiteView(&models.SiteConfig{ThemeSemester: "Old Theme"})
	if legacy.ThemeDay != "Old Theme" {
		t.Fatalf("legacy themeSemester not used: %+v", legacy)
	}
	if form := NewSiteForm(nil); form.VerseText != "" {
		t.Fatal("form must not carry display defaults")
	}
}

func TestHumanDate(t *testing.T) {
	if got := HumanDate("2006-01-02"); got != "Mon, Jan 2, 2006" {
		t.Fatalf("HumanDate = %q", got)
	}
	if got := HumanDate("not a date"); got != "not a date" {
		t.Fatalf("fallback = %q", got)
	}
}

func TestActivityFeedRing(t *testing.T) {
	f := NewActivityFeed()
	for i := 0; i < 45; i++ {
		f.Record(models.ActivityLog{Message: fmt.Sprint(i), CreatedAt: int64(i)})
	}
	local := f.Local()
	if len(local) != ActivityRingSize || local[0].Message != "44" || local[39].Message != "5" {
		t.Fatalf("ring = %d items, first %q last %q", len(local), local[0].Message, local[len(local)-1].Message)
	}

	view := f.Apply(livequery.Snapshot[models.ActivityLog]{})
	if len(view.Items) != 40 || view.Banner != "" {
		t.Fatal("empty snapshot should show the ring")
	}

	view = f.Apply(livequery.Snapshot[models.ActivityLog]{Err: errors.New("denied")})
	if len(view.Items) != 40 || view.Banner != BannerActivityBlocked {
		t.Fatal("failed snapshot should show the ring and the banner")
	}

	live := []models.ActivityLog{{ID: "x", Message: "live"}}
	view = f.Apply(livequery.Snapshot[models.ActivityLog]{Items: live})
	if len(view.Items) != 1 || view.Items[0].ID != "x" {
		t.Fatalf("live snapshot should win: %+v", view.Items)
	}
	if local := f.Local(); len(local) != 1 {
		t.Fatal("live snapshot should replace the ring")
	}
}

func TestPagesRender(t *testing.T) {
	r := newRenderer(t)
	bridge, err := r.Bridge(gate.Bridge(gate.SignedIn))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	err = r.Page(&buf, PagePublic, PublicPage{
		Bridge:  bridge,
		Sidebar: chrome.NewSidebar(chrome.PublicBreakpoint, 1200),
	})
	if err != nil {
		t.Fatalf("public page: %v", err)
	}
	mustContain(t, htmlString(buf.String()), "Office Mode", "Office Dashboard", "Sign Out", `id="programsList"`)

	buf.Reset()
	sections := chrome.NewSections(chrome.OfficeTabs()...)
	sections.Activate("gallery")
	err = r.Page(&buf, PageOffice, OfficePage{
		Email:    "office@church.org",
		Sections: sections.Tabs(),
		Sidebar:  chrome.NewSidebar(chrome.OfficeBreakpoint, 1200),
	})
	if err != nil {
		t.Fatalf("office page: %v", err)
	}
	mustContain(t, htmlString(buf.String()), `id="gallery" class="office-section active"`, "office@church.org")

	buf.Reset()
	if err := r.Page(&buf, PageLogin, LoginPage{Status: "Wrong password.", Error: true}); err != nil {
		t.Fatalf("login page: %v", err)
	}
	mustContain(t, htmlString(buf.String()), "Wrong password.", `action="/office/register"`)
}
