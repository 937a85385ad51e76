package render

import (
	"embed"
	"html/template"
	"io/fs"

	"github.com/ummachristians-netizen/umma-christians/internal/modules/auth/gate"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/chrome"
)

//go:embed static
var staticFS embed.FS

// Page template names.
const (
	PagePublic = "public.html"
	PageOffice = "office.html"
	PageLogin  = "login.html"
)

// PublicPage is the data of the public landing page.
type PublicPage struct {
	Site     template.HTML
	Programs template.HTML
	Events   template.HTML
	Gallery  template.HTML
	Bridge   template.HTML
	Sidebar  *chrome.Sidebar
}

// OfficePage is the data of the dashboard.
type OfficePage struct {
	Email         string
	Status        string
	StatusError   bool
	Sections      []chrome.TabView
	Sidebar       *chrome.Sidebar
	Programs      template.HTML
	Events        template.HTML
	Gallery       template.HTML
	Activity      template.HTML
	SiteForm      template.HTML
	MaxImageBytes int
}

// LoginPage is the data of the office sign-in page.
type LoginPage struct {
	Email      string
	Status     string
	Error      bool
	ResetToken string
}

func (r *Renderer) Bridge(items []gate.Item) (template.HTML, error) {
	return r.fragment("bridge", items)
}

// Static holds the stylesheet and the live-update script.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
