// Package render turns store snapshots into the HTML fragments and pages of
// the public site and the office dashboard. Every fragment is a full
// replacement for its list; nothing is diffed.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"github.com/ummachristians-netizen/umma-christians/internal/models"
	"github.com/ummachristians-netizen/umma-christians/internal/pkg/sharelink"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Surface selects the public or the office variant of a fragment.
type Surface string

const (
	Public Surface = "public"
	Office Surface = "office"
)

// Fragment targets, the element ids the browser swaps.
const (
	TargetPublicPrograms = "programsList"
	TargetPublicEvents   = "eventsList"
	TargetPublicGallery  = "galleryGrid"
	TargetSiteBlock      = "siteBlock"
	TargetBridge         = "officeBridge"
	TargetOfficePrograms = "adminProgramsList"
	TargetOfficeEvents   = "adminEventsList"
	TargetOfficeGallery  = "adminPhotosList"
	TargetOfficeActivity = "activityFeed"
	TargetOfficeStatus   = "adminStatus"
	TargetOfficeConfig   = "siteConfigForm"
)

// Placeholders shown for empty snapshots.
const (
	EmptyPublicPrograms = "Programs will be published by the ministry office."
	EmptyPublicEvents   = "No events published yet."
	EmptyPublicGallery  = "No photos published yet."
	EmptyOfficePrograms = "No weekly programs yet."
	EmptyOfficeEvents   = "No events yet."
	EmptyOfficeGallery  = "No gallery photos yet."
	EmptyActivity       = "No activity yet."

	DefaultVerseText      = "Verse will be published by the ministry office."
	DefaultVerseReference = "-"
	DefaultTheme          = "Not set yet."
)

const humanDateLayout = "Mon, Jan 2, 2006"

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl     *template.Template
	markdown goldmark.Markdown
	loc      *time.Location
}

// New parses the templates. Times are shown in loc, or local time when nil.
func New(loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.Local
	}
	r := &Renderer{
		loc: loc,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(htmlrenderer.WithHardWraps()),
		),
	}
	tmpl, err := template.New("render").Funcs(template.FuncMap{
		"humanDate": HumanDate,
		"humanTime": r.humanMillis,
		"markdown":  r.renderMarkdown,
		"imageSrc":  func(p models.GalleryPhoto) template.URL { src, _ := ImageSource(p); return template.URL(src) },
		"broken":    func(p models.GalleryPhoto) bool { _, broken := ImageSource(p); return broken },
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func (r *Renderer) fragment(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(strings.TrimSpace(buf.String())), nil
}

func (r *Renderer) Programs(s Surface, items []models.Program) (template.HTML, error) {
	return r.fragment(string(s)+"_programs", items)
}

func (r *Renderer) Events(s Surface, items []models.Event) (template.HTML, error) {
	return r.fragment(string(s)+"_events", items)
}

func (r *Renderer) Gallery(s Surface, items []models.GalleryPhoto) (template.HTML, error) {
	return r.fragment(string(s)+"_gallery", items)
}

func (r *Renderer) Activity(view ActivityView) (template.HTML, error) {
	return r.fragment("office_activity", view)
}

func (r *Renderer) SiteBlock(cfg *models.SiteConfig) (template.HTML, error) {
	return r.fragment("site_block", NewSiteView(cfg))
}

func (r *Renderer) SiteConfigForm(cfg *models.SiteConfig) (template.HTML, error) {
	return r.fragment("office_site_config", NewSiteForm(cfg))
}

// Page writes a full page template.
func (r *Renderer) Page(w io.Writer, name string, data interface{}) error {
	if err := r.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

// ImageSource picks what a gallery <img> loads: inline bytes, then the
// stored URL, then the normalized external link. broken is true when the
// photo has none of them.
func ImageSource(p models.GalleryPhoto) (src string, broken bool) {
	switch {
	case p.Image != "":
		return "data:image/jpeg;base64," + p.Image, false
	case p.URL != "":
		return p.URL, false
	case p.Link != "":
		return sharelink.Normalize(p.Link), false
	}
	return "", true
}

// HumanDate formats a YYYY-MM-DD date as "Mon, Jan 2, 2006". Anything that
// does not parse is returned as is.
func HumanDate(date string) string {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return date
	}
	return t.Format(humanDateLayout)
}

func (r *Renderer) humanMillis(ms int64) string {
	if ms <= 0 {
		ms = time.Now().UnixMilli()
	}
	return time.UnixMilli(ms).In(r.loc).Format(humanDateLayout)
}

// renderMarkdown converts an event description. Raw HTML in the source is
// not passed through.
func (r *Renderer) renderMarkdown(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// SiteView is the verse and theme block with display defaults applied.
type SiteView struct {
	VerseText       string
	VerseReference  string
	ThemeYear       string
	ThemeDay        string
	ContactEmail    string
	FellowshipDay   string
	FellowshipTime  string
	FellowshipVenue string
}

func NewSiteView(cfg *models.SiteConfig) SiteView {
	if cfg == nil {
		cfg = &models.SiteConfig{}
	}
	return SiteView{
		VerseText:       orDefault(cfg.VerseText, DefaultVerseText),
		VerseReference:  orDefault(cfg.VerseReference, DefaultVerseReference),
		ThemeYear:       orDefault(cfg.ThemeYear, DefaultTheme),
		ThemeDay:        orDefault(cfg.DayTheme(), DefaultTheme),
		ContactEmail:    cfg.ContactEmail,
		FellowshipDay:   cfg.FellowshipDay,
		FellowshipTime:  cfg.FellowshipTime,
		FellowshipVenue: cfg.FellowshipVenue,
	}
}

// NewSiteForm pre-fills the office config form. Missing fields stay empty.
func NewSiteForm(cfg *models.SiteConfig) SiteView {
	if cfg == nil {
		return SiteView{}
	}
	return SiteView{
		VerseText:       cfg.VerseText,
		VerseReference:  cfg.VerseReference,
		ThemeYear:       cfg.ThemeYear,
		ThemeDay:        cfg.DayTheme(),
		ContactEmail:    cfg.ContactEmail,
		FellowshipDay:   cfg.FellowshipDay,
		FellowshipTime:  cfg.FellowshipTime,
		FellowshipVenue: cfg.FellowshipVenue,
	}
}
