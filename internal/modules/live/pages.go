package live

import (
	"context"

	"github.com/ummachristians-netizen/umma-christians/internal/livequery"
	"github.com/ummachristians-netizen/umma-christians/internal/models"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/render"
)

// Snapshots is every feed's latest read, taken for a first page load.
type Snapshots struct {
	Programs []models.Program
	Events   []models.Event
	Gallery  []models.GalleryPhoto
	Site     *models.SiteConfig
	// Activity keeps its read error for the fallback ring.
	Activity livequery.Snapshot[models.ActivityLog]
}

// Snapshot reads the latest state of every feed. A failed read keeps the
// last good items, or none, so a page still renders.
func (f *Feeds) Snapshot(ctx context.Context) (Snapshots, error) {
	var out Snapshots
	programs, err := f.Programs.Latest(ctx)
	if err != nil {
		return out, err
	}
	events, err := f.Events.Latest(ctx)
	if err != nil {
		return out, err
	}
	gallery, err := f.Gallery.Latest(ctx)
	if err != nil {
		return out, err
	}
	activity, err := f.Activity.Latest(ctx)
	if err != nil {
		return out, err
	}
	site, err := f.SiteConfig.Latest(ctx)
	if err != nil {
		return out, err
	}
	out.Programs = programs.Items
	out.Events = events.Items
	out.Gallery = gallery.Items
	out.Activity = activity
	out.Site = firstConfig(site)
	return out, nil
}

// PublicPage fills the landing page lists. The caller sets Bridge and Sidebar.
func PublicPage(r *render.Renderer, s Snapshots) (render.PublicPage, error) {
	var page render.PublicPage
	var err error
	if page.Site, err = r.SiteBlock(s.Site); err != nil {
		return page, err
	}
	if page.Programs, err = r.Programs(render.Public, s.Programs); err != nil {
		return page, err
	}
	if page.Events, err = r.Events(render.Public, s.Events); err != nil {
		return page, err
	}
	if page.Gallery, err = r.Gallery(render.Public, s.Gallery); err != nil {
		return page, err
	}
	return page, nil
}

// OfficePage fills the dashboard lists, folding the activity read into the
// local ring the same way a live snapshot would.
func OfficePage(r *render.Renderer, activity *render.ActivityFeed, s Snapshots) (render.OfficePage, error) {
	var page render.OfficePage
	var err error
	if page.Programs, err = r.Programs(render.Office, s.Programs); err != nil {
		return page, err
	}
	if page.Events, err = r.Events(render.Office, s.Events); err != nil {
		return page, err
	}
	if page.Gallery, err = r.Gallery(render.Office, s.Gallery); err != nil {
		return page, err
	}
	if page.SiteForm, err = r.SiteConfigForm(s.Site); err != nil {
		return page, err
	}
	view := activity.Apply(s.Activity)
	if page.Activity, err = r.Activity(view); err != nil {
		return page, err
	}
	if view.Banner != "" {
		page.Status, page.StatusError = view.Banner, true
	}
	return page, nil
}
