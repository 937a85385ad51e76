// Package live binds the store to the live-query feeds and renders their
// snapshots for the socket hub and for the first page load.
package live

import (
	"context"
	"html/template"

	"go.uber.org/zap"

	"github.com/ummachristians-netizen/umma-christians/internal/livequery"
	"github.com/ummachristians-netizen/umma-christians/internal/models"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/auth/gate"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/gateway"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/render"
	"github.com/ummachristians-netizen/umma-christians/internal/store"
)

// Feeds holds one feed per watched collection.
type Feeds struct {
	Programs   *livequery.Feed[models.Program]
	Events     *livequery.Feed[models.Event]
	Gallery    *livequery.Feed[models.GalleryPhoto]
	SiteConfig *livequery.Feed[models.SiteConfig]
	Activity   *livequery.Feed[models.ActivityLog]
}

func NewFeeds(b *store.Backend, logger *zap.Logger) *Feeds {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feeds{
		Programs: livequery.NewFeed(livequery.TopicPrograms, b.Programs.List, logger),
		Events:   livequery.NewFeed(livequery.TopicEvents, b.Events.List, logger),
		Gallery:  livequery.NewFeed(livequery.TopicGallery, b.Gallery.List, logger),
		SiteConfig: livequery.NewFeed(livequery.TopicSiteConfig, func(ctx context.Context) ([]models.SiteConfig, error) {
			cfg, err := b.SiteConfig.Get(ctx)
			if err != nil || cfg == nil {
				return nil, err
			}
			return []models.SiteConfig{*cfg}, nil
		}, logger),
		Activity: livequery.NewFeed(livequery.TopicActivity, func(ctx context.Context) ([]models.ActivityLog, error) {
			return b.Activity.Recent(ctx, store.ActivityLimit)
		}, logger),
	}
}

// Register puts every feed on the bus under its topic.
func (f *Feeds) Register(bus *livequery.Bus) {
	bus.Register(f.Programs.Topic(), f.Programs)
	bus.Register(f.Events.Topic(), f.Events)
	bus.Register(f.Gallery.Topic(), f.Gallery)
	bus.Register(f.SiteConfig.Topic(), f.SiteConfig)
	bus.Register(f.Activity.Topic(), f.Activity)
}

// Start runs every feed until ctx is done.
func (f *Feeds) Start(ctx context.Context) {
	go f.Programs.Run(ctx)
	go f.Events.Run(ctx)
	go f.Gallery.Run(ctx)
	go f.SiteConfig.Run(ctx)
	go f.Activity.Run(ctx)
}

// Site returns the latest site config, nil when it was never written.
func (f *Feeds) Site(ctx context.Context) (*models.SiteConfig, error) {
	snap, err := f.SiteConfig.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Err != nil {
		return nil, snap.Err
	}
	if len(snap.Items) == 0 {
		return nil, nil
	}
	cfg := snap.Items[0]
	return &cfg, nil
}

func firstConfig(snap livequery.Snapshot[models.SiteConfig]) *models.SiteConfig {
	if len(snap.Items) == 0 {
		return nil
	}
	cfg := snap.Items[0]
	return &cfg
}

// Publisher renders snapshots into fragments and pushes them to the hub.
type Publisher struct {
	feeds    *Feeds
	hub      *gateway.Hub
	renderer *render.Renderer
	activity *render.ActivityFeed
	logger   *zap.Logger
}

func NewPublisher(feeds *Feeds, hub *gateway.Hub, renderer *render.Renderer, activity *render.ActivityFeed, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{feeds: feeds, hub: hub, renderer: renderer, activity: activity, logger: logger}
}

// Start binds one pump per feed and namespace. Public sockets get the
// published lists and the verse block, office sockets get the editable lists,
// the activity feed and the config form.
func (p *Publisher) Start(ctx context.Context) error {
	r := p.renderer
	if err := pump(ctx, p, gateway.NamespaceWeb, p.feeds.Programs, func(snap livequery.Snapshot[models.Program]) ([]gateway.Fragment, error) {
		return one(render.TargetPublicPrograms)(r.Programs(render.Public, snap.Items))
	}); err != nil {
		return err
	}
	if err := pump(ctx, p, gateway.NamespaceWeb, p.feeds.Events, func(snap livequery.Snapshot[models.Event]) ([]gateway.Fragment, error) {
		return one(render.TargetPublicEvents)(r.Events(render.Public, snap.Items))
	}); err != nil {
		return err
	}
	if err := pump(ctx, p, gateway.NamespaceWeb, p.feeds.Gallery, func(snap livequery.Snapshot[models.GalleryPhoto]) ([]gateway.Fragment, error) {
		return one(render.TargetPublicGallery)(r.Gallery(render.Public, snap.Items))
	}); err != nil {
		return err
	}
	if err := pump(ctx, p, gateway.NamespaceWeb, p.feeds.SiteConfig, func(snap livequery.Snapshot[models.SiteConfig]) ([]gateway.Fragment, error) {
		return one(render.TargetSiteBlock)(r.SiteBlock(firstConfig(snap)))
	}); err != nil {
		return err
	}

	if err := pump(ctx, p, gateway.NamespaceOffice, p.feeds.Programs, func(snap livequery.Snapshot[models.Program]) ([]gateway.Fragment, error) {
		return one(render.TargetOfficePrograms)(r.Programs(render.Office, snap.Items))
	}); err != nil {
		return err
	}
	if err := pump(ctx, p, gateway.NamespaceOffice, p.feeds.Events, func(snap livequery.Snapshot[models.Event]) ([]gateway.Fragment, error) {
		return one(render.TargetOfficeEvents)(r.Events(render.Office, snap.Items))
	}); err != nil {
		return err
	}
	if err := pump(ctx, p, gateway.NamespaceOffice, p.feeds.Gallery, func(snap livequery.Snapshot[models.GalleryPhoto]) ([]gateway.Fragment, error) {
		return one(render.TargetOfficeGallery)(r.Gallery(render.Office, snap.Items))
	}); err != nil {
		return err
	}
	if err := pump(ctx, p, gateway.NamespaceOffice, p.feeds.SiteConfig, func(snap livequery.Snapshot[models.SiteConfig]) ([]gateway.Fragment, error) {
		return one(render.TargetOfficeConfig)(r.SiteConfigForm(firstConfig(snap)))
	}); err != nil {
		return err
	}
	// Activity renders failed reads too: the ring plus the blocked banner.
	return bind(ctx, p, gateway.NamespaceOffice, p.feeds.Activity, func(snap livequery.Snapshot[models.ActivityLog]) ([]gateway.Fragment, error) {
		if snap.Err != nil {
			p.logger.Warn("live query read failed", zap.String("topic", livequery.TopicActivity), zap.Error(snap.Err))
		}
		return one(render.TargetOfficeActivity)(r.Activity(p.activity.Apply(snap)))
	})
}

// PushAuthState tells the sockets of one browser session about a sign-in or
// sign-out and swaps the office bridge on its public pages in place.
func (p *Publisher) PushAuthState(sessionID string, state gate.State) {
	p.hub.PushAuthState(sessionID, state)
	f, err := BridgeFragment(p.renderer, state)
	if err != nil {
		p.logger.Warn("render bridge failed", zap.Error(err))
		return
	}
	p.hub.PushSessionFragment(gateway.NamespaceWeb, sessionID, f)
}

// BridgeFragment renders the office bridge a public page shows for state.
func BridgeFragment(r *render.Renderer, state gate.State) (gateway.Fragment, error) {
	html, err := r.Bridge(gate.Bridge(state))
	if err != nil {
		return gateway.Fragment{}, err
	}
	return gateway.Fragment{Target: render.TargetBridge, HTML: string(html)}, nil
}

// PushActivity sends a locally recorded activity view to office sockets.
func (p *Publisher) PushActivity(view render.ActivityView) {
	html, err := p.renderer.Activity(view)
	if err != nil {
		p.logger.Warn("render activity failed", zap.Error(err))
		return
	}
	p.hub.PushFragment(gateway.NamespaceOffice, gateway.Fragment{Target: render.TargetOfficeActivity, HTML: string(html)})
}

// pump pushes every good read of feed to ns. A failed read pushes nothing,
// so sockets and late joiners keep the last good rendering.
func pump[T any](ctx context.Context, p *Publisher, ns string, feed *livequery.Feed[T], fn gateway.RenderFunc[T]) error {
	return bind(ctx, p, ns, feed, skipFailed(p.logger, ns, feed.Topic(), fn))
}

func skipFailed[T any](logger *zap.Logger, ns, topic string, fn gateway.RenderFunc[T]) gateway.RenderFunc[T] {
	return func(snap livequery.Snapshot[T]) ([]gateway.Fragment, error) {
		if snap.Err != nil {
			logger.Warn("live query read failed, keeping last fragment", zap.String("topic", topic), zap.String("namespace", ns), zap.Error(snap.Err))
			return nil, nil
		}
		return fn(snap)
	}
}

func bind[T any](ctx context.Context, p *Publisher, ns string, feed *livequery.Feed[T], fn gateway.RenderFunc[T]) error {
	sub, err := feed.Subscribe(ctx)
	if err != nil {
		return err
	}
	go gateway.Pump(ctx, p.hub, ns, sub, fn)
	return nil
}

func one(target string) func(template.HTML, error) ([]gateway.Fragment, error) {
	return func(html template.HTML, err error) ([]gateway.Fragment, error) {
		if err != nil {
			return nil, err
		}
		return []gateway.Fragment{{Target: target, HTML: string(html)}}, nil
	}
}
