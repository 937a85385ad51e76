package app

import (
	"context"
	"time"

	"github.com/ummachristians-netizen/umma-christians/internal/config"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/live"
	pkgcron "github.com/ummachristians-netizen/umma-christians/internal/pkg/cron"
)

// registerCronJobs registers the periodic resyncs. Change notifications keep
// feeds current within one process; these catch writes made elsewhere.
func registerCronJobs(sched *pkgcron.Scheduler, cfg *config.AppConfig, feeds *live.Feeds) {
	sched.Register(pkgcron.Job{
		Name:        "resync_content",
		Description: "Re-read programs, events, site config and activity",
		Interval:    5 * time.Minute,
		Fn: func(context.Context) error {
			feeds.Programs.Refresh()
			feeds.Events.Refresh()
			feeds.SiteConfig.Refresh()
			feeds.Activity.Refresh()
			return nil
		},
	})

	// The realtime database has no listener wired, so poll it tighter.
	interval := 5 * time.Minute
	if cfg.Backends.Realtime == config.RealtimeRTDB {
		interval = 30 * time.Second
	}
	sched.Register(pkgcron.Job{
		Name:        "resync_gallery",
		Description: "Re-read gallery photos",
		Interval:    interval,
		Fn: func(context.Context) error {
			feeds.Gallery.Refresh()
			return nil
		},
	})
}
