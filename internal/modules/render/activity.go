package render

import (
	"sync"

	"github.com/ummachristians-netizen/umma-christians/internal/livequery"
	"github.com/ummachristians-netizen/umma-christians/internal/models"
)

// ActivityRingSize bounds the local fallback list.
const ActivityRingSize = 40

// BannerActivityBlocked is shown when the activity subscription fails.
const BannerActivityBlocked = "Realtime activity feed is blocked by Firestore rules."

// ActivityView is what the activity fragment renders.
type ActivityView struct {
	Items  []models.ActivityLog
	Banner string
}

// ActivityFeed keeps the newest locally written entries so the dashboard
// still has something to show when the live feed is empty or denied.
type ActivityFeed struct {
	mu    sync.Mutex
	local []models.ActivityLog
}

func NewActivityFeed() *ActivityFeed { return &ActivityFeed{} }

// Record puts entry at the front of the ring, dropping the oldest past 40.
func (f *ActivityFeed) Record(entry models.ActivityLog) ActivityView {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := make([]models.ActivityLog, 0, ActivityRingSize)
	next = append(next, entry)
	next = append(next, f.local...)
	if len(next) > ActivityRingSize {
		next = next[:ActivityRingSize]
	}
	f.local = next
	return ActivityView{Items: f.copyLocal()}
}

// Apply folds a live snapshot in. A non-empty snapshot replaces the ring;
// an empty one shows the ring; a failed one shows the ring and a banner.
func (f *ActivityFeed) Apply(snap livequery.Snapshot[models.ActivityLog]) ActivityView {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case snap.Err != nil:
		return ActivityView{Items: f.copyLocal(), Banner: BannerActivityBlocked}
	case len(snap.Items) == 0:
		return ActivityView{Items: f.copyLocal()}
	}
	items := snap.Items
	if len(items) > ActivityRingSize {
		items = items[:ActivityRingSize]
	}
	f.local = append([]models.ActivityLog(nil), items...)
	return ActivityView{Items: f.copyLocal()}
}

// Local returns a copy of the ring, newest first.
func (f *ActivityFeed) Local() []models.ActivityLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copyLocal()
}

func (f *ActivityFeed) copyLocal() []models.ActivityLog {
	return append([]models.ActivityLog(nil), f.local...)
}
