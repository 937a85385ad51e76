package gateway

import (
	"context"

	"go.uber.org/zap"

	"github.com/ummachristians-netizen/umma-christians/internal/livequery"
)

// RenderFunc turns one snapshot into the fragments it replaces.
type RenderFunc[T any] func(snap livequery.Snapshot[T]) ([]Fragment, error)

// Pump forwards every snapshot of sub, rendered, to ns until ctx is done
// or the subscription closes. It cancels sub on return.
func Pump[T any](ctx context.Context, h *Hub, ns string, sub *livequery.Subscription[T], render RenderFunc[T]) {
	defer sub.Cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub.C():
			if !ok {
				return
			}
			fragments, err := render(snap)
			if err != nil {
				h.logger.Warn("render fragment failed", zap.String("namespace", ns), zap.Error(err))
				continue
			}
			for _, f := range fragments {
				h.PushFragment(ns, f)
			}
		}
	}
}
