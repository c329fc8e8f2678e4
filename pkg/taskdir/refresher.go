package taskdir

import (
	"context"
	"log/slog"
	"time"

	"github.com/carlosmiguelsoto/einstein/pkg/telemetry"
)

// RunRefresher keeps the directory warm until ctx is done. A failed refresh is
// logged and retried on the next tick; the stale directory keeps serving lookups.
func (c *Cache) RunRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.Window
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	refresh := func() {
		if _, err := c.Refresh(ctx, true); err != nil {
			telemetry.Log("RunRefresher(): "+err.Error(), slog.LevelWarn)
		}
	}

	refresh()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
