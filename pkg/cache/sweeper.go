package cache

import (
	"context"
	"time"

	"github.com/craftlane/personalizer-backend/pkg/logger"
)

// RunSweeper sweeps the cache on a fixed cadence until the context is
// canceled. Intended to run as a background goroutine in the serving process;
// Get already drops expired entries, so a missed sweep only costs memory.
func RunSweeper(ctx context.Context, c *Memory, interval time.Duration, logg *logger.Logger) {
	if c == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := c.Sweep()
			if logg != nil && removed > 0 {
				swept := logg.WithFields(ctx, map[string]any{"removed": removed, "size": c.Stats().Size})
				logg.Debug(swept, "cache.sweep")
			}
		}
	}
}
