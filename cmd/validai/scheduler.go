package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// startScheduler wires the periodic jobs: trending refresh, extraction
// cache pruning and a daily stats line
func startScheduler(trending *TrendingService, cache *ContentCache) *cron.Cron {
	c := cron.New()

	c.AddFunc("@every 10m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		trending.Refresh(ctx)
	})

	c.AddFunc("@every 1h", func() {
		if evicted := cache.Prune(); evicted > 0 {
			Logger().Debug("pruned %d expired extraction cache entries", evicted)
		}
	})

	c.AddFunc("@daily", func() {
		snapshot := MetricsSnapshot(cache)
		Logger().Info("daily stats: %v", snapshot)
	})

	c.Start()
	return c
}
