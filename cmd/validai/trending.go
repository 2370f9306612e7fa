package main

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	trendingTTL          = 10 * time.Minute
	trendingMaxItems     = 20
	trendingItemsPerFeed = 5
)

// TrendingService fetches headlines from configured RSS feeds behind a
// short-TTL cache. Feed failures are absorbed per source.
type TrendingService struct {
	parser *gofeed.Parser
	feeds  []string

	mu        sync.RWMutex
	cached    []TrendingItem
	fetchedAt time.Time
}

// NewTrendingService creates the service over the configured feed list
func NewTrendingService(feeds []string) *TrendingService {
	return &TrendingService{
		parser: gofeed.NewParser(),
		feeds:  feeds,
	}
}

// Trending returns the cached headlines, refreshing when stale
func (t *TrendingService) Trending(ctx context.Context) []TrendingItem {
	t.mu.RLock()
	fresh := time.Since(t.fetchedAt) < trendingTTL && t.cached != nil
	cached := t.cached
	t.mu.RUnlock()

	if fresh {
		return cached
	}
	return t.Refresh(ctx)
}

// Refresh re-fetches every feed and replaces the cache
func (t *TrendingService) Refresh(ctx context.Context) []TrendingItem {
	var items []TrendingItem

	for _, feedURL := range t.feeds {
		feed, err := t.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			Logger().Warning("trending feed %s failed: %v", feedURL, err)
			continue
		}

		count := 0
		for _, item := range feed.Items {
			if count >= trendingItemsPerFeed {
				break
			}
			published := time.Time{}
			if item.PublishedParsed != nil {
				published = *item.PublishedParsed
			}
			items = append(items, TrendingItem{
				Title:       item.Title,
				URL:         item.Link,
				Source:      feed.Title,
				PublishedAt: published,
			})
			count++
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	if len(items) > trendingMaxItems {
		items = items[:trendingMaxItems]
	}

	t.mu.Lock()
	t.cached = items
	t.fetchedAt = time.Now()
	t.mu.Unlock()

	Logger().Debug("trending refreshed with %d items", len(items))
	return items
}
