package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Portal de Teste</title>
<link>https://example.com</link>
<item>
<title>Primeira manchete</title>
<link>https://example.com/1</link>
<pubDate>Mon, 02 Jun 2025 10:00:00 -0300</pubDate>
</item>
<item>
<title>Segunda manchete</title>
<link>https://example.com/2</link>
<pubDate>Mon, 02 Jun 2025 09:00:00 -0300</pubDate>
</item>
</channel>
</rss>`

func TestTrendingFetchesAndCaches(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssFixture)
	}))
	defer server.Close()

	service := NewTrendingService([]string{server.URL})

	items := service.Trending(context.Background())
	require.Len(t, items, 2)
	assert.Equal(t, "Primeira manchete", items[0].Title)
	assert.Equal(t, "Portal de Teste", items[0].Source)

	// Second call within the TTL must come from the cache
	service.Trending(context.Background())
	assert.Equal(t, 1, requests)
}

func TestTrendingAbsorbsFeedFailure(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer broken.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFixture)
	}))
	defer working.Close()

	service := NewTrendingService([]string{broken.URL, working.URL})

	items := service.Refresh(context.Background())
	assert.Len(t, items, 2, "working feed still contributes when another fails")
}
