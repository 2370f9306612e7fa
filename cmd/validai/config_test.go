package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PERPLEXITY_API_KEY", "pplx-test")

	cfg := LoadConfig()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "https://api.perplexity.ai", cfg.PerplexityBaseURL)
	assert.Equal(t, "sonar-pro", cfg.PerplexityModel)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, defaultTrendingFeeds, cfg.TrendingFeeds)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFeedOverride(t *testing.T) {
	t.Setenv("VALIDAI_FEEDS", "https://a.example/rss, https://b.example/rss ,")

	cfg := LoadConfig()

	assert.Equal(t, []string{"https://a.example/rss", "https://b.example/rss"}, cfg.TrendingFeeds)
}

func TestValidateRequiresCompletionKey(t *testing.T) {
	cfg := &Config{RateLimitPerMinute: 10}

	err := cfg.Validate()
	require.Error(t, err)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrorTypeConfig, appErr.Type)
	assert.Equal(t, ErrConfigMissingKey, appErr.Code)
}
