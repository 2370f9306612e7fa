package main

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Version of the service, reported by /api/health
const Version = "1.0.0"

// Config holds application configuration, read from the environment.
// A .env file is loaded by main before this runs.
type Config struct {
	// HTTP surface
	ListenAddr         string
	RateLimitPerMinute int
	RateLimitBurst     int

	// Generative completion capability (required)
	PerplexityAPIKey  string
	PerplexityBaseURL string
	PerplexityModel   string

	// Evidence search capability (optional)
	SearchAPIKey string
	SearchAPIURL string

	// Primary extraction capability (optional)
	BrowserEnabled bool
	BrowserWait    time.Duration

	// Extraction cache
	CacheTTL        time.Duration
	CacheMaxEntries int

	// Pipeline
	MaxEvidence int

	// Trending news feeds
	TrendingFeeds []string

	// Media bias table override (YAML); empty means the built-in table
	BiasTablePath string

	// Logging
	LogPath  string
	LogLevel LogLevel
}

var defaultTrendingFeeds = []string{
	"https://g1.globo.com/rss/g1/",
	"https://feeds.folha.uol.com.br/poder/rss091.xml",
	"https://www.estadao.com.br/rss/ultimas.xml",
	"https://agenciabrasil.ebc.com.br/rss/ultimasnoticias/feed.xml",
}

// LoadConfig reads configuration from the environment
func LoadConfig() *Config {
	cfg := &Config{
		ListenAddr:         envOr("VALIDAI_ADDR", ":8080"),
		RateLimitPerMinute: envInt("VALIDAI_RATE_LIMIT", 10),
		RateLimitBurst:     envInt("VALIDAI_RATE_BURST", 3),
		PerplexityAPIKey:   os.Getenv("PERPLEXITY_API_KEY"),
		PerplexityBaseURL:  envOr("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
		PerplexityModel:    envOr("PERPLEXITY_MODEL", "sonar-pro"),
		SearchAPIKey:       os.Getenv("SEARCH_API_KEY"),
		SearchAPIURL:       envOr("SEARCH_API_URL", "https://google.serper.dev/search"),
		BrowserEnabled:     os.Getenv("VALIDAI_BROWSER") == "1",
		BrowserWait:        time.Duration(envInt("VALIDAI_BROWSER_WAIT_SECONDS", 3)) * time.Second,
		CacheTTL:           time.Duration(envInt("VALIDAI_CACHE_TTL_MINUTES", 60)) * time.Minute,
		CacheMaxEntries:    envInt("VALIDAI_CACHE_MAX_ENTRIES", 100),
		MaxEvidence:        envInt("VALIDAI_MAX_EVIDENCE", 10),
		BiasTablePath:      os.Getenv("VALIDAI_BIAS_TABLE"),
		LogPath:            envOr("VALIDAI_LOG_PATH", "logs/validai.log"),
		LogLevel:           ParseLogLevel(os.Getenv("VALIDAI_LOG_LEVEL")),
	}

	if feeds := os.Getenv("VALIDAI_FEEDS"); feeds != "" {
		for _, f := range strings.Split(feeds, ",") {
			if f = strings.TrimSpace(f); f != "" {
				cfg.TrendingFeeds = append(cfg.TrendingFeeds, f)
			}
		}
	}
	if len(cfg.TrendingFeeds) == 0 {
		cfg.TrendingFeeds = defaultTrendingFeeds
	}

	return cfg
}

// Validate checks that required configuration is present. The generative
// completion credential is mandatory; the search and browser capabilities
// only toggle their code paths.
func (c *Config) Validate() error {
	if c.PerplexityAPIKey == "" {
		return NewConfigError(ErrConfigMissingKey, "PERPLEXITY_API_KEY não configurada", nil)
	}
	if c.RateLimitPerMinute <= 0 {
		return NewConfigError(ErrConfigInvalid, "rate limit must be positive", nil)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
