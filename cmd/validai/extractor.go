package main

import (
	"context"
	"net"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxExtractedChars bounds downstream prompt size and cost
const maxExtractedChars = 8000

// extractionStrategy is one method of turning a URL into clean article
// text. Strategies are tried in order until one succeeds.
type extractionStrategy interface {
	name() string
	tryExtract(ctx context.Context, pageURL string) (*ExtractedContent, error)
}

// Extractor produces clean article text from a URL using an ordered list
// of strategies, fronted by a TTL cache
type Extractor struct {
	strategies []extractionStrategy
	cache      *ContentCache

	// allowPrivateHosts disables the loopback/private-network guard so
	// tests can point the extractor at httptest servers
	allowPrivateHosts bool
}

// NewExtractor builds the strategy list from configuration: the headless
// browser strategy runs first when enabled, the plain HTTP strategy is
// always present as the last resort.
func NewExtractor(cfg *Config, cache *ContentCache) *Extractor {
	var strategies []extractionStrategy
	if cfg.BrowserEnabled {
		strategies = append(strategies, newBrowserStrategy(cfg.BrowserWait))
	}
	strategies = append(strategies, newHTTPStrategy())

	return &Extractor{
		strategies: strategies,
		cache:      cache,
	}
}

// Extract returns clean article text and metadata for a URL. Individual
// strategy failures are logged and absorbed; only exhaustion of every
// strategy is an error.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*ExtractedContent, error) {
	if err := e.validateURL(rawURL); err != nil {
		return nil, err
	}

	if cached, ok := e.cache.Get(rawURL); ok {
		Logger().Debug("extraction cache hit for %s", rawURL)
		return cached, nil
	}

	var lastErr error
	for _, strategy := range e.strategies {
		content, err := strategy.tryExtract(ctx, rawURL)
		if err != nil {
			Logger().Warning("extraction strategy %s failed for %s: %v", strategy.name(), rawURL, err)
			lastErr = err
			continue
		}
		if content == nil || strings.TrimSpace(content.Text) == "" {
			continue
		}

		content.Text = truncateRunes(cleanText(content.Text), maxExtractedChars)
		content.Metadata.SourceURL = rawURL
		content.Metadata.ExtractionMethod = strategy.name()
		content.Metadata.WordCount = len(strings.Fields(content.Text))
		content.Metadata.FromCache = false

		e.cache.Set(rawURL, content)
		return content, nil
	}

	return nil, NewExtractionError(ErrExtractExhausted,
		"não foi possível extrair conteúdo da URL fornecida", lastErr)
}

// validateURL enforces the scheme and blocks loopback/private hosts so
// the pipeline cannot be used to probe internal network services
func (e *Extractor) validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return NewInputError(ErrInputURL, "URL malformada", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return NewInputError(ErrInputURL, "apenas URLs http(s) são aceitas", nil)
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return NewInputError(ErrInputURL, "URL sem hostname", nil)
	}

	if e.allowPrivateHosts {
		return nil
	}
	if isBlockedHost(host) {
		return NewInputError(ErrInputBlockedHost, "acesso a endereços internos não é permitido", nil)
	}
	return nil
}

func isBlockedHost(host string) bool {
	switch host {
	case "localhost", "metadata.google.internal":
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
	}
	return strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local")
}

// cleanText collapses whitespace runs, normalizes blank lines, strips
// control characters and applies NFC normalization
func cleanText(text string) string {
	text = norm.NFC.String(text)

	text = strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
