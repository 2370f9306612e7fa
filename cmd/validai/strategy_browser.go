package main

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	readability "github.com/go-shiori/go-readability"
)

// browserStrategy renders the page in a headless browser before
// extracting main content, so client-side rendered articles are readable.
// It is enabled by configuration only; without it the extractor runs in
// fallback-only mode.
type browserStrategy struct {
	wait     time.Duration
	timeout  time.Duration
	minChars int
}

func newBrowserStrategy(wait time.Duration) *browserStrategy {
	if wait <= 0 {
		wait = 3 * time.Second
	}
	return &browserStrategy{
		wait:     wait,
		timeout:  30 * time.Second,
		minChars: 100,
	}
}

func (s *browserStrategy) name() string { return MethodPrimary }

const dropNonContentJS = `document.querySelectorAll(
	'script, style, noscript, iframe, nav, header, footer, aside, .ad, .ads, .advertisement, .banner'
).forEach(function(el) { el.remove(); });`

func (s *browserStrategy) tryExtract(ctx context.Context, pageURL string) (*ExtractedContent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var renderedHTML string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(s.wait), // bounded wait for dynamic content
		chromedp.Evaluate(dropNonContentJS, nil),
		chromedp.OuterHTML("html", &renderedHTML),
	)
	if err != nil {
		return nil, NewExtractionError(ErrExtractFetch, "falha ao renderizar a página", err)
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, NewInputError(ErrInputURL, "URL malformada", err)
	}

	article, err := readability.FromReader(strings.NewReader(renderedHTML), parsedURL)
	if err != nil {
		return nil, NewExtractionError(ErrExtractQuality, "falha ao extrair conteúdo principal", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) < s.minChars {
		return nil, NewExtractionError(ErrExtractQuality, "conteúdo renderizado muito curto", nil)
	}

	return &ExtractedContent{
		Text: text,
		Metadata: ContentMetadata{
			Title:       strings.TrimSpace(article.Title),
			Description: strings.TrimSpace(article.Excerpt),
		},
	}, nil
}
