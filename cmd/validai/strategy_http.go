package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// httpStrategy fetches the raw page directly with a browser-like request
// signature and extracts main content with CSS selectors. Many sites
// serve degraded or blocked pages to obviously automated clients, hence
// the realistic headers.
type httpStrategy struct {
	client *http.Client
}

const maxFetchBytes = 2 << 20 // 2MB

func newHTTPStrategy() *httpStrategy {
	return &httpStrategy{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *httpStrategy) name() string { return MethodFallback }

// nonContentSelector removes elements that never carry article text
const nonContentSelector = "script, style, noscript, iframe, nav, header, footer, aside, form, " +
	".ad, .ads, .advertisement, .banner, .social, .share, .comments, .related, .newsletter, .cookie"

// contentSelectors are tried in order; general semantic containers first,
// then content-class patterns common on Brazilian news sites. The longest
// text found across all of them wins.
var contentSelectors = []string{
	"article",
	"[role=main]",
	"main",
	".article-body",
	".article-content",
	".article__content",
	".post-content",
	".entry-content",
	".content-text",
	".materia-conteudo",
	".mc-article-body",
	".news-content",
	".story-body",
	".texto-materia",
	".post-body",
	".td-post-content",
	".c-news__body",
	"#materia",
	".conteudo",
}

var errorPagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)página não encontrada`),
	regexp.MustCompile(`(?i)pagina nao encontrada`),
	regexp.MustCompile(`(?i)page not found`),
	regexp.MustCompile(`(?i)erro 404`),
	regexp.MustCompile(`(?i)404 not found`),
	regexp.MustCompile(`(?i)acesso negado`),
	regexp.MustCompile(`(?i)access denied`),
	regexp.MustCompile(`(?i)403 forbidden`),
	regexp.MustCompile(`(?i)em manutenção`),
	regexp.MustCompile(`(?i)under maintenance`),
	regexp.MustCompile(`(?i)conteúdo indisponível`),
}

func (s *httpStrategy) tryExtract(ctx context.Context, pageURL string) (*ExtractedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	setBrowserHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, NewExtractionError(ErrExtractFetch, "falha ao carregar a página", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, NewExtractionError(ErrExtractFetch,
			fmt.Sprintf("página retornou status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, NewExtractionError(ErrExtractFetch, "falha ao ler a página", err)
	}

	reader, err := charset.NewReader(strings.NewReader(string(body)), resp.Header.Get("Content-Type"))
	if err != nil {
		reader = strings.NewReader(string(body))
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		decoded = body
	}

	if !looksLikeHTML(decoded) {
		return nil, NewExtractionError(ErrExtractQuality, "resposta não parece ser uma página HTML", nil)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(decoded)))
	if err != nil {
		return nil, NewExtractionError(ErrExtractQuality, "falha ao interpretar o HTML", err)
	}

	meta := pageMetadata(doc)
	doc.Find(nonContentSelector).Remove()

	text := extractMainText(doc)
	if err := checkContentQuality(text, meta.Title); err != nil {
		return nil, err
	}

	return &ExtractedContent{Text: text, Metadata: meta}, nil
}

func setBrowserHeaders(req *http.Request) {
	headers := map[string]string{
		"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "pt-BR,pt;q=0.9,en-US;q=0.5,en;q=0.3",
		"Connection":                "keep-alive",
		"Referer":                   "https://www.google.com/",
		"DNT":                       "1",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}

// extractMainText tries each content selector and keeps the longest text
// found, then falls back to paragraph concatenation and finally the whole
// body text when nothing reaches the length floor.
func extractMainText(doc *goquery.Document) string {
	best := ""
	for _, selector := range contentSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if text := squashSpaces(sel.Text()); len(text) > len(best) {
				best = text
			}
		})
	}
	if len(best) >= 200 {
		return best
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if text := squashSpaces(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if joined := strings.Join(paragraphs, "\n"); len(joined) >= 200 {
		return joined
	}

	return squashSpaces(doc.Find("body").Text())
}

func pageMetadata(doc *goquery.Document) ContentMetadata {
	meta := ContentMetadata{}

	meta.Title = squashSpaces(doc.Find("title").First().Text())
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && og != "" {
		meta.Title = og
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		meta.Description = desc
	} else if og, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		meta.Description = og
	}
	if lang, ok := doc.Find("html").Attr("lang"); ok {
		meta.Language = lang
	}
	return meta
}

// checkContentQuality rejects text that is recognizably not article
// content. Returning an error page's boilerplate as article text would
// poison the downstream verdict with garbage input.
func checkContentQuality(text, title string) error {
	if countRealWords(text) < 15 {
		return NewExtractionError(ErrExtractQuality, "conteúdo extraído muito curto", nil)
	}

	probe := text
	if len(probe) > 1000 {
		probe = probe[:1000]
	}
	for _, pattern := range errorPagePatterns {
		if pattern.MatchString(probe) || pattern.MatchString(title) {
			return NewExtractionError(ErrExtractQuality,
				"a página parece ser uma página de erro", nil)
		}
	}
	return nil
}

// countRealWords counts tokens longer than 2 characters
func countRealWords(text string) int {
	count := 0
	for _, field := range strings.Fields(text) {
		if len([]rune(field)) > 2 {
			count++
		}
	}
	return count
}

// looksLikeHTML distinguishes HTML documents from JSON payloads and
// redirect-only stubs
func looksLikeHTML(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return false
	}
	lower := strings.ToLower(trimmed)
	if !strings.Contains(lower, "<html") && !strings.Contains(lower, "<body") &&
		!strings.Contains(lower, "<div") && !strings.Contains(lower, "<p") &&
		!strings.Contains(lower, "<article") {
		return false
	}
	// Pages that only exist to redirect via meta refresh carry no content
	if strings.Contains(lower, `http-equiv="refresh"`) && len(trimmed) < 600 {
		return false
	}
	return true
}

func squashSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
