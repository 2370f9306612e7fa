package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleParagraph = "O Instituto Brasileiro de Geografia e Estatística divulgou nesta semana novos dados sobre a população " +
	"brasileira, apontando crescimento em todas as regiões do país segundo o levantamento mais recente realizado pelo órgão. "

func articleHTML() string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<title>Censo aponta crescimento populacional</title>
<meta name="description" content="Novos dados do IBGE">
</head>
<body>
<nav>Menu Principal Notícias Esportes</nav>
<article><h1>Censo aponta crescimento</h1><p>%s</p><p>%s</p></article>
<footer>Todos os direitos reservados</footer>
</body>
</html>`, strings.Repeat(articleParagraph, 3), strings.Repeat(articleParagraph, 2))
}

func newTestExtractor(cache *ContentCache) *Extractor {
	return &Extractor{
		strategies:        []extractionStrategy{newHTTPStrategy()},
		cache:             cache,
		allowPrivateHosts: true,
	}
}

func TestExtractArticle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articleHTML())
	}))
	defer server.Close()

	extractor := newTestExtractor(NewContentCache(time.Hour, 100))

	content, err := extractor.Extract(context.Background(), server.URL+"/noticia")
	require.NoError(t, err)

	assert.Contains(t, content.Text, "Instituto Brasileiro de Geografia")
	assert.NotContains(t, content.Text, "Menu Principal")
	assert.NotContains(t, content.Text, "direitos reservados")
	assert.Equal(t, MethodFallback, content.Metadata.ExtractionMethod)
	assert.Equal(t, "pt-BR", content.Metadata.Language)
	assert.Equal(t, "Novos dados do IBGE", content.Metadata.Description)
	assert.False(t, content.Metadata.FromCache)
	assert.Greater(t, content.Metadata.WordCount, 50)
}

func TestExtractUsesCacheOnSecondRequest(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articleHTML())
	}))
	defer server.Close()

	extractor := newTestExtractor(NewContentCache(time.Hour, 100))

	first, err := extractor.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, first.Metadata.FromCache)

	second, err := extractor.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, second.Metadata.FromCache)
	assert.Equal(t, 1, requests, "cached extraction must not hit the network again")
}

func TestExtractRejectsErrorPage(t *testing.T) {
	body := `<html><body><div class="content">` +
		strings.Repeat("Infelizmente este endereço não está mais disponível em nosso portal de notícias. ", 5) +
		`Página não encontrada. Verifique o endereço digitado e tente novamente mais tarde.</div></body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	extractor := newTestExtractor(NewContentCache(time.Hour, 100))

	_, err := extractor.Extract(context.Background(), server.URL)
	require.Error(t, err)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrorTypeExtraction, appErr.Type)
}

func TestExtractRejectsJSONPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"error": "not a page"}`)
	}))
	defer server.Close()

	extractor := newTestExtractor(NewContentCache(time.Hour, 100))

	_, err := extractor.Extract(context.Background(), server.URL)
	require.Error(t, err)
}

func TestExtractRejectsTooFewRealWords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><p>ok vai ser né</p></body></html>`)
	}))
	defer server.Close()

	extractor := newTestExtractor(NewContentCache(time.Hour, 100))

	_, err := extractor.Extract(context.Background(), server.URL)
	require.Error(t, err)
}

func TestExtractRejectsHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	extractor := newTestExtractor(NewContentCache(time.Hour, 100))

	_, err := extractor.Extract(context.Background(), server.URL)
	require.Error(t, err)
}

func TestExtractValidatesURL(t *testing.T) {
	extractor := &Extractor{
		strategies: []extractionStrategy{newHTTPStrategy()},
		cache:      NewContentCache(time.Hour, 100),
	}

	tests := []struct {
		name string
		url  string
	}{
		{"ftp scheme", "ftp://example.com/file"},
		{"javascript scheme", "javascript:alert(1)"},
		{"localhost", "http://localhost/admin"},
		{"loopback ip", "http://127.0.0.1:8080/"},
		{"private network", "http://192.168.1.1/router"},
		{"link local metadata", "http://169.254.169.254/latest/meta-data/"},
		{"cloud metadata host", "http://metadata.google.internal/computeMetadata/"},
		{"no hostname", "https:///path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractor.Extract(context.Background(), tt.url)
			require.Error(t, err)

			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, ErrorTypeInput, appErr.Type)
		})
	}
}

func TestExtractFallsThroughFailingStrategy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articleHTML())
	}))
	defer server.Close()

	failing := &stubStrategy{err: NewExtractionError(ErrExtractFetch, "render failed", nil)}
	extractor := &Extractor{
		strategies:        []extractionStrategy{failing, newHTTPStrategy()},
		cache:             NewContentCache(time.Hour, 100),
		allowPrivateHosts: true,
	}

	content, err := extractor.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, MethodFallback, content.Metadata.ExtractionMethod)
	assert.True(t, failing.called)
}

func TestExtractExhaustedStrategies(t *testing.T) {
	failing := &stubStrategy{err: NewExtractionError(ErrExtractFetch, "boom", nil)}
	extractor := &Extractor{
		strategies:        []extractionStrategy{failing},
		cache:             NewContentCache(time.Hour, 100),
		allowPrivateHosts: true,
	}

	_, err := extractor.Extract(context.Background(), "https://example.com/x")
	require.Error(t, err)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrExtractExhausted, appErr.Code)
}

type stubStrategy struct {
	content *ExtractedContent
	err     error
	called  bool
}

func (s *stubStrategy) name() string { return MethodPrimary }

func (s *stubStrategy) tryExtract(ctx context.Context, pageURL string) (*ExtractedContent, error) {
	s.called = true
	return s.content, s.err
}

func TestCleanText(t *testing.T) {
	dirty := "Primeira   linha\n\n\nSegunda\tlinha\x00com lixo\n   \n"
	assert.Equal(t, "Primeira linha\nSegunda linha com lixo", cleanText(dirty))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "ação", truncateRunes("ação", 10))
	assert.Equal(t, "aç", truncateRunes("ação", 2))
}
