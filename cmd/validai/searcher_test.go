package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSearcher(endpoint, key string) *Searcher {
	return &Searcher{
		endpoint: endpoint,
		apiKey:   key,
		client:   &http.Client{Timeout: 2 * time.Second},
	}
}

func searchBody(results ...[2]string) string {
	type organic struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	}
	var items []organic
	for _, r := range results {
		items = append(items, organic{Title: r[0], Link: r[1], Snippet: "trecho"})
	}
	body, _ := json.Marshal(map[string]interface{}{"organic": items})
	return string(body)
}

func TestSearchWithoutKeyReturnsNoEvidence(t *testing.T) {
	searcher := newTestSearcher("http://unused.invalid", "")
	assert.Nil(t, searcher.Search(context.Background(), "qualquer alegação", 10))
}

func TestSearchMergesQueriesAndDedupes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.Header.Get("X-API-KEY"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		query, _ := payload["q"].(string)

		// Every query returns one shared URL plus one unique to it
		unique := fmt.Sprintf("https://example.com/%d", len(query))
		fmt.Fprint(w, searchBody(
			[2]string{"Compartilhada", "https://g1.globo.com/compartilhada"},
			[2]string{"Única", unique},
		))
	}))
	defer server.Close()

	searcher := newTestSearcher(server.URL, "test-key")
	results := searcher.Search(context.Background(), "o céu é azul", 10)

	urls := make(map[string]int)
	for _, r := range results {
		urls[r.URL]++
	}
	assert.Equal(t, 1, urls["https://g1.globo.com/compartilhada"], "duplicate URLs must collapse")
	assert.Len(t, results, 4, "one shared plus three unique results")
}

func TestSearchToleratesPartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		query, _ := payload["q"].(string)

		if strings.HasPrefix(query, "checagem de fatos") {
			http.Error(w, "upstream broken", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, searchBody([2]string{"Resultado " + query, "https://example.com/" + fmt.Sprint(len(query))}))
	}))
	defer server.Close()

	searcher := newTestSearcher(server.URL, "test-key")
	results := searcher.Search(context.Background(), "alegação de teste", 10)

	assert.Len(t, results, 2, "failing query is skipped, the others still contribute")
}

func TestSearchAllQueriesFailing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	searcher := newTestSearcher(server.URL, "test-key")
	assert.Empty(t, searcher.Search(context.Background(), "alegação", 10))
}

func TestSearchCapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		query, _ := payload["q"].(string)

		var items [][2]string
		for i := 0; i < 5; i++ {
			items = append(items, [2]string{"T", fmt.Sprintf("https://example.com/%d/%d", len(query), i)})
		}
		fmt.Fprint(w, searchBody(items...))
	}))
	defer server.Close()

	searcher := newTestSearcher(server.URL, "test-key")
	results := searcher.Search(context.Background(), "alegação", 4)

	assert.Len(t, results, 4)
}

func TestBuildQueries(t *testing.T) {
	queries := buildQueries("O Brasil é o maior país da América do Sul.")
	require.Len(t, queries, 3)
	assert.Equal(t, "O Brasil é o maior país da América do Sul.", queries[0])
	assert.Contains(t, queries[1], "checagem de fatos")
	assert.Contains(t, queries[2], "fontes confiáveis")
}
