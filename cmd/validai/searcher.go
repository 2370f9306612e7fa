package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Searcher gathers candidate evidentiary sources for a claim from an
// external web-search API. It never fails the pipeline: every internal
// failure is logged and absorbed, and the worst case is an empty list.
type Searcher struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewSearcher creates a searcher. An empty API key leaves the searcher
// functional but degraded to zero-evidence runs.
func NewSearcher(cfg *Config) *Searcher {
	return &Searcher{
		endpoint: cfg.SearchAPIURL,
		apiKey:   cfg.SearchAPIKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// searchResponse is the wire shape of the search API's answer
type searchResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
		Date    string `json:"date"`
	} `json:"organic"`
}

// Search runs a small set of distinct queries derived from the claim
// concurrently and merges their results. One slow or failing query never
// blocks or poisons the others.
func (s *Searcher) Search(ctx context.Context, claim string, maxResults int) []SearchResult {
	if s.apiKey == "" {
		Logger().Debug("search capability not configured, proceeding without evidence")
		return nil
	}

	queries := buildQueries(claim)

	var (
		mu  sync.Mutex
		all []SearchResult
		wg  sync.WaitGroup
	)
	for _, query := range queries {
		wg.Add(1)
		go func(q string) {
			defer wg.Done()
			results, err := s.runQuery(ctx, q)
			if err != nil {
				countSearchFailure()
				Logger().Warning("search query failed, continuing with partial results: %v", err)
				return
			}
			mu.Lock()
			all = append(all, results...)
			mu.Unlock()
		}(query)
	}
	wg.Wait()

	return dedupeByURL(all, maxResults)
}

// buildQueries derives distinct search queries from the claim: the raw
// claim, a fact-check rephrasing and a reliable-sources rephrasing.
func buildQueries(claim string) []string {
	trimmed := truncateRunes(claim, 180)
	return []string{
		trimmed,
		"checagem de fatos: " + trimmed,
		"fontes confiáveis sobre " + trimmed,
	}
}

func (s *Searcher) runQuery(ctx context.Context, query string) ([]SearchResult, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"q":   query,
		"gl":  "br",
		"hl":  "pt-br",
		"num": 5,
		"tbs": "qdr:m", // prefer results from the last month
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, NewError(ErrorTypeSearch, ErrSearchUpstream, "search request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewError(ErrorTypeSearch, ErrSearchUpstream,
			fmt.Sprintf("search API returned status %d", resp.StatusCode), nil)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, NewError(ErrorTypeSearch, ErrSearchUpstream, "search response malformed", err)
	}

	var results []SearchResult
	for _, item := range parsed.Organic {
		if item.Link == "" {
			continue
		}
		results = append(results, SearchResult{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
			Date:    item.Date,
		})
	}
	return results, nil
}

func dedupeByURL(results []SearchResult, max int) []SearchResult {
	seen := make(map[string]bool, len(results))
	var out []SearchResult
	for _, r := range results {
		if seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		out = append(out, r)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}
