package main

import (
	"sync"
	"time"
)

// appMetrics holds in-process counters surfaced by /api/stats
type appMetrics struct {
	mu                 sync.RWMutex
	startedAt          time.Time
	verificationsTotal int64
	byClassification   map[string]int64
	extractionFailures int64
	searchFailures     int64
	aiFailures         int64
}

var metrics = &appMetrics{
	startedAt:        time.Now(),
	byClassification: make(map[string]int64),
}

func countVerification(classification string) {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	metrics.verificationsTotal++
	metrics.byClassification[classification]++
}

func countExtractionFailure() {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	metrics.extractionFailures++
}

func countSearchFailure() {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	metrics.searchFailures++
}

func countAIFailure() {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	metrics.aiFailures++
}

// MetricsSnapshot returns the current counters plus cache statistics
func MetricsSnapshot(cache *ContentCache) map[string]interface{} {
	metrics.mu.RLock()
	defer metrics.mu.RUnlock()

	byClass := make(map[string]int64, len(metrics.byClassification))
	for k, v := range metrics.byClassification {
		byClass[k] = v
	}

	snapshot := map[string]interface{}{
		"uptime_seconds":      int64(time.Since(metrics.startedAt).Seconds()),
		"verifications_total": metrics.verificationsTotal,
		"by_classification":   byClass,
		"extraction_failures": metrics.extractionFailures,
		"search_failures":     metrics.searchFailures,
		"ai_failures":         metrics.aiFailures,
	}
	if cache != nil {
		hits, misses := cache.Stats()
		snapshot["extraction_cache"] = map[string]interface{}{
			"entries": cache.Len(),
			"hits":    hits,
			"misses":  misses,
		}
	}
	return snapshot
}
