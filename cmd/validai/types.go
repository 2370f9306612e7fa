package main

import "time"

// Verdict classifications returned by the pipeline
const (
	ClassificationTrue         = "VERDADEIRO"
	ClassificationFalse        = "FALSO"
	ClassificationPartial      = "PARCIALMENTE_VERDADEIRO"
	ClassificationUnverifiable = "NAO_VERIFICAVEL"
)

// Confidence levels
const (
	ConfidenceHigh   = "ALTO"
	ConfidenceMedium = "MEDIO"
	ConfidenceLow    = "BAIXO"
)

// Political bias categories
const (
	BiasLeft    = "ESQUERDA"
	BiasCenter  = "CENTRO"
	BiasRight   = "DIREITA"
	BiasUnknown = "DESCONHECIDO"
)

// Input types accepted by a verification request
const (
	InputTypeText = "text"
	InputTypeURL  = "url"
)

// Extraction method labels
const (
	MethodPrimary  = "primary"
	MethodFallback = "fallback"
)

// VerificationRequest is the inbound contract for one verification attempt
type VerificationRequest struct {
	InputType string `json:"inputType"`
	Content   string `json:"content"`
	URL       string `json:"url,omitempty"`
}

// SearchResult is one candidate evidentiary source returned by the
// evidence searcher. It lives only for the duration of a pipeline run.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Date    string `json:"date,omitempty"`
}

// Source is a citation attached to a verification result
type Source struct {
	Name          string `json:"name"`
	URL           string `json:"url,omitempty"`
	Description   string `json:"description"`
	Year          int    `json:"year,omitempty"`
	PoliticalBias string `json:"political_bias,omitempty"`
}

// BiasDistribution is the percentage breakdown of a result's sources.
// Buckets are rounded independently and may not sum to exactly 100.
type BiasDistribution struct {
	Esquerda     int `json:"esquerda"`
	Centro       int `json:"centro"`
	Direita      int `json:"direita"`
	Desconhecido int `json:"desconhecido"`
}

// VerificationResult is the pipeline's output contract
type VerificationResult struct {
	Classification         string            `json:"classification"`
	ConfidencePercentage   int               `json:"confidence_percentage"`
	ConfidenceLevel        string            `json:"confidence_level"`
	Explanation            string            `json:"explanation"`
	TemporalContext        string            `json:"temporal_context"`
	DetectedBias           string            `json:"detected_bias"`
	Sources                []Source          `json:"sources"`
	Observations           string            `json:"observations,omitempty"`
	ProcessingTimeMs       int64             `json:"processing_time_ms,omitempty"`
	Timestamp              string            `json:"timestamp,omitempty"`
	SourceBiasDistribution *BiasDistribution `json:"source_bias_distribution,omitempty"`
	TotalSources           int               `json:"total_sources,omitempty"`
}

// ContentMetadata describes how a page's text was obtained
type ContentMetadata struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Language         string `json:"language"`
	SourceURL        string `json:"sourceURL"`
	ExtractionMethod string `json:"extractionMethod"`
	WordCount        int    `json:"wordCount"`
	FromCache        bool   `json:"fromCache"`
}

// ExtractedContent is the content extractor's output
type ExtractedContent struct {
	Text     string          `json:"text"`
	Metadata ContentMetadata `json:"metadata"`
}

// MediaBiasEntry is one row of the static media bias table
type MediaBiasEntry struct {
	Domain string `yaml:"domain" json:"domain"`
	Name   string `yaml:"name" json:"name"`
	Bias   string `yaml:"bias" json:"bias"`
}

// TrendingItem is one headline from the trending news feed
type TrendingItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// APIResponse is the JSON envelope returned by every API endpoint
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func validClassification(s string) bool {
	switch s {
	case ClassificationTrue, ClassificationFalse, ClassificationPartial, ClassificationUnverifiable:
		return true
	}
	return false
}

func validConfidenceLevel(s string) bool {
	switch s {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

func validBias(s string) bool {
	switch s {
	case BiasLeft, BiasCenter, BiasRight, BiasUnknown:
		return true
	}
	return false
}
