package main

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Pipeline sequences content extraction, evidence search, verdict
// generation and bias enrichment for one verification request
type Pipeline struct {
	extractor   *Extractor
	searcher    *Searcher
	verdicts    *VerdictGenerator
	bias        *BiasClassifier
	events      *EventHub
	maxEvidence int
}

// NewPipeline wires the pipeline components together. events may be nil.
func NewPipeline(extractor *Extractor, searcher *Searcher, verdicts *VerdictGenerator, bias *BiasClassifier, events *EventHub, maxEvidence int) *Pipeline {
	return &Pipeline{
		extractor:   extractor,
		searcher:    searcher,
		verdicts:    verdicts,
		bias:        bias,
		events:      events,
		maxEvidence: maxEvidence,
	}
}

// Verify runs the full pipeline for one request. URL inputs are extracted
// into article text first; evidence search failures degrade silently; the
// verdict generator only errors on infrastructure failures.
func (p *Pipeline) Verify(ctx context.Context, requestID string, req *VerificationRequest) (*VerificationResult, error) {
	start := time.Now()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	p.publish(requestID, "received", req.InputType)

	content := strings.TrimSpace(req.Content)
	var meta *ContentMetadata

	if req.InputType == InputTypeURL {
		extracted, err := p.extractor.Extract(ctx, req.URL)
		if err != nil {
			countExtractionFailure()
			return nil, err
		}
		content = extracted.Text
		meta = &extracted.Metadata
		p.publish(requestID, "extracted", extracted.Metadata.ExtractionMethod)
	}

	evidence := p.searcher.Search(ctx, content, p.maxEvidence)
	p.publish(requestID, "searched", "")

	result, err := p.verdicts.Classify(ctx, content, evidence, meta, start)
	if err != nil {
		countAIFailure()
		return nil, err
	}
	p.publish(requestID, "classified", result.Classification)

	p.enrichBias(result)
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	result.Timestamp = time.Now().UTC().Format(time.RFC3339)

	countVerification(result.Classification)
	p.publish(requestID, "completed", result.Classification)
	return result, nil
}

// enrichBias tags each returned source with its publisher's political
// bias and attaches the distribution summary
func (p *Pipeline) enrichBias(result *VerificationResult) {
	for i := range result.Sources {
		result.Sources[i].PoliticalBias = p.bias.Classify(result.Sources[i].URL, result.Sources[i].Name)
	}
	dist := p.bias.Distribution(result.Sources)
	result.SourceBiasDistribution = &dist
	result.TotalSources = len(result.Sources)
}

func (p *Pipeline) publish(requestID, stage, detail string) {
	if p.events == nil {
		return
	}
	p.events.Broadcast(PipelineEvent{
		RequestID: requestID,
		Stage:     stage,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
}

// validateRequest rejects malformed requests before any network activity
func validateRequest(req *VerificationRequest) error {
	if req == nil {
		return NewInputError(ErrInputShape, "requisição vazia", nil)
	}
	switch req.InputType {
	case InputTypeText:
		if strings.TrimSpace(req.Content) == "" {
			return NewInputError(ErrInputBlank, "conteúdo não pode estar vazio", nil)
		}
	case InputTypeURL:
		if req.URL == "" {
			return NewInputError(ErrInputURL, "URL é obrigatória quando tipo é 'url'", nil)
		}
		parsed, err := url.Parse(req.URL)
		if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return NewInputError(ErrInputURL, "URL inválida", err)
		}
	default:
		return NewInputError(ErrInputShape, "inputType deve ser 'text' ou 'url'", nil)
	}
	return nil
}
