package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(completion string) *Pipeline {
	gen, _ := newTestGenerator(completion, nil)
	cache := NewContentCache(time.Hour, 100)
	extractor := newTestExtractor(cache)
	searcher := newTestSearcher("http://unused.invalid", "") // zero-evidence mode

	return NewPipeline(extractor, searcher, gen, NewBiasClassifier(defaultMediaBiasTable), nil, 10)
}

const ibgeVerdict = `{
	"classification": "VERDADEIRO",
	"confidence_percentage": 90,
	"confidence_level": "ALTO",
	"explanation": "Confirmado por dados oficiais do IBGE.",
	"temporal_context": "Dados atuais",
	"detected_bias": "Nenhum",
	"sources": [
		{"name": "IBGE", "url": "https://ibge.gov.br/x", "description": "Instituto oficial de estatística"}
	]
}`

func TestPipelineTextVerification(t *testing.T) {
	pipeline := newTestPipeline(ibgeVerdict)

	result, err := pipeline.Verify(context.Background(), "req-1", &VerificationRequest{
		InputType: InputTypeText,
		Content:   "O Brasil é o maior país da América do Sul.",
	})
	require.NoError(t, err)

	assert.Equal(t, ClassificationTrue, result.Classification)
	assert.Equal(t, 90, result.ConfidencePercentage)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, BiasCenter, result.Sources[0].PoliticalBias)

	require.NotNil(t, result.SourceBiasDistribution)
	assert.Equal(t, BiasDistribution{Esquerda: 0, Centro: 100, Direita: 0, Desconhecido: 0}, *result.SourceBiasDistribution)
	assert.Equal(t, 1, result.TotalSources)
	assert.NotEmpty(t, result.Timestamp)
	assert.GreaterOrEqual(t, result.ProcessingTimeMs, int64(0))
}

func TestPipelineURLVerification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articleHTML())
	}))
	defer server.Close()

	pipeline := newTestPipeline(ibgeVerdict)

	result, err := pipeline.Verify(context.Background(), "req-2", &VerificationRequest{
		InputType: InputTypeURL,
		Content:   "",
		URL:       server.URL + "/noticia",
	})
	require.NoError(t, err)
	assert.Equal(t, ClassificationTrue, result.Classification)
}

func TestPipelineURLExtractionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	pipeline := newTestPipeline(ibgeVerdict)

	_, err := pipeline.Verify(context.Background(), "req-3", &VerificationRequest{
		InputType: InputTypeURL,
		URL:       server.URL,
	})
	require.Error(t, err)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrorTypeExtraction, appErr.Type)
}

func TestPipelineMalformedModelOutputStillSucceeds(t *testing.T) {
	pipeline := newTestPipeline("isso definitivamente não é JSON")

	result, err := pipeline.Verify(context.Background(), "req-4", &VerificationRequest{
		InputType: InputTypeText,
		Content:   "alguma alegação",
	})
	require.NoError(t, err)
	assert.Equal(t, ClassificationUnverifiable, result.Classification)
	assert.Equal(t, 0, result.ConfidencePercentage)
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     *VerificationRequest
		wantErr bool
	}{
		{"valid text", &VerificationRequest{InputType: InputTypeText, Content: "alegação"}, false},
		{"valid url", &VerificationRequest{InputType: InputTypeURL, URL: "https://example.com/x"}, false},
		{"blank text", &VerificationRequest{InputType: InputTypeText, Content: "   "}, true},
		{"missing url", &VerificationRequest{InputType: InputTypeURL}, true},
		{"relative url", &VerificationRequest{InputType: InputTypeURL, URL: "/caminho"}, true},
		{"bad scheme", &VerificationRequest{InputType: InputTypeURL, URL: "ftp://example.com"}, true},
		{"bad input type", &VerificationRequest{InputType: "audio", Content: "x"}, true},
		{"nil request", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.req)
			if tt.wantErr {
				require.Error(t, err)
				var appErr *AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, ErrorTypeInput, appErr.Type)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
