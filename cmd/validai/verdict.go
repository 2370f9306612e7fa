package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// chatCompleter is the slice of the OpenAI-compatible client the verdict
// generator uses; tests substitute a fake
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// VerdictGenerator turns a claim plus gathered evidence into a validated
// VerificationResult via the Perplexity chat-completion API
type VerdictGenerator struct {
	client  chatCompleter
	model   string
	timeout time.Duration
}

// NewVerdictGenerator creates the generator. The completion credential is
// mandatory; its absence is a configuration error, not a runtime degrade.
func NewVerdictGenerator(cfg *Config) (*VerdictGenerator, error) {
	if cfg.PerplexityAPIKey == "" {
		return nil, NewConfigError(ErrConfigMissingKey, "PERPLEXITY_API_KEY não configurada", nil)
	}

	clientCfg := openai.DefaultConfig(cfg.PerplexityAPIKey)
	clientCfg.BaseURL = cfg.PerplexityBaseURL

	return &VerdictGenerator{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.PerplexityModel,
		timeout: 60 * time.Second,
	}, nil
}

const systemPromptHeader = `Você é ValidaÍ, sistema de verificação de notícias da UniBrasil. Analise a informação fornecida e retorne APENAS um JSON válido com esta estrutura exata:

{
  "classification": "VERDADEIRO|FALSO|PARCIALMENTE_VERDADEIRO|NAO_VERIFICAVEL",
  "confidence_percentage": 0-100,
  "confidence_level": "ALTO|MEDIO|BAIXO",
  "explanation": "explicação detalhada em português brasileiro",
  "temporal_context": "contexto temporal das informações",
  "detected_bias": "análise de viés detectado",
  "sources": [
    {
      "name": "nome da fonte",
      "url": "url se disponível",
      "description": "descrição da fonte",
      "year": 2024
    }
  ],
  "observations": "observações importantes"
}

Diretrizes:
- Use linguagem acessível para adultos 30+
- Cite fontes brasileiras quando possível
- Seja neutro e didático
- Explique claramente o motivo da classificação
- Indique limitações da análise`

// buildSystemPrompt renders the fixed schema instruction plus the
// gathered evidence and page metadata, when present
func (g *VerdictGenerator) buildSystemPrompt(evidence []SearchResult, meta *ContentMetadata) string {
	var sb strings.Builder
	sb.WriteString(systemPromptHeader)

	if len(evidence) > 0 {
		sb.WriteString("\n\nEvidências coletadas na web (fundamente sua análise nelas e avalie a credibilidade de cada fonte):\n")
		for _, ev := range evidence {
			sb.WriteString(fmt.Sprintf("- %s (%s)", ev.Title, ev.URL))
			if ev.Date != "" {
				sb.WriteString(" [" + ev.Date + "]")
			}
			if ev.Snippet != "" {
				sb.WriteString(": " + ev.Snippet)
			}
			sb.WriteString("\n")
		}
	}

	if meta != nil {
		sb.WriteString("\nMetadados da página analisada (use para avaliar a credibilidade da origem):\n")
		if meta.Title != "" {
			sb.WriteString("- Título: " + meta.Title + "\n")
		}
		if meta.Description != "" {
			sb.WriteString("- Descrição: " + meta.Description + "\n")
		}
		if meta.SourceURL != "" {
			sb.WriteString("- URL de origem: " + meta.SourceURL + "\n")
		}
		sb.WriteString("- Método de extração: " + meta.ExtractionMethod + "\n")
	}

	return sb.String()
}

// Classify asks the model for a verdict and degrades gracefully when its
// output is malformed: a fully valid candidate is returned as-is, a
// candidate with a usable classification is repaired field by field, and
// anything else becomes the terminal NAO_VERIFICAVEL fallback. Only a
// failed completion call itself is surfaced as an error.
func (g *VerdictGenerator) Classify(ctx context.Context, claim string, evidence []SearchResult, meta *ContentMetadata, startedAt time.Time) (*VerificationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: g.buildSystemPrompt(evidence, meta)},
			{Role: openai.ChatMessageRoleUser, Content: "Analise esta informação: " + claim},
		},
		MaxTokens:   2000,
		Temperature: 0.2,
		TopP:        0.9,
		Stream:      false,
	})
	if err != nil {
		return nil, NewAIError(ErrAIUpstream, "falha na chamada à API de verificação", err)
	}
	if len(resp.Choices) == 0 {
		Logger().Warning("AI completion returned no choices")
		return g.terminalFallback(evidence, startedAt), nil
	}

	raw := stripCodeFence(resp.Choices[0].Message.Content)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		Logger().Warning("AI response is not valid JSON: %v", err)
		return g.terminalFallback(evidence, startedAt), nil
	}

	candidate := g.buildCandidate(parsed, startedAt)
	issues := validateResult(candidate)
	if len(issues) == 0 {
		return candidate, nil
	}

	Logger().Warning("AI response failed schema validation: %v", issues)
	if validClassification(strings.ToUpper(asString(parsed["classification"]))) {
		return g.repair(candidate, evidence), nil
	}
	return g.terminalFallback(evidence, startedAt), nil
}

// buildCandidate assembles a result from untyped model output,
// substituting per-field defaults for missing strings
func (g *VerdictGenerator) buildCandidate(parsed map[string]interface{}, startedAt time.Time) *VerificationResult {
	confidence, _ := asInt(parsed["confidence_percentage"])

	return &VerificationResult{
		Classification:       strings.ToUpper(asString(parsed["classification"])),
		ConfidencePercentage: confidence,
		ConfidenceLevel:      strings.ToUpper(asString(parsed["confidence_level"])),
		Explanation:          asStringOr(parsed["explanation"], "Análise não disponível"),
		TemporalContext:      asStringOr(parsed["temporal_context"], "Contexto temporal não determinado"),
		DetectedBias:         asStringOr(parsed["detected_bias"], "Análise de viés não disponível"),
		Sources:              sanitizeSources(parsed["sources"]),
		Observations:         asString(parsed["observations"]),
		ProcessingTimeMs:     time.Since(startedAt).Milliseconds(),
		Timestamp:            time.Now().UTC().Format(time.RFC3339),
	}
}

// repair salvages a candidate whose classification is usable but whose
// other fields failed validation. Rejecting an otherwise useful verdict
// over one malformed subfield would waste the AI call entirely.
func (g *VerdictGenerator) repair(candidate *VerificationResult, evidence []SearchResult) *VerificationResult {
	candidate.ConfidencePercentage = clampPercentage(candidate.ConfidencePercentage)
	candidate.ConfidenceLevel = coerceConfidenceLevel(candidate.ConfidenceLevel)
	if strings.TrimSpace(candidate.Explanation) == "" {
		candidate.Explanation = "A análise foi concluída, mas parte da resposta da IA não pôde ser validada."
	}
	if candidate.Observations == "" {
		candidate.Observations = "Resposta parcialmente validada - alguns campos foram normalizados"
	}
	if len(candidate.Sources) == 0 {
		candidate.Sources = sourcesFromEvidence(evidence, 3)
	} else {
		// Keep only entries that survive validation
		valid := candidate.Sources[:0]
		for _, s := range candidate.Sources {
			if strings.TrimSpace(s.Name) != "" {
				if s.URL != "" && !isValidAbsoluteURL(s.URL) {
					s.URL = ""
				}
				valid = append(valid, s)
			}
		}
		candidate.Sources = valid
	}
	return candidate
}

// terminalFallback is returned when the model output could not be used at
// all. It still surfaces gathered evidence so the user gets something.
func (g *VerdictGenerator) terminalFallback(evidence []SearchResult, startedAt time.Time) *VerificationResult {
	return &VerificationResult{
		Classification:       ClassificationUnverifiable,
		ConfidencePercentage: 0,
		ConfidenceLevel:      ConfidenceLow,
		Explanation: "Não foi possível processar a resposta da análise de IA. Recomendamos verificar a informação " +
			"manualmente em veículos confiáveis como Agência Lupa, Aos Fatos, G1 Fato ou Fake e Agência Brasil.",
		TemporalContext:  "Não determinado",
		DetectedBias:     "Não analisado",
		Sources:          sourcesFromEvidence(evidence, 5),
		Observations:     "Erro de processamento - resposta não estruturada",
		ProcessingTimeMs: time.Since(startedAt).Milliseconds(),
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
	}
}

// stripCodeFence removes markdown code-fence wrappers models love to add
func stripCodeFence(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// sanitizeSources normalizes the model's free-form source list: entries
// that are not objects are dropped, invalid URLs are stripped while the
// entry survives on its name, and entries with neither name nor URL are
// discarded.
func sanitizeSources(raw interface{}) []Source {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	var sources []Source
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		name := asString(m["name"])
		if name == "" {
			name = asString(m["title"])
		}
		desc := asString(m["description"])
		if desc == "" {
			desc = asString(m["snippet"])
		}
		rawURL := asString(m["url"])
		if rawURL != "" && !isValidAbsoluteURL(rawURL) {
			rawURL = ""
		}
		if name == "" && rawURL == "" {
			continue
		}
		if name == "" {
			name = rawURL
		}
		if desc == "" {
			desc = "Fonte citada pela análise"
		}

		source := Source{Name: name, URL: rawURL, Description: desc}
		if year, ok := asInt(m["year"]); ok && year > 0 {
			source.Year = year
		}
		sources = append(sources, source)
	}
	return sources
}

// sourcesFromEvidence converts search results into displayable sources
func sourcesFromEvidence(evidence []SearchResult, limit int) []Source {
	var sources []Source
	for _, ev := range evidence {
		if len(sources) >= limit {
			break
		}
		name := ev.Title
		if name == "" {
			name = ev.URL
		}
		if name == "" {
			continue
		}
		desc := ev.Snippet
		if desc == "" {
			desc = "Resultado de busca relacionado à informação analisada"
		}
		rawURL := ev.URL
		if rawURL != "" && !isValidAbsoluteURL(rawURL) {
			rawURL = ""
		}
		sources = append(sources, Source{Name: name, URL: rawURL, Description: desc})
	}
	return sources
}
