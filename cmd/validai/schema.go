package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ValidationIssue records one field that failed schema validation
type ValidationIssue struct {
	Field  string
	Detail string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Detail)
}

// validateResult checks a candidate result against the strict output
// schema. It returns the full list of failing fields so the caller can
// decide between returning, repairing, or discarding the candidate.
func validateResult(r *VerificationResult) []ValidationIssue {
	var issues []ValidationIssue

	if !validClassification(r.Classification) {
		issues = append(issues, ValidationIssue{"classification", fmt.Sprintf("valor %q fora do enum", r.Classification)})
	}
	if r.ConfidencePercentage < 0 || r.ConfidencePercentage > 100 {
		issues = append(issues, ValidationIssue{"confidence_percentage", fmt.Sprintf("%d fora do intervalo [0,100]", r.ConfidencePercentage)})
	}
	if !validConfidenceLevel(r.ConfidenceLevel) {
		issues = append(issues, ValidationIssue{"confidence_level", fmt.Sprintf("valor %q fora do enum", r.ConfidenceLevel)})
	}
	if strings.TrimSpace(r.Explanation) == "" {
		issues = append(issues, ValidationIssue{"explanation", "vazio"})
	}
	for i, s := range r.Sources {
		if s.URL != "" && !isValidAbsoluteURL(s.URL) {
			issues = append(issues, ValidationIssue{fmt.Sprintf("sources[%d].url", i), "URL inválida"})
		}
		if strings.TrimSpace(s.Name) == "" {
			issues = append(issues, ValidationIssue{fmt.Sprintf("sources[%d].name", i), "vazio"})
		}
	}

	return issues
}

func isValidAbsoluteURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func clampPercentage(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// coerceConfidenceLevel maps free-form level strings onto the closed enum,
// defaulting to BAIXO
func coerceConfidenceLevel(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case ConfidenceHigh, "HIGH":
		return ConfidenceHigh
	case ConfidenceMedium, "MEDIUM", "MÉDIO":
		return ConfidenceMedium
	case ConfidenceLow, "LOW":
		return ConfidenceLow
	default:
		return ConfidenceLow
	}
}

// asString extracts a string from untyped JSON, tolerating absence
func asString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// asStringOr returns fallback when the untyped value is absent or blank
func asStringOr(v interface{}, fallback string) string {
	if s := asString(v); s != "" {
		return s
	}
	return fallback
}

// asInt extracts an integer from untyped JSON. Models emit numbers both
// as JSON numbers and as digit strings; accept both.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}
