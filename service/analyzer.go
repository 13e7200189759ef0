package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/XyloTech/GOVERN.AI/model"
)

// StructuredExtractor produces a StructuredExtraction from plain text.
// Implementations never fail: on any internal error they degrade rather
// than surface it to the ingestion pipeline.
type StructuredExtractor interface {
	Extract(ctx context.Context, text string) *model.StructuredExtraction
}

// AIExtractor delegates structured extraction to Gemini and falls back to
// a deterministic extractor on any failure: missing credential, transport
// error, or a response with no parseable JSON object.
type AIExtractor struct {
	client   *GeminiClient
	fallback StructuredExtractor
}

func NewAIExtractor(client *GeminiClient, fallback StructuredExtractor) *AIExtractor {
	return &AIExtractor{
		client:   client,
		fallback: fallback,
	}
}

const maxPromptChars = 8000

const extractionPrompt = `Analyze the following contract and extract structured information. Return ONLY a valid JSON object with:
- title: Contract title
- contract_number: Contract number if present
- type: Type of contract (supplier, customer, partnership, employment, nda, other)
- party_a: First party name
- party_b: Second party name
- effective_date: Effective date (ISO format or null)
- expiration_date: Expiration date (ISO format or null)
- renewal_date: Renewal date (ISO format or null)
- contract_value: Monetary value if present
- clauses: Array of clause objects with type, text, and data
- risk_score: Risk score 0-100
- risk_factors: Array of risk factor strings
- risks: Array of risk objects with type, severity, description, mitigation
- tags: Array of relevant tags

Contract text:
`

// jsonObjectRe locates a brace-delimited region permitting one level of
// nested braces.
var jsonObjectRe = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)

func (e *AIExtractor) Extract(ctx context.Context, text string) *model.StructuredExtraction {
	if !e.client.Configured() {
		return e.fallback.Extract(ctx, text)
	}

	truncated := text
	if runes := []rune(text); len(runes) > maxPromptChars {
		truncated = string(runes[:maxPromptChars])
	}

	response, err := e.client.GenerateContent(ctx, extractionPrompt+truncated)
	if err != nil {
		slog.Warn("AI analysis failed, using heuristic extraction", "error", err)
		return e.fallback.Extract(ctx, text)
	}

	parsed, ok := extractJSONObject(response)
	if !ok {
		slog.Warn("no parseable JSON in AI response, using heuristic extraction")
		return e.fallback.Extract(ctx, text)
	}

	return decodeExtraction(parsed)
}

// extractJSONObject scans a model response for a JSON object and parses
// it. On a parse failure one repair is attempted: single quotes replaced
// with double quotes.
func extractJSONObject(response string) (map[string]any, bool) {
	candidate := jsonObjectRe.FindString(response)
	if candidate == "" {
		return nil, false
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
		return parsed, true
	}

	repaired := strings.ReplaceAll(candidate, "'", `"`)
	if err := json.Unmarshal([]byte(repaired), &parsed); err == nil {
		return parsed, true
	}

	return nil, false
}

// decodeExtraction converts the loosely-typed AI output into a
// StructuredExtraction. Fields may be absent, null, or mistyped; each one
// is coerced independently so one bad field never spoils the rest.
func decodeExtraction(m map[string]any) *model.StructuredExtraction {
	extraction := &model.StructuredExtraction{
		Title:          stringField(m, "title"),
		ContractNumber: stringField(m, "contract_number"),
		Type:           stringField(m, "type"),
		Status:         stringField(m, "status"),
		PartyA:         stringField(m, "party_a"),
		PartyB:         stringField(m, "party_b"),
		EffectiveDate:  stringField(m, "effective_date"),
		ExpirationDate: stringField(m, "expiration_date"),
		RenewalDate:    stringField(m, "renewal_date"),
		Currency:       stringField(m, "currency"),
		ContractValue:  floatField(m, "contract_value"),
		RiskScore:      floatField(m, "risk_score"),
		RiskFactors:    stringSliceField(m, "risk_factors"),
		Tags:           stringSliceField(m, "tags"),
	}

	for _, item := range sliceField(m, "clauses") {
		clause := model.ExtractedClause{
			Type: stringField(item, "type"),
			Text: stringField(item, "text"),
		}
		if data, ok := item["data"].(map[string]any); ok {
			clause.Data = data
		}
		if confidence := floatField(item, "confidence"); confidence != nil {
			clause.Confidence = *confidence
		}
		if page := floatField(item, "page"); page != nil {
			p := int(*page)
			clause.Page = &p
		}
		extraction.Clauses = append(extraction.Clauses, clause)
	}

	for _, item := range sliceField(m, "risks") {
		extraction.Risks = append(extraction.Risks, model.ExtractedRisk{
			Type:        stringField(item, "type"),
			Severity:    stringField(item, "severity"),
			Description: stringField(item, "description"),
			Mitigation:  stringField(item, "mitigation"),
		})
	}

	return extraction
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// floatField accepts numbers and numeric strings; models return either.
func floatField(m map[string]any, key string) *float64 {
	switch v := m[key].(type) {
	case float64:
		return &v
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if cleaned == "" {
			return nil
		}
		if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return &parsed
		}
	}
	return nil
}

func stringSliceField(m map[string]any, key string) []string {
	items, ok := m[key].([]any)
	if !ok {
		return nil
	}
	var result []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

func sliceField(m map[string]any, key string) []map[string]any {
	items, ok := m[key].([]any)
	if !ok {
		return nil
	}
	var result []map[string]any
	for _, item := range items {
		if entry, ok := item.(map[string]any); ok {
			result = append(result, entry)
		}
	}
	return result
}
