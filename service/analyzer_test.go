package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/XyloTech/GOVERN.AI/config"
)

// geminiStub returns a server that wraps the given text in a valid
// generateContent response.
func geminiStub(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestAIExtract(t *testing.T) {
	server := geminiStub(t, "Here is the analysis:\n```json\n"+
		`{"title":"Service Agreement","type":"Supplier","party_a":"Acme Inc.","party_b":"Globex LLC",`+
		`"contract_value":"1,250,000","risk_score":72,"risk_factors":["auto-renewal"],`+
		`"clauses":[{"type":"payment","text":"Net 30","data":{"days":30}}],`+
		`"risks":[{"type":"financial","severity":"high","description":"penalty clause"}],`+
		`"tags":["supplier","eu"]}`+"\n```")
	defer server.Close()

	extractor := NewAIExtractor(testGeminiClient(server.URL), NewHeuristicExtractor())
	extraction := extractor.Extract(context.Background(), "some contract text")

	if extraction.Title != "Service Agreement" {
		t.Errorf("Title = %q", extraction.Title)
	}
	if extraction.PartyA != "Acme Inc." || extraction.PartyB != "Globex LLC" {
		t.Errorf("parties = %q, %q", extraction.PartyA, extraction.PartyB)
	}
	if extraction.ContractValue == nil || *extraction.ContractValue != 1250000 {
		t.Errorf("ContractValue = %v, want 1250000 from numeric string", extraction.ContractValue)
	}
	if extraction.RiskScore == nil || *extraction.RiskScore != 72 {
		t.Errorf("RiskScore = %v, want 72", extraction.RiskScore)
	}
	if len(extraction.Clauses) != 1 || extraction.Clauses[0].Type != "payment" {
		t.Errorf("Clauses = %+v", extraction.Clauses)
	}
	if len(extraction.Risks) != 1 || extraction.Risks[0].Severity != "high" {
		t.Errorf("Risks = %+v", extraction.Risks)
	}
	if len(extraction.Tags) != 2 {
		t.Errorf("Tags = %v", extraction.Tags)
	}
}

func TestAIExtractFallsBackWhenUnconfigured(t *testing.T) {
	client := NewGeminiClient(&config.GeminiConfig{})
	extractor := NewAIExtractor(client, NewHeuristicExtractor())

	extraction := extractor.Extract(context.Background(), "SERVICE AGREEMENT between Acme Inc. and Globex LLC")
	if extraction.PartyA != "Acme Inc." {
		t.Errorf("PartyA = %q, want heuristic result", extraction.PartyA)
	}
	if extraction.RiskScore == nil || *extraction.RiskScore != 50.0 {
		t.Errorf("RiskScore = %v, want heuristic default 50", extraction.RiskScore)
	}
}

func TestAIExtractFallsBackOnTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":500,"message":"internal"}}`))
	}))
	defer server.Close()

	extractor := NewAIExtractor(testGeminiClient(server.URL), NewHeuristicExtractor())
	extraction := extractor.Extract(context.Background(), "Party A: Acme Corp")
	if extraction.PartyA != "Acme Corp" {
		t.Errorf("PartyA = %q, want heuristic result", extraction.PartyA)
	}
}

func TestAIExtractFallsBackOnUnparseableResponse(t *testing.T) {
	server := geminiStub(t, "I could not find any structured data in this document.")
	defer server.Close()

	extractor := NewAIExtractor(testGeminiClient(server.URL), NewHeuristicExtractor())
	extraction := extractor.Extract(context.Background(), "Party A: Acme Corp")
	if extraction.PartyA != "Acme Corp" {
		t.Errorf("PartyA = %q, want heuristic result", extraction.PartyA)
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		response string
		ok       bool
		title    string
	}{
		{"bare object", `{"title":"A"}`, true, "A"},
		{"fenced object", "```json\n{\"title\":\"B\"}\n```", true, "B"},
		{"single quotes repaired", `{'title': 'C'}`, true, "C"},
		{"nested object", `{"title":"D","data":{"k":"v"}}`, true, "D"},
		{"no object", "no json here", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := extractJSONObject(tt.response)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if tt.ok && parsed["title"] != tt.title {
				t.Errorf("title = %v, want %v", parsed["title"], tt.title)
			}
		})
	}
}
