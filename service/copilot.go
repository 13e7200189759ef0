package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/XyloTech/GOVERN.AI/model"
)

// CopilotService answers natural-language questions about the contract
// corpus. Context is gathered by keyword triggers and equality filters,
// then handed to Gemini; without a configured credential a canned answer
// is returned alongside the raw data.
type CopilotService struct {
	repo   *ContractRepo
	gemini *GeminiClient
}

func NewCopilotService(repo *ContractRepo, gemini *GeminiClient) *CopilotService {
	return &CopilotService{
		repo:   repo,
		gemini: gemini,
	}
}

// CopilotFilters narrows the context fetch for a query.
type CopilotFilters struct {
	Status       string `json:"status"`
	ContractType string `json:"contract_type"`
}

// CopilotAnswer is the result of one copilot query.
type CopilotAnswer struct {
	Answer  string         `json:"answer"`
	Sources []string       `json:"sources"`
	Data    map[string]any `json:"data"`
}

var contractKeywords = []string{"contract", "agreement", "supplier", "vendor"}
var dashboardKeywords = []string{"dashboard", "summary", "overview", "statistics"}

// ProcessQuery gathers relevant context and produces an answer.
func (s *CopilotService) ProcessQuery(ctx context.Context, query string, filters *CopilotFilters) (*CopilotAnswer, error) {
	data, sources, err := s.gatherContext(ctx, query, filters)
	if err != nil {
		return nil, err
	}

	if !s.gemini.Configured() {
		return &CopilotAnswer{
			Answer:  "AI Copilot is not configured. Set the Gemini API key to enable natural language answers.",
			Sources: sources,
			Data:    data,
		}, nil
	}

	prompt := fmt.Sprintf(`You are the GovernAI Copilot, an AI assistant for enterprise governance and contract management.

User Query: %s

Relevant Context Data:
%s

Provide a helpful, accurate answer based on the context data. Include specific numbers when available and use markdown formatting. If you don't have enough information, say so.`, query, formatContext(data))

	answer, err := s.gemini.GenerateContent(ctx, prompt)
	if err != nil {
		return &CopilotAnswer{
			Answer:  fmt.Sprintf("Error processing query: %v", err),
			Sources: sources,
			Data:    data,
		}, nil
	}

	return &CopilotAnswer{
		Answer:  answer,
		Sources: sources,
		Data:    data,
	}, nil
}

// gatherContext fetches database context when the query mentions a topic
// or the caller supplied explicit filters.
func (s *CopilotService) gatherContext(ctx context.Context, query string, filters *CopilotFilters) (map[string]any, []string, error) {
	data := make(map[string]any)
	var sources []string
	lower := strings.ToLower(query)

	hasFilters := filters != nil && (filters.Status != "" || filters.ContractType != "")
	if containsAny(lower, contractKeywords) || hasFilters {
		filter := &ContractFilter{}
		if filters != nil {
			filter.Status = filters.Status
			filter.Type = filters.ContractType
		}

		contracts, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch contracts: %w", err)
		}
		if len(contracts) > 20 {
			contracts = contracts[:20]
		}

		summaries := make([]map[string]any, 0, len(contracts))
		for i, c := range contracts {
			summaries = append(summaries, map[string]any{
				"id":             c.ID,
				"title":          c.Title,
				"status":         c.Status,
				"type":           c.Type,
				"risk_score":     c.RiskScore,
				"contract_value": c.ContractValue,
				"party_a":        c.PartyA,
				"party_b":        c.PartyB,
			})
			if i < 5 {
				sources = append(sources, "Contract: "+c.Title)
			}
		}
		data["contracts"] = summaries
	}

	if containsAny(lower, dashboardKeywords) {
		total, err := s.repo.Count(ctx, "")
		if err != nil {
			return nil, nil, err
		}
		active, err := s.repo.Count(ctx, model.StatusActive)
		if err != nil {
			return nil, nil, err
		}
		expired, err := s.repo.Count(ctx, model.StatusExpired)
		if err != nil {
			return nil, nil, err
		}

		data["dashboard"] = map[string]any{
			"total_contracts":   total,
			"active_contracts":  active,
			"expired_contracts": expired,
		}
		sources = append(sources, "Dashboard Summary")
	}

	return data, sources, nil
}

func formatContext(data map[string]any) string {
	var lines []string

	if contracts, ok := data["contracts"].([]map[string]any); ok {
		lines = append(lines, "Contracts:")
		for i, c := range contracts {
			if i == 5 {
				break
			}
			lines = append(lines, fmt.Sprintf("  - %v (Status: %v)", c["title"], c["status"]))
		}
	}
	if dashboard, ok := data["dashboard"].(map[string]any); ok {
		lines = append(lines, fmt.Sprintf("Dashboard: %d total contracts, %d active, %d expired",
			dashboard["total_contracts"], dashboard["active_contracts"], dashboard["expired_contracts"]))
	}

	if len(lines) == 0 {
		return "No relevant context found."
	}
	return strings.Join(lines, "\n")
}

func containsAny(s string, words []string) bool {
	for _, word := range words {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}
