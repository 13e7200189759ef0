package service

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/XyloTech/GOVERN.AI/model"
)

// HeuristicExtractor is the deterministic, pattern-based extraction
// fallback. It is a total function over text: it always returns a usable
// StructuredExtraction and never fails.
type HeuristicExtractor struct{}

func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

var (
	titleRe          = regexp.MustCompile(`(?i)(?:Contract|Agreement|Contract for|Agreement for|SERVICE AGREEMENT)\s+([^\n]+)`)
	contractNumberRe = regexp.MustCompile(`(?i)Contract Number[:\s]+([A-Z0-9-]+)`)

	partyARe      = regexp.MustCompile(`(?i)Party A[:\s]+([^\n]+?)(?:,|\.|\n|$)`)
	partyBRe      = regexp.MustCompile(`(?i)Party B[:\s]+([^\n]+?)(?:,|\.|\n|$)`)
	partyDescRe   = regexp.MustCompile(`(?i),\s*a\s+[^,]+`)
	betweenRe     = regexp.MustCompile(`(?i)between[:\s]+([^,\n]+?)[,\s]+and[:\s]+([^\n]+)`)
	betweenTailRe = regexp.MustCompile(`(?i)\s+(?:effective|dated|commencing|beginning|signed)\b.*$`)

	partiesSectionRe = regexp.MustCompile(`(?is)PARTIES[:\s]+(.*?)(?:\n\n|\nSERVICES|\nCONTRACT)`)
	companyRe        = regexp.MustCompile(`[A-Z][A-Za-z\s]+(?:Inc\.|LLC|Corp\.|Ltd\.|Solutions|Services)`)

	numericDateRe = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
	isoDateRe     = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	monthDateRe   = regexp.MustCompile(`(?i)(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}`)

	moneyRe = regexp.MustCompile(`(?i)\$?([\d,]+\.?\d*)\s*(?:USD|dollars?|EUR|GBP)`)
)

// Extract derives contract fields from plain text using a fixed set of
// literal patterns. Type is always "other" and the risk score is a
// neutral 50; clauses, risks and tags are left for the AI pass.
func (e *HeuristicExtractor) Extract(ctx context.Context, text string) *model.StructuredExtraction {
	extraction := &model.StructuredExtraction{
		Title:     extractTitle(text),
		Type:      model.TypeOther,
		RiskScore: floatPtr(50.0),
	}

	if m := contractNumberRe.FindStringSubmatch(text); m != nil {
		extraction.ContractNumber = m[1]
	}

	extraction.PartyA, extraction.PartyB = extractParties(text)

	dates := extractDates(text)
	if len(dates) > 0 {
		extraction.EffectiveDate = dates[0]
	}
	if len(dates) > 1 {
		extraction.ExpirationDate = dates[1]
	}
	if len(dates) > 2 {
		extraction.RenewalDate = dates[2]
	}

	if m := moneyRe.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if value, err := strconv.ParseFloat(raw, 64); err == nil {
			extraction.ContractValue = &value
		}
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "risk") || strings.Contains(lower, "penalty") {
		extraction.RiskFactors = append(extraction.RiskFactors, "Contains risk clauses")
	}
	if strings.Contains(lower, "compliance") || strings.Contains(lower, "gdpr") {
		extraction.RiskFactors = append(extraction.RiskFactors, "Compliance requirements")
	}

	return extraction
}

func extractTitle(text string) string {
	if m := titleRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	firstLine, _, _ := strings.Cut(text, "\n")
	if runes := []rune(firstLine); len(runes) > 100 {
		firstLine = string(runes[:100])
	}
	if firstLine != "" {
		return firstLine
	}
	return "Untitled Contract"
}

// extractParties tries three strategies in order: explicit Party A/B
// labels, a "between X and Y" phrase, and company-like names in a
// PARTIES section. Placeholders are returned when nothing matches so the
// parties are never empty.
func extractParties(text string) (string, string) {
	if m := partyARe.FindStringSubmatch(text); m != nil {
		partyA := stripPartyDescription(m[1])
		partyB := ""
		if mb := partyBRe.FindStringSubmatch(text); mb != nil {
			partyB = stripPartyDescription(mb[1])
		}
		if partyB == "" {
			partyB = "Party B"
		}
		return partyA, partyB
	}

	if m := betweenRe.FindStringSubmatch(text); m != nil {
		partyA := strings.TrimSpace(m[1])
		partyB := strings.TrimSpace(betweenTailRe.ReplaceAllString(m[2], ""))
		if partyA != "" && partyB != "" {
			return partyA, partyB
		}
	}

	if m := partiesSectionRe.FindStringSubmatch(text); m != nil {
		companies := companyRe.FindAllString(m[1], -1)
		var distinct []string
		for _, company := range companies {
			company = strings.TrimSpace(company)
			if len(distinct) == 0 || distinct[0] != company {
				distinct = append(distinct, company)
			}
			if len(distinct) == 2 {
				return distinct[0], distinct[1]
			}
		}
		if len(distinct) == 1 {
			return distinct[0], "Party B"
		}
	}

	return "Party A", "Party B"
}

func stripPartyDescription(s string) string {
	return strings.TrimSpace(partyDescRe.ReplaceAllString(strings.TrimSpace(s), ""))
}

type dateMatch struct {
	start int
	end   int
	text  string
}

// extractDates collects every match of the three supported date shapes in
// one positional scan. Matches are ordered by offset (longest wins at
// equal offset) and later matches overlapping an accepted one are
// dropped, so a loose numeric match inside an ISO date does not produce a
// phantom second date. The first three survivors map positionally to
// effective, expiration and renewal dates.
func extractDates(text string) []string {
	var matches []dateMatch
	for _, re := range []*regexp.Regexp{numericDateRe, isoDateRe, monthDateRe} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			matches = append(matches, dateMatch{start: loc[0], end: loc[1], text: text[loc[0]:loc[1]]})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].start != matches[j].start {
			return matches[i].start < matches[j].start
		}
		return matches[i].end > matches[j].end
	})

	var dates []string
	lastEnd := -1
	for _, m := range matches {
		if m.start < lastEnd {
			continue
		}
		dates = append(dates, m.text)
		lastEnd = m.end
		if len(dates) == 3 {
			break
		}
	}
	return dates
}

func floatPtr(v float64) *float64 {
	return &v
}
