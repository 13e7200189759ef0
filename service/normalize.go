package service

import (
	"strings"
	"time"

	"github.com/XyloTech/GOVERN.AI/model"
	"github.com/araddon/dateparse"
	"github.com/google/uuid"
)

// NormalizedFields is the contract-ready field set produced by merging an
// extraction result with caller-supplied metadata.
type NormalizedFields struct {
	Title          string
	ContractNumber string
	Type           string
	Status         string
	PartyA         string
	PartyB         string
	EffectiveDate  *time.Time
	ExpirationDate *time.Time
	RenewalDate    *time.Time
	ContractValue  *float64
	Currency       string
	RiskScore      float64
	RiskFactors    []string
	Tags           []string
}

// typeMapping is the closed contract-type vocabulary. "parties" shows up
// in model output when it confuses the type with the section heading.
var typeMapping = map[string]string{
	"supplier":    model.TypeSupplier,
	"customer":    model.TypeCustomer,
	"partnership": model.TypePartnership,
	"employment":  model.TypeEmployment,
	"nda":         model.TypeNDA,
	"parties":     model.TypeOther,
	"other":       model.TypeOther,
}

// NormalizeFields reconciles extraction output with caller metadata.
// Precedence per field: metadata, then extraction, then a literal
// default. It is deterministic and total; invalid values degrade to safe
// defaults instead of failing.
//
// Note that min/max bounds clamp the extracted risk score and value
// rather than rejecting the upload, so a disagreement between the
// extraction and the caller's expectation is silently concealed. This
// matches the established API behavior.
func NormalizeFields(extraction *model.StructuredExtraction, metadata *model.IngestionMetadata, filename, contentType string) *NormalizedFields {
	if extraction == nil {
		extraction = &model.StructuredExtraction{}
	}
	if metadata == nil {
		metadata = &model.IngestionMetadata{}
	}

	fields := &NormalizedFields{
		Type:     NormalizeType(firstNonEmpty(metadata.ContractType, extraction.Type)),
		Status:   firstNonEmpty(metadata.Status, extraction.Status, model.StatusDraft),
		Currency: firstNonEmpty(metadata.Currency, extraction.Currency, "USD"),
		Title:    firstNonEmpty(extraction.Title, filename),
		PartyA:   firstNonEmpty(extraction.PartyA, "Unknown"),
		PartyB:   firstNonEmpty(extraction.PartyB, "Unknown"),
	}

	fields.ContractNumber = extraction.ContractNumber
	if fields.ContractNumber == "" {
		fields.ContractNumber = NewContractNumber()
	}

	fields.Tags = mergeTags(metadata.Tags, extraction.Tags)
	fields.RiskFactors = extraction.RiskFactors

	riskScore := 0.0
	if extraction.RiskScore != nil {
		riskScore = *extraction.RiskScore
	}
	fields.RiskScore = clamp(riskScore, metadata.MinRiskScore, metadata.MaxRiskScore)

	if extraction.ContractValue != nil {
		value := clamp(*extraction.ContractValue, metadata.MinContractValue, metadata.MaxContractValue)
		fields.ContractValue = &value
	}

	fields.EffectiveDate = parseDate(extraction.EffectiveDate)
	fields.ExpirationDate = parseDate(extraction.ExpirationDate)
	fields.RenewalDate = parseDate(extraction.RenewalDate)

	return fields
}

// NormalizeType canonicalizes a contract type against the closed
// vocabulary; anything unrecognized becomes "other".
func NormalizeType(contractType string) string {
	if normalized, ok := typeMapping[strings.ToLower(strings.TrimSpace(contractType))]; ok {
		return normalized
	}
	return model.TypeOther
}

// NewContractNumber generates an identifier of the form CNT-<8 uppercase
// hex characters>. Uniqueness is probabilistic; the database's unique
// index catches the pathological collision.
func NewContractNumber() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "CNT-" + strings.ToUpper(hex[:8])
}

// clamp adjusts a value to the nearest supplied bound instead of
// rejecting it.
func clamp(value float64, min, max *float64) float64 {
	if min != nil && value < *min {
		value = *min
	}
	if max != nil && value > *max {
		value = *max
	}
	return value
}

// parseDate tolerantly parses whatever date representation the extraction
// produced. Unparsable or absent values normalize to nil.
func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "null") {
		return nil
	}
	parsed, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil
	}
	return &parsed
}

// mergeTags unions the two tag lists, dropping duplicates. Order follows
// first appearance.
func mergeTags(metadataTags, extractionTags []string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, tag := range append(append([]string{}, metadataTags...), extractionTags...) {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		merged = append(merged, tag)
	}
	return merged
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
