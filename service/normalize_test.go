package service

import (
	"regexp"
	"testing"

	"github.com/XyloTech/GOVERN.AI/model"
)

func TestNormalizeFieldsDefaults(t *testing.T) {
	fields := NormalizeFields(&model.StructuredExtraction{}, nil, "contract.pdf", "application/pdf")

	if fields.Title != "contract.pdf" {
		t.Errorf("Title = %q, want filename fallback", fields.Title)
	}
	if fields.Status != model.StatusDraft {
		t.Errorf("Status = %q, want %q", fields.Status, model.StatusDraft)
	}
	if fields.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", fields.Currency)
	}
	if fields.Type != model.TypeOther {
		t.Errorf("Type = %q, want other", fields.Type)
	}
	if fields.PartyA != "Unknown" || fields.PartyB != "Unknown" {
		t.Errorf("parties = %q, %q, want Unknown", fields.PartyA, fields.PartyB)
	}
	if fields.RiskScore != 0 {
		t.Errorf("RiskScore = %v, want 0", fields.RiskScore)
	}
	if fields.ContractValue != nil {
		t.Errorf("ContractValue = %v, want nil", fields.ContractValue)
	}
}

func TestNormalizeFieldsMetadataPrecedence(t *testing.T) {
	extraction := &model.StructuredExtraction{
		Type:     "supplier",
		Status:   model.StatusDraft,
		Currency: "USD",
	}
	metadata := &model.IngestionMetadata{
		ContractType: "nda",
		Status:       model.StatusActive,
		Currency:     "EUR",
	}
	fields := NormalizeFields(extraction, metadata, "a.txt", "text/plain")

	if fields.Type != model.TypeNDA {
		t.Errorf("Type = %q, want nda", fields.Type)
	}
	if fields.Status != model.StatusActive {
		t.Errorf("Status = %q, want active", fields.Status)
	}
	if fields.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", fields.Currency)
	}
}

func TestNormalizeFieldsRiskScoreClamp(t *testing.T) {
	min, max := 40.0, 80.0

	tests := []struct {
		name  string
		score float64
		want  float64
	}{
		{"below min", 30, 40},
		{"above max", 90, 80},
		{"in range", 55, 55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extraction := &model.StructuredExtraction{RiskScore: &tt.score}
			metadata := &model.IngestionMetadata{MinRiskScore: &min, MaxRiskScore: &max}
			fields := NormalizeFields(extraction, metadata, "a.txt", "text/plain")
			if fields.RiskScore != tt.want {
				t.Errorf("RiskScore = %v, want %v", fields.RiskScore, tt.want)
			}
		})
	}
}

func TestNormalizeFieldsContractValueClamp(t *testing.T) {
	value := 5000.0
	min := 10000.0
	extraction := &model.StructuredExtraction{ContractValue: &value}
	metadata := &model.IngestionMetadata{MinContractValue: &min}

	fields := NormalizeFields(extraction, metadata, "a.txt", "text/plain")
	if fields.ContractValue == nil || *fields.ContractValue != 10000.0 {
		t.Errorf("ContractValue = %v, want 10000", fields.ContractValue)
	}

	// bounds never materialize a value out of nothing
	fields = NormalizeFields(&model.StructuredExtraction{}, metadata, "a.txt", "text/plain")
	if fields.ContractValue != nil {
		t.Errorf("ContractValue = %v, want nil", fields.ContractValue)
	}
}

func TestNormalizeFieldsDates(t *testing.T) {
	extraction := &model.StructuredExtraction{
		EffectiveDate:  "2024-01-15",
		ExpirationDate: "null",
		RenewalDate:    "not a date at all",
	}
	fields := NormalizeFields(extraction, nil, "a.txt", "text/plain")

	if fields.EffectiveDate == nil {
		t.Fatal("EffectiveDate = nil, want parsed date")
	}
	if got := fields.EffectiveDate.Format("2006-01-02"); got != "2024-01-15" {
		t.Errorf("EffectiveDate = %s, want 2024-01-15", got)
	}
	if fields.ExpirationDate != nil {
		t.Errorf("ExpirationDate = %v, want nil for literal null", fields.ExpirationDate)
	}
	if fields.RenewalDate != nil {
		t.Errorf("RenewalDate = %v, want nil for unparsable value", fields.RenewalDate)
	}
}

func TestNormalizeFieldsTagUnion(t *testing.T) {
	extraction := &model.StructuredExtraction{Tags: []string{"eu", "pending"}}
	metadata := &model.IngestionMetadata{Tags: []string{"vip", "eu"}}

	fields := NormalizeFields(extraction, metadata, "a.txt", "text/plain")
	want := []string{"vip", "eu", "pending"}
	if len(fields.Tags) != len(want) {
		t.Fatalf("Tags = %v, want %v", fields.Tags, want)
	}
	for i := range want {
		if fields.Tags[i] != want[i] {
			t.Errorf("Tags[%d] = %q, want %q", i, fields.Tags[i], want[i])
		}
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"supplier", model.TypeSupplier},
		{"Supplier", model.TypeSupplier},
		{"  NDA  ", model.TypeNDA},
		{"parties", model.TypeOther},
		{"franchise", model.TypeOther},
		{"", model.TypeOther},
	}
	for _, tt := range tests {
		if got := NormalizeType(tt.in); got != tt.want {
			t.Errorf("NormalizeType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewContractNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^CNT-[0-9A-F]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		number := NewContractNumber()
		if !pattern.MatchString(number) {
			t.Fatalf("contract number %q does not match CNT-XXXXXXXX", number)
		}
		if seen[number] {
			t.Fatalf("duplicate contract number %q", number)
		}
		seen[number] = true
	}
}

func TestNormalizeFieldsKeepsExtractedContractNumber(t *testing.T) {
	extraction := &model.StructuredExtraction{ContractNumber: "SVC-2024-001"}
	fields := NormalizeFields(extraction, nil, "a.txt", "text/plain")
	if fields.ContractNumber != "SVC-2024-001" {
		t.Errorf("ContractNumber = %q, want extracted value kept", fields.ContractNumber)
	}
}
