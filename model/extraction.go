package model

// RawDocument is an uploaded document as received from the caller. It lives
// only for the duration of one ingestion call.
type RawDocument struct {
	Content     []byte
	Filename    string
	ContentType string
}

// ExtractedClause is a clause as emitted by structured extraction,
// before persistence defaults are applied.
type ExtractedClause struct {
	Type       string         `json:"type"`
	Text       string         `json:"text"`
	Data       map[string]any `json:"data,omitempty"`
	Page       *int           `json:"page,omitempty"`
	Confidence float64        `json:"confidence"`
}

// ExtractedRisk is a risk as emitted by structured extraction.
type ExtractedRisk struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Mitigation  string `json:"mitigation"`
}

// StructuredExtraction is the output of one structured extraction pass,
// AI or heuristic. Any field may be empty; the normalizer supplies
// defaults. Date fields stay raw strings until normalization.
type StructuredExtraction struct {
	Title          string
	ContractNumber string
	Type           string
	Status         string
	PartyA         string
	PartyB         string
	EffectiveDate  string
	ExpirationDate string
	RenewalDate    string
	ContractValue  *float64
	Currency       string
	Clauses        []ExtractedClause
	RiskScore      *float64
	RiskFactors    []string
	Risks          []ExtractedRisk
	Tags           []string
}

// IngestionMetadata carries caller-supplied overrides and bounds for one
// upload. Nil pointer fields mean "not supplied".
type IngestionMetadata struct {
	ContractType     string
	Status           string
	Currency         string
	Tags             []string
	Notes            string
	MinRiskScore     *float64
	MaxRiskScore     *float64
	MinContractValue *float64
	MaxContractValue *float64
}
