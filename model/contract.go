package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Contract statuses. The column is free-form at write time but these are
// the values the rest of the system produces and queries on.
const (
	StatusDraft          = "draft"
	StatusActive         = "active"
	StatusExpired        = "expired"
	StatusTerminated     = "terminated"
	StatusPendingRenewal = "pending_renewal"
)

// Contract types. Unrecognized input is canonicalized to TypeOther before
// a contract is written, so the column only ever holds these values.
const (
	TypeSupplier    = "supplier"
	TypeCustomer    = "customer"
	TypePartnership = "partnership"
	TypeEmployment  = "employment"
	TypeNDA         = "nda"
	TypeOther       = "other"
)

// Risk severities. Not enforced at the data layer.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Contract is the canonical persisted record produced by ingestion.
type Contract struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string `gorm:"not null;index" json:"title"`
	ContractNumber string `gorm:"uniqueIndex;not null" json:"contract_number"`
	Type           string `gorm:"size:50;default:other;index" json:"type"`
	Status         string `gorm:"size:50;default:draft;index" json:"status"`

	// Parties
	PartyA string `gorm:"not null" json:"party_a"`
	PartyB string `gorm:"not null" json:"party_b"`

	// Dates
	EffectiveDate  *time.Time `json:"effective_date"`
	ExpirationDate *time.Time `json:"expiration_date"`
	RenewalDate    *time.Time `json:"renewal_date"`

	// Financial
	ContractValue *float64 `json:"contract_value"`
	Currency      string   `gorm:"size:10;default:USD" json:"currency"`

	// Document
	FilePath string `json:"file_path"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`

	// AI extracted data
	ExtractedClauses datatypes.JSON `json:"extracted_clauses,omitempty"`
	RiskScore        float64        `gorm:"default:0" json:"risk_score"`
	RiskFactors      datatypes.JSON `json:"risk_factors,omitempty"`

	// Metadata
	Tags  datatypes.JSON `json:"tags,omitempty"`
	Notes string         `gorm:"type:text" json:"notes,omitempty"`

	Clauses []ContractClause `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE" json:"clauses,omitempty"`
	Risks   []ContractRisk   `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE" json:"risks,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contract) TableName() string {
	return "contracts"
}

func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// ContractClause is a clause extracted from a contract document. It is
// created only during ingestion of its parent and deleted with it.
type ContractClause struct {
	ID              string         `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID      string         `gorm:"type:uuid;not null;index" json:"contract_id"`
	ClauseType      string         `gorm:"not null" json:"clause_type"`
	ClauseText      string         `gorm:"type:text;not null" json:"clause_text"`
	ExtractedData   datatypes.JSON `json:"extracted_data,omitempty"`
	PageNumber      *int           `json:"page_number,omitempty"`
	ConfidenceScore float64        `json:"confidence_score"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (ContractClause) TableName() string {
	return "contract_clauses"
}

func (c *ContractClause) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// ContractRisk is a risk identified in a contract document. Same ownership
// rule as ContractClause.
type ContractRisk struct {
	ID                        string    `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID                string    `gorm:"type:uuid;not null;index" json:"contract_id"`
	RiskType                  string    `gorm:"not null" json:"risk_type"` // financial, legal, compliance, operational
	Severity                  string    `gorm:"size:20" json:"severity"`
	Description               string    `gorm:"type:text" json:"description"`
	MitigationRecommendations string    `gorm:"type:text" json:"mitigation_recommendations"`
	CreatedAt                 time.Time `json:"created_at"`
}

func (ContractRisk) TableName() string {
	return "contract_risks"
}

func (r *ContractRisk) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
