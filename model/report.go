package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Report is a generated KPI report with an AI-written executive summary.
type Report struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	ReportType  string         `gorm:"size:50;index" json:"report_type"` // financial, compliance, operational
	Status      string         `gorm:"size:50" json:"status"`
	Summary     string         `gorm:"type:text" json:"summary"`
	Data        datatypes.JSON `json:"data,omitempty"`
	PeriodStart *time.Time     `json:"period_start"`
	PeriodEnd   *time.Time     `json:"period_end"`

	KPIs []KPI `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"kpis,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Report) TableName() string {
	return "reports"
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// KPI is a single metric attached to a report.
type KPI struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID string `gorm:"type:uuid;not null;index" json:"report_id"`
	Name     string `gorm:"not null" json:"name"`
	Value    string `json:"value"`
	Unit     string `gorm:"size:20" json:"unit"`
	Trend    string `gorm:"size:20" json:"trend"` // up, down, stable

	CreatedAt time.Time `json:"created_at"`
}

func (KPI) TableName() string {
	return "report_kpis"
}

func (k *KPI) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.New().String()
	}
	return nil
}
