package service

import (
	"context"
	"fmt"
	"time"

	"github.com/XyloTech/GOVERN.AI/model"
	"gorm.io/gorm"
)

// ReportService generates KPI reports with an AI-written executive
// summary. The report and its KPIs are written in one transaction, same
// all-or-nothing rule as contract ingestion.
type ReportService struct {
	db     *gorm.DB
	repo   *ContractRepo
	gemini *GeminiClient
}

func NewReportService(db *gorm.DB, repo *ContractRepo, gemini *GeminiClient) *ReportService {
	return &ReportService{
		db:     db,
		repo:   repo,
		gemini: gemini,
	}
}

// ReportRequest describes the report to generate.
type ReportRequest struct {
	Title       string     `json:"title" binding:"required"`
	ReportType  string     `json:"report_type" binding:"required"`
	PeriodStart *time.Time `json:"period_start"`
	PeriodEnd   *time.Time `json:"period_end"`
}

const defaultReportSummary = "Report generated successfully."

// Generate builds and persists a report for the requested period.
func (s *ReportService) Generate(ctx context.Context, req *ReportRequest) (*model.Report, error) {
	data, err := s.collectData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect report data: %w", err)
	}

	summary := s.generateSummary(ctx, req.ReportType, data)

	report := &model.Report{
		Title:       req.Title,
		ReportType:  req.ReportType,
		Status:      "generated",
		Summary:     summary,
		Data:        toJSON(data),
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
	}
	kpis := buildKPIs(req.ReportType, data)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		for i := range kpis {
			kpis[i].ReportID = report.ID
		}
		if len(kpis) > 0 {
			if err := tx.Create(&kpis).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	report.KPIs = kpis
	return report, nil
}

// GetByID returns a report with its KPIs preloaded.
func (s *ReportService) GetByID(ctx context.Context, id string) (*model.Report, error) {
	var report model.Report
	err := s.db.WithContext(ctx).Preload("KPIs").Where("id = ?", id).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns all reports, newest first, without KPIs.
func (s *ReportService) List(ctx context.Context) ([]model.Report, error) {
	var reports []model.Report
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&reports).Error
	return reports, err
}

func (s *ReportService) collectData(ctx context.Context) (map[string]any, error) {
	total, err := s.repo.Count(ctx, "")
	if err != nil {
		return nil, err
	}
	active, err := s.repo.Count(ctx, model.StatusActive)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"metrics": map[string]any{
			"total_contracts":  total,
			"active_contracts": active,
		},
	}, nil
}

func (s *ReportService) generateSummary(ctx context.Context, reportType string, data map[string]any) string {
	if !s.gemini.Configured() {
		return defaultReportSummary
	}

	prompt := fmt.Sprintf(`Generate a concise executive summary (2-3 paragraphs) for a %s report based on the following data:
%v

Make it CFO-ready and highlight key insights.`, reportType, data)

	summary, err := s.gemini.GenerateContent(ctx, prompt)
	if err != nil {
		return defaultReportSummary
	}
	return summary
}

func buildKPIs(reportType string, data map[string]any) []model.KPI {
	switch reportType {
	case "financial":
		return []model.KPI{
			{Name: "Total Revenue", Value: "0", Unit: "USD", Trend: "stable"},
			{Name: "Operating Expenses", Value: "0", Unit: "USD", Trend: "stable"},
		}
	case "compliance":
		return []model.KPI{
			{Name: "Compliance Rate", Value: "0", Unit: "%", Trend: "stable"},
			{Name: "Active Alerts", Value: "0", Unit: "count", Trend: "stable"},
		}
	default:
		return nil
	}
}
