package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/XyloTech/GOVERN.AI/config"
	"gorm.io/gorm"
)

func testReportService(t *testing.T) (*ReportService, *gorm.DB) {
	t.Helper()
	db, err := InitDB(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatal(err)
	}
	gemini := NewGeminiClient(&config.GeminiConfig{})
	return NewReportService(db, NewContractRepo(db), gemini), db
}

func TestGenerateFinancialReport(t *testing.T) {
	svc, _ := testReportService(t)

	report, err := svc.Generate(context.Background(), &ReportRequest{
		Title:      "Q3 Financial Report",
		ReportType: "financial",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if report.ID == "" {
		t.Fatal("report ID not assigned")
	}
	if report.Status != "generated" {
		t.Errorf("Status = %q, want generated", report.Status)
	}
	if report.Summary != defaultReportSummary {
		t.Errorf("Summary = %q, want fallback without AI", report.Summary)
	}
	if len(report.KPIs) != 2 {
		t.Fatalf("KPIs = %d, want 2", len(report.KPIs))
	}
	for _, kpi := range report.KPIs {
		if kpi.ReportID != report.ID {
			t.Errorf("KPI not linked: %q", kpi.ReportID)
		}
	}
}

func TestGenerateComplianceReportAndGet(t *testing.T) {
	svc, _ := testReportService(t)
	ctx := context.Background()

	report, err := svc.Generate(ctx, &ReportRequest{
		Title:      "Compliance Audit",
		ReportType: "compliance",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	got, err := svc.GetByID(ctx, report.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.KPIs) != 2 {
		t.Errorf("KPIs = %d, want 2 preloaded", len(got.KPIs))
	}
	if got.KPIs[0].Unit == "" {
		t.Errorf("KPI unit missing: %+v", got.KPIs[0])
	}
}

func TestGenerateOperationalReportHasNoKPIs(t *testing.T) {
	svc, _ := testReportService(t)

	report, err := svc.Generate(context.Background(), &ReportRequest{
		Title:      "Ops Overview",
		ReportType: "operational",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(report.KPIs) != 0 {
		t.Errorf("KPIs = %d, want 0 for operational stub", len(report.KPIs))
	}
}

func TestListReports(t *testing.T) {
	svc, _ := testReportService(t)
	ctx := context.Background()

	for _, title := range []string{"First", "Second"} {
		if _, err := svc.Generate(ctx, &ReportRequest{Title: title, ReportType: "financial"}); err != nil {
			t.Fatal(err)
		}
	}

	reports, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(reports) != 2 {
		t.Errorf("reports = %d, want 2", len(reports))
	}
}

func TestReportDataIncludesMetrics(t *testing.T) {
	svc, db := testReportService(t)
	ctx := context.Background()

	repo := NewContractRepo(db)
	if err := repo.CreateWithChildren(ctx, testContract("CNT-RPT"), nil, nil); err != nil {
		t.Fatal(err)
	}

	report, err := svc.Generate(ctx, &ReportRequest{Title: "With Data", ReportType: "financial"})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Data) == 0 {
		t.Error("report Data column empty, want collected metrics")
	}
}
