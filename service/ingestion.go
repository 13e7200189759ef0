package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/XyloTech/GOVERN.AI/model"
	"github.com/XyloTech/GOVERN.AI/pkg/logger"
	"gorm.io/datatypes"
)

// ContractService runs the ingestion pipeline: persist the upload, extract
// text, run structured extraction, normalize, and commit the contract
// with its clause and risk records in one transaction.
//
// Each call is independent; the service holds no per-upload state, so
// concurrent ingestions only contend on the database.
type ContractService struct {
	repo      *ContractRepo
	files     FileStore
	documents *DocumentService
	extractor StructuredExtractor
}

func NewContractService(repo *ContractRepo, files FileStore, documents *DocumentService, extractor StructuredExtractor) *ContractService {
	return &ContractService{
		repo:      repo,
		files:     files,
		documents: documents,
		extractor: extractor,
	}
}

// ProcessUpload ingests one uploaded document and returns the persisted
// contract. File-save and storage errors propagate; the extraction stages
// degrade internally and never fail the call.
func (s *ContractService) ProcessUpload(ctx context.Context, doc *model.RawDocument, metadata *model.IngestionMetadata) (*model.Contract, error) {
	filePath, err := s.files.Save(ctx, doc.Filename, doc.Content, doc.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}

	text := s.documents.ExtractText(doc.Content, doc.Filename)
	extraction := s.extractor.Extract(ctx, text)
	fields := NormalizeFields(extraction, metadata, doc.Filename, doc.ContentType)

	notes := ""
	if metadata != nil {
		notes = metadata.Notes
	}

	contract := &model.Contract{
		Title:            fields.Title,
		ContractNumber:   fields.ContractNumber,
		Type:             fields.Type,
		Status:           fields.Status,
		PartyA:           fields.PartyA,
		PartyB:           fields.PartyB,
		EffectiveDate:    fields.EffectiveDate,
		ExpirationDate:   fields.ExpirationDate,
		RenewalDate:      fields.RenewalDate,
		ContractValue:    fields.ContractValue,
		Currency:         fields.Currency,
		FilePath:         filePath,
		FileName:         doc.Filename,
		FileType:         doc.ContentType,
		ExtractedClauses: toJSON(extraction.Clauses),
		RiskScore:        fields.RiskScore,
		RiskFactors:      toJSON(fields.RiskFactors),
		Tags:             toJSON(fields.Tags),
		Notes:            notes,
	}

	clauses := make([]model.ContractClause, 0, len(extraction.Clauses))
	for _, c := range extraction.Clauses {
		clauses = append(clauses, model.ContractClause{
			ClauseType:      defaultString(c.Type, "general"),
			ClauseText:      c.Text,
			ExtractedData:   toJSON(c.Data),
			PageNumber:      c.Page,
			ConfidenceScore: c.Confidence,
		})
	}

	risks := make([]model.ContractRisk, 0, len(extraction.Risks))
	for _, r := range extraction.Risks {
		risks = append(risks, model.ContractRisk{
			RiskType:                  defaultString(r.Type, "general"),
			Severity:                  defaultString(r.Severity, model.SeverityLow),
			Description:               r.Description,
			MitigationRecommendations: r.Mitigation,
		})
	}

	if err := s.repo.CreateWithChildren(ctx, contract, clauses, risks); err != nil {
		return nil, err
	}

	logger.Info(ctx, "contract ingested",
		"contract_id", contract.ID,
		"contract_number", contract.ContractNumber,
		"clauses", len(clauses),
		"risks", len(risks),
	)

	return contract, nil
}

// toJSON serializes a value for a JSON column. Nil and unserializable
// values become null.
func toJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
