package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/XyloTech/GOVERN.AI/model"
	"github.com/XyloTech/GOVERN.AI/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxUploadBytes = 50 << 20

type ContractHandler struct {
	contracts *service.ContractService
	repo      *service.ContractRepo
	files     service.FileStore
}

func NewContractHandler(contracts *service.ContractService, repo *service.ContractRepo, files service.FileStore) *ContractHandler {
	return &ContractHandler{
		contracts: contracts,
		repo:      repo,
		files:     files,
	}
}

// Upload ingests a contract document. The file arrives as multipart
// field "file"; the remaining form fields carry metadata overrides and
// bounds.
func (h *ContractHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	metadata, err := parseIngestionMetadata(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc := &model.RawDocument{
		Content:     content,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}

	contract, err := h.contracts.ProcessUpload(c.Request.Context(), doc, metadata)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process upload"})
		return
	}

	c.JSON(http.StatusCreated, contract)
}

// List returns contracts, optionally filtered by status and type.
func (h *ContractHandler) List(c *gin.Context) {
	filter := &service.ContractFilter{
		Status: c.Query("status"),
		Type:   c.Query("type"),
	}

	contracts, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contracts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contracts": contracts,
		"total":     len(contracts),
	})
}

// Get returns one contract with its clauses and risks.
func (h *ContractHandler) Get(c *gin.Context) {
	contract, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get contract"})
		return
	}

	c.JSON(http.StatusOK, contract)
}

// Delete removes a contract and its clauses and risks.
func (h *ContractHandler) Delete(c *gin.Context) {
	err := h.repo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contract"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contract deleted"})
}

// Download re-serves the originally uploaded document.
func (h *ContractHandler) Download(c *gin.Context) {
	contract, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get contract"})
		return
	}

	// MinIO-backed storage serves downloads by presigned URL so the
	// object bytes never pass through this process.
	if minioStore, ok := h.files.(*service.MinioStore); ok {
		url, err := minioStore.GetPresignedURL(c.Request.Context(), contract.FilePath)
		if err == nil {
			c.Redirect(http.StatusFound, url)
			return
		}
	}

	content, err := h.files.Read(c.Request.Context(), contract.FilePath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	contentType := contract.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+contract.FileName+`"`)
	c.Data(http.StatusOK, contentType, content)
}

// parseIngestionMetadata reads the optional metadata form fields. Bound
// fields must be numeric when present; tags arrive comma-separated.
func parseIngestionMetadata(c *gin.Context) (*model.IngestionMetadata, error) {
	metadata := &model.IngestionMetadata{
		ContractType: c.PostForm("contract_type"),
		Status:       c.PostForm("status"),
		Currency:     c.PostForm("currency"),
		Notes:        c.PostForm("notes"),
	}

	if raw := c.PostForm("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				metadata.Tags = append(metadata.Tags, tag)
			}
		}
	}

	bounds := []struct {
		field string
		dest  **float64
	}{
		{"min_risk_score", &metadata.MinRiskScore},
		{"max_risk_score", &metadata.MaxRiskScore},
		{"min_contract_value", &metadata.MinContractValue},
		{"max_contract_value", &metadata.MaxContractValue},
	}
	for _, b := range bounds {
		raw := c.PostForm(b.field)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.New("Invalid " + b.field)
		}
		*b.dest = &value
	}

	return metadata, nil
}
