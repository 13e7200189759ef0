package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/XyloTech/GOVERN.AI/config"
	"github.com/XyloTech/GOVERN.AI/model"
	"github.com/XyloTech/GOVERN.AI/service"
	"github.com/gin-gonic/gin"
)

func setupContractRouter(t *testing.T) (*gin.Engine, *service.ContractRepo) {
	t.Helper()

	db, err := service.InitDB(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	repo := service.NewContractRepo(db)
	store, err := service.NewLocalFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	contracts := service.NewContractService(repo, store, service.NewDocumentService(), service.NewHeuristicExtractor())
	handler := NewContractHandler(contracts, repo, store)

	router := gin.New()
	router.POST("/contracts/upload", handler.Upload)
	router.GET("/contracts", handler.List)
	router.GET("/contracts/:id", handler.Get)
	router.DELETE("/contracts/:id", handler.Delete)
	router.GET("/contracts/:id/download", handler.Download)
	return router, repo
}

func multipartUpload(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, writer.FormDataContentType()
}

func TestContractUpload(t *testing.T) {
	router, _ := setupContractRouter(t)

	body, contentType := multipartUpload(t, "agreement.txt",
		"SERVICE AGREEMENT between Acme Inc. and Globex LLC effective 2024-01-15",
		map[string]string{"status": "active", "tags": "vip, eu"})
	req := httptest.NewRequest("POST", "/contracts/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var contract model.Contract
	if err := json.Unmarshal(w.Body.Bytes(), &contract); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if contract.PartyA != "Acme Inc." || contract.PartyB != "Globex LLC" {
		t.Errorf("parties = %q, %q", contract.PartyA, contract.PartyB)
	}
	if contract.Status != model.StatusActive {
		t.Errorf("status = %q, want active from form override", contract.Status)
	}
}

func TestContractUploadMissingFile(t *testing.T) {
	router, _ := setupContractRouter(t)

	req := httptest.NewRequest("POST", "/contracts/upload", bytes.NewBufferString(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestContractUploadInvalidBound(t *testing.T) {
	router, _ := setupContractRouter(t)

	body, contentType := multipartUpload(t, "a.txt", "text",
		map[string]string{"min_risk_score": "not-a-number"})
	req := httptest.NewRequest("POST", "/contracts/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestContractListFilter(t *testing.T) {
	router, repo := setupContractRouter(t)

	active := &model.Contract{Title: "A", ContractNumber: "CNT-1", Type: model.TypeSupplier, Status: model.StatusActive, PartyA: "A", PartyB: "B"}
	draft := &model.Contract{Title: "B", ContractNumber: "CNT-2", Type: model.TypeNDA, Status: model.StatusDraft, PartyA: "A", PartyB: "B"}
	for _, c := range []*model.Contract{active, draft} {
		if err := repo.CreateWithChildren(context.Background(), c, nil, nil); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest("GET", "/contracts?status=active", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var response struct {
		Contracts []model.Contract `json:"contracts"`
		Total     int              `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatal(err)
	}
	if response.Total != 1 || response.Contracts[0].ContractNumber != "CNT-1" {
		t.Errorf("filtered list = %+v", response)
	}
}

func TestContractGetNotFound(t *testing.T) {
	router, _ := setupContractRouter(t)

	req := httptest.NewRequest("GET", "/contracts/no-such-id", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestContractDelete(t *testing.T) {
	router, repo := setupContractRouter(t)

	contract := &model.Contract{Title: "A", ContractNumber: "CNT-3", Type: model.TypeOther, Status: model.StatusDraft, PartyA: "A", PartyB: "B"}
	if err := repo.CreateWithChildren(context.Background(), contract, nil, nil); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("DELETE", "/contracts/"+contract.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	req = httptest.NewRequest("DELETE", "/contracts/"+contract.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestContractDownload(t *testing.T) {
	router, _ := setupContractRouter(t)

	content := "SERVICE AGREEMENT between Acme Inc. and Globex LLC"
	body, contentType := multipartUpload(t, "agreement.txt", content, nil)
	req := httptest.NewRequest("POST", "/contracts/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d", w.Code)
	}

	var contract model.Contract
	if err := json.Unmarshal(w.Body.Bytes(), &contract); err != nil {
		t.Fatal(err)
	}

	req = httptest.NewRequest("GET", "/contracts/"+contract.ID+"/download", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("download status = %d", w.Code)
	}
	if w.Body.String() != content {
		t.Errorf("downloaded content = %q", w.Body.String())
	}
}
