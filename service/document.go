package service

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dslipak/pdf"
)

// DocumentService converts raw document bytes into plain text. Extraction
// is a pure transform: unsupported or corrupt content degrades to empty
// text instead of failing the ingestion call.
type DocumentService struct{}

func NewDocumentService() *DocumentService {
	return &DocumentService{}
}

// ExtractText extracts plain text from document bytes, dispatching on the
// declared filename's extension.
func (s *DocumentService) ExtractText(content []byte, filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	switch ext {
	case "pdf":
		return extractPDFText(content)
	case "docx", "doc":
		return extractDocxText(content)
	default:
		// txt and anything unrecognized: treat as UTF-8 text
		if !utf8.Valid(content) {
			return ""
		}
		return string(content)
	}
}

// extractPDFText concatenates per-page text in page order. Pages that fail
// to decode contribute an empty string.
func extractPDFText(content []byte) (text string) {
	// The pdf package panics on some malformed documents; treat that the
	// same as any other decode failure.
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			sb.WriteString("\n")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			pageText = ""
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String()
}

// docxDocument maps the paragraph structure of word/document.xml. Each w:p
// holds runs (w:r) whose w:t elements carry the visible text.
type docxDocument struct {
	Body struct {
		Paragraphs []struct {
			Runs []struct {
				Texts []string `xml:"t"`
			} `xml:"r"`
		} `xml:"p"`
	} `xml:"body"`
}

// extractDocxText pulls paragraph text out of the word/document.xml entry
// of the DOCX archive, newline-separated in document order.
func extractDocxText(content []byte) string {
	zipReader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return ""
	}

	for _, file := range zipReader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return ""
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return ""
		}

		var doc docxDocument
		if err := xml.Unmarshal(data, &doc); err != nil {
			return ""
		}

		paragraphs := make([]string, 0, len(doc.Body.Paragraphs))
		for _, p := range doc.Body.Paragraphs {
			var sb strings.Builder
			for _, r := range p.Runs {
				for _, t := range r.Texts {
					sb.WriteString(t)
				}
			}
			paragraphs = append(paragraphs, sb.String())
		}
		return strings.Join(paragraphs, "\n")
	}

	return ""
}
