package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/readstash/internal/domain/docModel"
	"github.com/akolanti/readstash/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

var extractLogger = logger_i.NewLogger("FileExtraction")

// ExtractFile reads an uploaded file and returns its plaintext, for the
// upload ingestion path.
func ExtractFile(path string) (string, docModel.SourceType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err := extractPDF(path)
		return text, docModel.SourcePDF, err
	case ".docx", ".odt", ".rtf":
		text, err := cat.File(path)
		return text, docModel.SourceDOCX, err
	case ".md", ".markdown":
		text, err := cat.File(path)
		return text, docModel.SourceMarkdown, err
	case ".txt":
		text, err := cat.File(path)
		return text, docModel.SourceUpload, err
	default:
		return "", docModel.SourceUpload, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

func extractPDF(path string) (string, error) {
	f, err := pdf.Open(path)
	if err != nil {
		extractLogger.Error("failed opening of pdf file", "error", err)
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	numPages := f.NumPage()
	extractLogger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// keep going with the remaining pages
			extractLogger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// protectExtract guards against pathological PDFs hanging the extractor.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", errors.New("timeout")
	}
}
