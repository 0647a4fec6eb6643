// -----------------------------------------------------------------------
// PDF Extractor Service - Extract text content from PDF documents
// Uses pdfcpu for Go-native PDF processing
// -----------------------------------------------------------------------

package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// Extractor implements the PDFExtractor interface using pdfcpu
type Extractor struct {
	logger  arbor.ILogger
	tempDir string
}

// Compile-time interface assertion
var _ interfaces.PDFExtractor = (*Extractor)(nil)

// NewExtractor creates a new PDF extractor service
func NewExtractor(logger arbor.ILogger) *Extractor {
	// Create a temp directory for PDF processing
	tempDir := filepath.Join(os.TempDir(), "responsum-pdf")
	os.MkdirAll(tempDir, 0755)

	return &Extractor{
		logger:  logger,
		tempDir: tempDir,
	}
}

// ExtractPages extracts text content by page from a PDF file.
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read PDF file %s: %v", models.ErrLoad, path, err)
	}
	return e.ExtractPagesFromBytes(ctx, content)
}

// ExtractPagesFromBytes extracts per-page text from in-memory PDF content.
// Individual image-only pages yield empty strings; a document where every
// page is empty is treated as unreadable.
func (e *Extractor) ExtractPagesFromBytes(ctx context.Context, data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty PDF content", models.ErrLoad)
	}

	// Write to temp file for pdfcpu processing
	tempFile := filepath.Join(e.tempDir, fmt.Sprintf("extract_%d_%d.pdf", os.Getpid(), len(data)))
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write temp PDF file: %w", err)
	}
	defer os.Remove(tempFile)

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read PDF context: %v", models.ErrLoad, err)
	}

	pageCount := pdfCtx.PageCount
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: PDF has no pages", models.ErrLoad)
	}

	// pdfcpu doesn't have direct text extraction, so we extract page
	// content streams into a scratch directory and parse them back.
	outDir := filepath.Join(e.tempDir, fmt.Sprintf("pages_%d_%d", os.Getpid(), len(data)))
	os.MkdirAll(outDir, 0755)
	defer os.RemoveAll(outDir)

	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("%w: failed to extract PDF content: %v", models.ErrLoad, err)
	}

	pageTexts := make(map[int]string)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		} else if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	pages := make([]string, pageCount)
	empty := true
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text := strings.TrimSpace(pageTexts[pageNum])
		pages[pageNum-1] = text
		if text != "" {
			empty = false
		}
	}

	if empty {
		return nil, fmt.Errorf("%w: no extractable text in any page", models.ErrLoad)
	}

	e.logger.Debug().
		Int("page_count", pageCount).
		Int("bytes", len(data)).
		Msg("Extracted PDF pages")

	return pages, nil
}
