package interfaces

import "context"

// PDFExtractor extracts per-page text from PDF documents.
type PDFExtractor interface {
	// ExtractPages returns the text of each page in order, 1-based page
	// numbers mapping to slice index + 1. Image-only pages yield empty
	// strings.
	ExtractPages(ctx context.Context, path string) ([]string, error)

	// ExtractPagesFromBytes extracts from in-memory PDF content.
	ExtractPagesFromBytes(ctx context.Context, data []byte) ([]string, error)
}
