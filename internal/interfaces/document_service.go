package interfaces

import (
	"context"

	"github.com/ternarybob/responsum/internal/models"
)

// DocumentService runs the ingestion pipeline: load, chunk, embed, index,
// record.
type DocumentService interface {
	// IngestBytes ingests an uploaded PDF. Re-ingesting a filename
	// replaces its previous chunks.
	IngestBytes(ctx context.Context, filename string, data []byte) (*models.IngestSummary, error)

	// IngestFile ingests a PDF from disk.
	IngestFile(ctx context.Context, path string) (*models.IngestSummary, error)

	// IngestDirectory ingests every PDF in the configured directory.
	// Per-file failures are reported in the summary, not fatal.
	IngestDirectory(ctx context.Context) (*models.IngestSummary, error)

	// IngestNamed ingests the named PDF from the configured directory.
	IngestNamed(ctx context.Context, filename string) (*models.IngestSummary, error)

	// Stats reports registry counts.
	Stats(ctx context.Context) (map[string]interface{}, error)
}
