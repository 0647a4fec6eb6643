// -----------------------------------------------------------------------
// Document Service - Ingestion pipeline: load, chunk, embed, index
// -----------------------------------------------------------------------

package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
	"github.com/ternarybob/responsum/internal/services/chunker"
)

// Service runs the ingestion pipeline and keeps the registry consistent
// with the vector store. Writes to the same document are serialized by a
// keyed mutex; different documents ingest concurrently.
type Service struct {
	extractor interfaces.PDFExtractor
	chunker   *chunker.Chunker
	store     interfaces.VectorStore
	registry  interfaces.DocumentStorage
	pdfDir    string
	logger    arbor.ILogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Compile-time interface assertion
var _ interfaces.DocumentService = (*Service)(nil)

// NewService creates the ingestion service.
func NewService(
	extractor interfaces.PDFExtractor,
	ch *chunker.Chunker,
	store interfaces.VectorStore,
	registry interfaces.DocumentStorage,
	pdfDir string,
	logger arbor.ILogger,
) (*Service, error) {
	if extractor == nil || ch == nil || store == nil || registry == nil {
		return nil, fmt.Errorf("%w: extractor, chunker, vector store and registry are required", models.ErrConfig)
	}
	if pdfDir == "" {
		return nil, fmt.Errorf("%w: pdf directory is required", models.ErrConfig)
	}

	return &Service{
		extractor: extractor,
		chunker:   ch,
		store:     store,
		registry:  registry,
		pdfDir:    pdfDir,
		logger:    logger,
	}, nil
}

// fileLock returns the per-filename mutex, creating it on first use.
func (s *Service) fileLock(filename string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	l, ok := s.locks[filename]
	if !ok {
		l = &sync.Mutex{}
		s.locks[filename] = l
	}
	return l
}

// IngestBytes ingests an uploaded PDF. The upload is saved into the PDF
// directory first so directory sweeps cover it later.
func (s *Service) IngestBytes(ctx context.Context, filename string, data []byte) (*models.IngestSummary, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", models.ErrConfig)
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, fmt.Errorf("%w: only PDF files are supported, got %s", models.ErrLoad, filename)
	}

	if err := os.MkdirAll(s.pdfDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create pdf directory: %w", err)
	}
	path := filepath.Join(s.pdfDir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to save uploaded PDF: %w", err)
	}

	return s.IngestFile(ctx, path)
}

// IngestFile ingests a PDF from disk. Re-ingesting a filename replaces
// its previous chunks: deterministic chunk ids turn re-indexing into
// in-place vector updates, and vectors past the new chunk count are
// dropped.
func (s *Service) IngestFile(ctx context.Context, path string) (*models.IngestSummary, error) {
	filename := filepath.Base(path)
	lock := s.fileLock(filename)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()

	pages, err := s.extractor.ExtractPages(ctx, path)
	if err != nil {
		return nil, err
	}

	// Reuse the existing document id so chunk ids stay stable across
	// re-ingestion.
	docID := ""
	if existing, err := s.registry.GetByFilename(ctx, filename); err == nil {
		docID = existing.ID
	} else {
		docID = common.NewDocumentID()
	}

	chunks, err := s.chunker.Split(docID, pages)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document %s produced no chunks", models.ErrLoad, filename)
	}

	// A shrinking document leaves stale trailing chunks behind; clear
	// them before indexing the new set.
	if existing, err := s.registry.GetByFilename(ctx, filename); err == nil && existing.ChunkCount > len(chunks) {
		if err := s.store.RemoveDocument(ctx, docID); err != nil {
			return nil, err
		}
	}

	failures, err := s.store.Index(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if len(failures) > 0 {
		s.logger.Warn().
			Str("filename", filename).
			Int("failed", len(failures)).
			Msg("Some chunks failed to embed")
	}

	chunkIDs := make([]string, len(chunks))
	for i, c := range chunks {
		chunkIDs[i] = c.ID
	}
	doc := &models.Document{
		ID:         docID,
		Filename:   filename,
		PageCount:  len(pages),
		ChunkIDs:   chunkIDs,
		ChunkCount: len(chunks),
	}
	if err := s.registry.Upsert(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.store.Save(); err != nil {
		return nil, err
	}

	summary := &models.IngestSummary{
		Indexed:  []string{filename},
		Chunks:   len(chunks),
		Duration: time.Since(start).String(),
	}
	for _, f := range failures {
		summary.Failed = append(summary.Failed, f.ChunkID)
	}

	s.logger.Info().
		Str("filename", filename).
		Str("document_id", docID).
		Int("pages", len(pages)).
		Int("chunks", len(chunks)).
		Dur("duration", time.Since(start)).
		Msg("Document ingested")

	return summary, nil
}

// IngestDirectory ingests every PDF in the configured directory.
// Per-file failures are reported in the summary and do not abort the
// sweep.
func (s *Service) IngestDirectory(ctx context.Context) (*models.IngestSummary, error) {
	start := time.Now()

	entries, err := os.ReadDir(s.pdfDir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read pdf directory %s: %v", models.ErrLoad, s.pdfDir, err)
	}

	summary := &models.IngestSummary{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		fileSummary, err := s.IngestFile(ctx, filepath.Join(s.pdfDir, entry.Name()))
		if err != nil {
			s.logger.Warn().Str("filename", entry.Name()).Err(err).Msg("Failed to ingest PDF")
			summary.Failed = append(summary.Failed, entry.Name())
			continue
		}
		summary.Indexed = append(summary.Indexed, entry.Name())
		summary.Chunks += fileSummary.Chunks
	}
	summary.Duration = time.Since(start).String()

	s.logger.Info().
		Int("indexed", len(summary.Indexed)).
		Int("failed", len(summary.Failed)).
		Int("chunks", summary.Chunks).
		Dur("duration", time.Since(start)).
		Msg("Directory ingestion completed")

	return summary, nil
}

// IngestNamed ingests one specifically named PDF from the directory.
func (s *Service) IngestNamed(ctx context.Context, filename string) (*models.IngestSummary, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", models.ErrConfig)
	}

	path := filepath.Join(s.pdfDir, filepath.Base(filename))
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s not found in %s", models.ErrLoad, filename, s.pdfDir)
	}

	return s.IngestFile(ctx, path)
}

// Stats reports registry and index counts.
func (s *Service) Stats(ctx context.Context) (map[string]interface{}, error) {
	count, err := s.registry.Count(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"documents": count,
		"chunks":    s.store.Len(),
		"pdf_dir":   s.pdfDir,
	}, nil
}
