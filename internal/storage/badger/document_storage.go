package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DocumentStorage is the badgerhold-backed registry of ingested documents.
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.DocumentStorage = (*DocumentStorage)(nil)

// NewDocumentStorage creates a document registry on the given connection.
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) *DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts or replaces a document record.
func (s *DocumentStorage) Upsert(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is required", models.ErrConfig)
	}

	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to upsert document %s: %w", doc.ID, err)
	}

	s.logger.Debug().
		Str("document_id", doc.ID).
		Str("filename", doc.Filename).
		Int("chunks", doc.ChunkCount).
		Msg("Document record upserted")

	return nil
}

// Get retrieves a document by id.
func (s *DocumentStorage) Get(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Store().Get(id, &doc); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: document %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return &doc, nil
}

// GetByFilename retrieves a document by its source filename.
func (s *DocumentStorage) GetByFilename(ctx context.Context, filename string) (*models.Document, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, badgerhold.Where("Filename").Eq(filename)); err != nil {
		return nil, fmt.Errorf("failed to find document by filename %s: %w", filename, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: document with filename %s", models.ErrNotFound, filename)
	}
	return &docs[0], nil
}

// List returns all document records.
func (s *DocumentStorage) List(ctx context.Context) ([]*models.Document, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, nil); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	out := make([]*models.Document, len(docs))
	for i := range docs {
		out[i] = &docs[i]
	}
	return out, nil
}

// Delete removes a document record.
func (s *DocumentStorage) Delete(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Document{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("%w: document %s", models.ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	return nil
}

// Count reports the number of registered documents.
func (s *DocumentStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Document{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}
