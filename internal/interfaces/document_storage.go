package interfaces

import (
	"context"

	"github.com/ternarybob/responsum/internal/models"
)

// DocumentStorage is the persistent registry of ingested documents.
type DocumentStorage interface {
	Upsert(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, id string) (*models.Document, error)
	GetByFilename(ctx context.Context, filename string) (*models.Document, error)
	List(ctx context.Context) ([]*models.Document, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
