package documents

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/models"
	"github.com/ternarybob/responsum/internal/services/chunker"
	"github.com/ternarybob/responsum/internal/services/embeddings"
	"github.com/ternarybob/responsum/internal/services/llm"
	"github.com/ternarybob/responsum/internal/services/vectorstore"
)

// fakeExtractor serves canned pages per filename instead of parsing PDFs.
type fakeExtractor struct {
	pages map[string][]string
}

func (f *fakeExtractor) ExtractPages(_ context.Context, path string) ([]string, error) {
	pages, ok := f.pages[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("%w: unreadable PDF %s", models.ErrLoad, path)
	}
	return pages, nil
}

func (f *fakeExtractor) ExtractPagesFromBytes(_ context.Context, _ []byte) ([]string, error) {
	return nil, fmt.Errorf("%w: not supported in fake", models.ErrLoad)
}

// memRegistry is an in-memory DocumentStorage for pipeline tests.
type memRegistry struct {
	mu   sync.Mutex
	docs map[string]*models.Document
}

func newMemRegistry() *memRegistry {
	return &memRegistry{docs: make(map[string]*models.Document)}
}

func (m *memRegistry) Upsert(_ context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

func (m *memRegistry) Get(_ context.Context, id string) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc, ok := m.docs[id]; ok {
		cp := *doc
		return &cp, nil
	}
	return nil, fmt.Errorf("%w: document %s", models.ErrNotFound, id)
}

func (m *memRegistry) GetByFilename(_ context.Context, filename string) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.docs {
		if doc.Filename == filename {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: document with filename %s", models.ErrNotFound, filename)
}

func (m *memRegistry) List(_ context.Context) ([]*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Document
	for _, doc := range m.docs {
		cp := *doc
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRegistry) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *memRegistry) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs), nil
}

// ltePages is a small three-page corpus; page 2 carries the eNodeB
// definition, page 3 the handover material.
var ltePages = []string{
	"LTE stands for Long Term Evolution. It is a standard for wireless broadband communication for mobile devices and data terminals.",
	"An eNodeB is the base station in an LTE radio access network. The eNodeB handles radio resource management and scheduling for connected devices.",
	"Handover is the process of transferring an ongoing session from one cell to another. LTE supports seamless handover between eNodeBs.",
}

func newPipeline(t *testing.T, extractor *fakeExtractor, chunkSize, overlap int) (*Service, *vectorstore.Store, *memRegistry) {
	t.Helper()
	logger := common.GetLogger()

	embedder, err := embeddings.NewService(llm.NewMockService(64), logger)
	require.NoError(t, err)

	store, err := vectorstore.Open(filepath.Join(t.TempDir(), "vectors.vecgo"), embedder, logger)
	require.NoError(t, err)

	ch, err := chunker.New(chunkSize, overlap)
	require.NoError(t, err)

	registry := newMemRegistry()
	svc, err := NewService(extractor, ch, store, registry, t.TempDir(), logger)
	require.NoError(t, err)

	return svc, store, registry
}

func TestIngestNamed_EndToEnd(t *testing.T) {
	extractor := &fakeExtractor{pages: map[string][]string{"LTE.pdf": ltePages}}
	svc, store, registry := newPipeline(t, extractor, 100, 20)
	ctx := context.Background()

	// IngestNamed requires the file to exist in the pdf dir.
	require.NoError(t, writeDummyPDF(t, svc.pdfDir, "LTE.pdf"))

	summary, err := svc.IngestNamed(ctx, "LTE.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"LTE.pdf"}, summary.Indexed)
	assert.Greater(t, summary.Chunks, 3)
	assert.Equal(t, store.Len(), summary.Chunks)

	doc, err := registry.GetByFilename(ctx, "LTE.pdf")
	require.NoError(t, err)
	assert.Equal(t, 3, doc.PageCount)
	assert.Len(t, doc.ChunkIDs, summary.Chunks)

	// The eNodeB question must rank a page-2 chunk first.
	results, err := store.Search(ctx, "What is an eNodeB?", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, 2, results[0].Chunk.Page)
	assert.Contains(t, results[0].Chunk.Text, "eNodeB")

	// And the handover question must surface handover text.
	results, err = store.Search(ctx, "Explain handover", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, strings.ToLower(results[0].Chunk.Text), "handover")
}

func TestIngestFile_Idempotent(t *testing.T) {
	extractor := &fakeExtractor{pages: map[string][]string{"LTE.pdf": ltePages}}
	svc, store, registry := newPipeline(t, extractor, 100, 20)
	ctx := context.Background()

	require.NoError(t, writeDummyPDF(t, svc.pdfDir, "LTE.pdf"))

	first, err := svc.IngestNamed(ctx, "LTE.pdf")
	require.NoError(t, err)
	second, err := svc.IngestNamed(ctx, "LTE.pdf")
	require.NoError(t, err)

	assert.Equal(t, first.Chunks, second.Chunks)
	assert.Equal(t, first.Chunks, store.Len(), "re-ingestion must not grow the store")

	count, err := registry.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIngestDirectory_PartialFailure(t *testing.T) {
	extractor := &fakeExtractor{pages: map[string][]string{
		"good.pdf": {"some perfectly extractable text for the good document"},
		// broken.pdf intentionally absent: the extractor fails on it.
	}}
	svc, _, _ := newPipeline(t, extractor, 100, 20)
	ctx := context.Background()

	require.NoError(t, writeDummyPDF(t, svc.pdfDir, "good.pdf"))
	require.NoError(t, writeDummyPDF(t, svc.pdfDir, "broken.pdf"))

	summary, err := svc.IngestDirectory(ctx)
	require.NoError(t, err, "per-file failures must not abort the sweep")
	assert.Equal(t, []string{"good.pdf"}, summary.Indexed)
	assert.Equal(t, []string{"broken.pdf"}, summary.Failed)
}

func TestIngestNamed_MissingFile(t *testing.T) {
	svc, _, _ := newPipeline(t, &fakeExtractor{pages: map[string][]string{}}, 100, 20)

	_, err := svc.IngestNamed(context.Background(), "nope.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrLoad))
}

func TestIngestBytes_RejectsNonPDF(t *testing.T) {
	svc, _, _ := newPipeline(t, &fakeExtractor{}, 100, 20)

	_, err := svc.IngestBytes(context.Background(), "notes.txt", []byte("hello"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrLoad))
}

func TestStats(t *testing.T) {
	extractor := &fakeExtractor{pages: map[string][]string{"LTE.pdf": ltePages}}
	svc, _, _ := newPipeline(t, extractor, 100, 20)
	ctx := context.Background()

	require.NoError(t, writeDummyPDF(t, svc.pdfDir, "LTE.pdf"))
	_, err := svc.IngestNamed(ctx, "LTE.pdf")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats["documents"])
	assert.Greater(t, stats["chunks"].(int), 0)
}

// writeDummyPDF drops a placeholder file; the fake extractor never reads
// its bytes.
func writeDummyPDF(t *testing.T, dir, name string) error {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4 placeholder"), 0644)
}
