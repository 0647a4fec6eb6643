// -----------------------------------------------------------------------
// Vector Store Service - Chunk index over the vecgo embedded vector DB
// -----------------------------------------------------------------------

package vectorstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hupe1980/vecgo"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
	"golang.org/x/sync/errgroup"
)

// embedConcurrency bounds parallel embedding calls during indexing.
const embedConcurrency = 4

// entry tracks where a chunk lives in the index and when it arrived.
type entry struct {
	vecgoID    uint64
	seq        uint64
	documentID string
}

// Store owns the vecgo index: exactly one vector per chunk id, cosine
// distance, flat (exact) search. Searches run concurrently; writes are
// serialized. The Store is the sole owner of the underlying index.
type Store struct {
	mu       sync.RWMutex
	embedder interfaces.EmbeddingService
	logger   arbor.ILogger
	path     string
	db       *vecgo.Vecgo[models.Chunk]
	byChunk  map[string]entry
	nextSeq  uint64
}

// Compile-time interface assertion
var _ interfaces.VectorStore = (*Store)(nil)

// Open loads the store from the snapshot at path, or creates a fresh one
// when no snapshot exists. A snapshot or manifest that exists but cannot
// be loaded is corruption, never silently replaced by an empty store.
func Open(path string, embedder interfaces.EmbeddingService, logger arbor.ILogger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: vector store path is required", models.ErrConfig)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedding service is required", models.ErrConfig)
	}

	dimension := embedder.Dimension()
	s := &Store{
		embedder: embedder,
		logger:   logger,
		path:     path,
		byChunk:  make(map[string]entry),
	}

	_, snapErr := os.Stat(path)
	_, maniErr := os.Stat(manifestPath(path))

	if os.IsNotExist(snapErr) && os.IsNotExist(maniErr) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create vector store directory: %w", err)
		}
		db, err := vecgo.Flat[models.Chunk](dimension).Cosine().Build()
		if err != nil {
			return nil, fmt.Errorf("failed to create vector index: %w", err)
		}
		s.db = db
		logger.Info().Str("path", path).Int("dimension", dimension).Msg("Created empty vector store")
		return s, nil
	}

	// One half of the pair missing while the other exists is corruption.
	if os.IsNotExist(snapErr) || os.IsNotExist(maniErr) {
		return nil, fmt.Errorf("%w: snapshot and manifest must exist together (snapshot: %v, manifest: %v)", models.ErrStoreCorrupt, snapErr, maniErr)
	}

	db, err := vecgo.NewFromFile[models.Chunk](path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load snapshot %s: %v", models.ErrStoreCorrupt, path, err)
	}

	m, err := loadManifest(manifestPath(path), dimension)
	if err != nil {
		return nil, err
	}

	for _, e := range m.Entries {
		s.byChunk[e.ChunkID] = entry{vecgoID: e.VecgoID, seq: e.Seq, documentID: e.DocumentID}
	}
	s.nextSeq = m.NextSeq
	s.db = db

	logger.Info().
		Str("path", path).
		Int("chunks", len(s.byChunk)).
		Int("dimension", dimension).
		Msg("Loaded vector store")

	return s, nil
}

// Index embeds the chunks and stores their vectors. A chunk id already in
// the index is updated in place, never duplicated. Embedding failures are
// collected per chunk; chunks embedded successfully stay indexed.
func (s *Store) Index(ctx context.Context, chunks []models.Chunk) ([]models.IndexFailure, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	type embedded struct {
		chunk  models.Chunk
		vector []float32
	}

	vectors := make([]*embedded, len(chunks))
	var failMu sync.Mutex
	var failures []models.IndexFailure

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			vec, err := s.embedder.EmbedDocument(gctx, chunk.Text)
			if err != nil {
				failMu.Lock()
				failures = append(failures, models.IndexFailure{
					ChunkID: chunk.ID,
					Err:     err,
					Reason:  err.Error(),
				})
				failMu.Unlock()
				return nil
			}
			vectors[i] = &embedded{chunk: chunk, vector: vec}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return failures, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	indexed := 0
	for _, e := range vectors {
		if e == nil {
			continue
		}
		item := vecgo.VectorWithData[models.Chunk]{
			Vector: e.vector,
			Data:   e.chunk,
		}
		if existing, ok := s.byChunk[e.chunk.ID]; ok {
			if err := s.db.Update(ctx, existing.vecgoID, item); err != nil {
				failures = append(failures, models.IndexFailure{
					ChunkID: e.chunk.ID,
					Err:     err,
					Reason:  fmt.Sprintf("update failed: %v", err),
				})
				continue
			}
			// Keep the original insertion seq so re-indexing is invisible
			// to tie-breaking.
			s.byChunk[e.chunk.ID] = entry{vecgoID: existing.vecgoID, seq: existing.seq, documentID: e.chunk.DocumentID}
		} else {
			id, err := s.db.Insert(ctx, item)
			if err != nil {
				failures = append(failures, models.IndexFailure{
					ChunkID: e.chunk.ID,
					Err:     err,
					Reason:  fmt.Sprintf("insert failed: %v", err),
				})
				continue
			}
			s.byChunk[e.chunk.ID] = entry{vecgoID: id, seq: s.nextSeq, documentID: e.chunk.DocumentID}
			s.nextSeq++
		}
		indexed++
	}

	s.logger.Info().
		Int("indexed", indexed).
		Int("failed", len(failures)).
		Int("total", s.lenLocked()).
		Msg("Chunks indexed")

	return failures, nil
}

// Search embeds the query and returns up to k results ordered by
// descending cosine similarity, ties broken by insertion order.
func (s *Store) Search(ctx context.Context, query string, k int) ([]models.RetrievalResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: top-k must be positive, got %d", models.ErrConfig, k)
	}

	s.mu.RLock()
	size := s.lenLocked()
	s.mu.RUnlock()
	if size == 0 {
		return []models.RetrievalResult{}, nil
	}

	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Over-fetch a little so equal-distance neighbors just past k are
	// visible to the deterministic tie-break before truncation.
	fetch := k + 16
	if fetch > size {
		fetch = size
	}

	results, err := s.rankLocked(ctx, vec, fetch)
	if err != nil {
		return nil, err
	}

	// When the cut falls inside a tie that reaches the fetch horizon, the
	// horizon itself may hide older tied neighbors. Re-rank over the whole
	// index so selection depends on insertion order alone.
	if fetch < size && len(results) > k &&
		results[k-1].result.Similarity == results[len(results)-1].result.Similarity {
		results, err = s.rankLocked(ctx, vec, size)
		if err != nil {
			return nil, err
		}
	}

	if len(results) > k {
		results = results[:k]
	}

	out := make([]models.RetrievalResult, len(results))
	for i, r := range results {
		out[i] = r.result
	}
	return out, nil
}

type scored struct {
	result models.RetrievalResult
	seq    uint64
}

// rankLocked fetches the nearest neighbors and orders them by descending
// similarity, ties broken by insertion sequence. Caller holds at least a
// read lock.
func (s *Store) rankLocked(ctx context.Context, vec []float32, fetch int) ([]scored, error) {
	hits, err := s.db.KNNSearch(ctx, vec, fetch)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]scored, 0, len(hits))
	for _, hit := range hits {
		e, ok := s.byChunk[hit.Data.ID]
		if !ok {
			continue
		}
		results = append(results, scored{
			result: models.RetrievalResult{
				Chunk:      hit.Data,
				Similarity: 1 - float64(hit.Distance),
			},
			seq: e.seq,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].result.Similarity != results[j].result.Similarity {
			return results[i].result.Similarity > results[j].result.Similarity
		}
		return results[i].seq < results[j].seq
	})

	return results, nil
}

// RemoveDocument drops every vector belonging to the document.
func (s *Store) RemoveDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for chunkID, e := range s.byChunk {
		if e.documentID != documentID {
			continue
		}
		if err := s.db.Delete(ctx, e.vecgoID); err != nil {
			return fmt.Errorf("failed to delete vector for chunk %s: %w", chunkID, err)
		}
		delete(s.byChunk, chunkID)
		removed++
	}

	if removed > 0 {
		s.logger.Info().Str("document_id", documentID).Int("removed", removed).Msg("Document vectors removed")
	}
	return nil
}

// Save persists the snapshot and manifest.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create vector store directory: %w", err)
	}
	if err := s.db.SaveToFile(s.path); err != nil {
		return fmt.Errorf("failed to save vector snapshot: %w", err)
	}

	m := &manifest{
		Version:   manifestVersion,
		Dimension: s.embedder.Dimension(),
		NextSeq:   s.nextSeq,
		Entries:   make([]manifestEntry, 0, len(s.byChunk)),
	}
	for chunkID, e := range s.byChunk {
		m.Entries = append(m.Entries, manifestEntry{
			ChunkID:    chunkID,
			DocumentID: e.documentID,
			VecgoID:    e.vecgoID,
			Seq:        e.seq,
		})
	}
	if err := saveManifest(manifestPath(s.path), m); err != nil {
		return err
	}

	s.logger.Debug().Str("path", s.path).Int("chunks", len(s.byChunk)).Msg("Vector store saved")
	return nil
}

// Len reports the number of indexed chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lenLocked()
}

func (s *Store) lenLocked() int {
	return len(s.byChunk)
}

// Close releases the store. The index itself is in-memory; callers should
// Save first if they want the state back.
func (s *Store) Close() error {
	return nil
}
