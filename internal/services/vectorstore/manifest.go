package vectorstore

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ternarybob/responsum/internal/models"
)

// manifest maps chunk ids to vecgo ids and records insertion order. It is
// persisted as a JSON sidecar next to the index snapshot; the pair must
// load together or the store is corrupt.
type manifest struct {
	Version   int             `json:"version"`
	Dimension int             `json:"dimension"`
	NextSeq   uint64          `json:"next_seq"`
	Entries   []manifestEntry `json:"entries"`
}

type manifestEntry struct {
	ChunkID    string `json:"chunk_id"`
	DocumentID string `json:"document_id"`
	VecgoID    uint64 `json:"vecgo_id"`
	Seq        uint64 `json:"seq"`
}

const manifestVersion = 1

// manifestPath derives the sidecar path from the snapshot path.
func manifestPath(snapshotPath string) string {
	return snapshotPath + ".manifest.json"
}

// loadManifest reads and validates the sidecar. Any read or decode
// failure, or a dimension mismatch, is store corruption.
func loadManifest(path string, dimension int) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read manifest %s: %v", models.ErrStoreCorrupt, path, err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: failed to parse manifest %s: %v", models.ErrStoreCorrupt, path, err)
	}
	if m.Version != manifestVersion {
		return nil, fmt.Errorf("%w: unsupported manifest version %d", models.ErrStoreCorrupt, m.Version)
	}
	if m.Dimension != dimension {
		return nil, fmt.Errorf("%w: manifest dimension %d does not match configured %d", models.ErrStoreCorrupt, m.Dimension, dimension)
	}

	return &m, nil
}

// saveManifest writes the sidecar atomically via rename.
func saveManifest(path string, m *manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace manifest: %w", err)
	}
	return nil
}
