package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

// snapshotVersion is written to every snapshot file.
const snapshotVersion = 1

// snapshot is the on-disk form of the whole store.
type snapshot struct {
	Version        int                `json:"version"`
	Chunks         []snapshotChunk    `json:"chunks"`
	Documents      []snapshotDocument `json:"documents"`
	EmbeddingModel string             `json:"embeddingModel,omitempty"`
	SavedAt        time.Time          `json:"savedAt"`
}

type snapshotChunk struct {
	ID    string       `json:"id"`
	Chunk domain.Chunk `json:"chunk"`
}

type snapshotDocument struct {
	ID       string                  `json:"id"`
	Document domain.DocumentMetadata `json:"document"`
}

// SaveSnapshot writes the current state as JSON to path.
// The file is written to a temporary sibling and renamed into place.
func (s *VectorStore) SaveSnapshot(path string) error {
	st := s.state.Load()

	snap := snapshot{
		Version:        snapshotVersion,
		Chunks:         make([]snapshotChunk, 0, len(st.chunks)),
		Documents:      make([]snapshotDocument, 0, len(st.docOrder)),
		EmbeddingModel: st.embeddingModel,
		SavedAt:        s.now().UTC(),
	}
	for _, c := range st.chunks {
		snap.Chunks = append(snap.Chunks, snapshotChunk{ID: c.ID, Chunk: c})
	}
	for _, id := range st.docOrder {
		snap.Documents = append(snap.Documents, snapshotDocument{ID: id, Document: st.documents[id]})
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	logger.Debug("vector store: saved %d chunks, %d documents to %s",
		len(snap.Chunks), len(snap.Documents), path)
	return nil
}

// LoadSnapshot replaces the store contents with the snapshot at path.
// A missing, unreadable or inconsistent snapshot leaves the store unchanged,
// logs a warning and returns false.
func (s *VectorStore) LoadSnapshot(path string) bool {
	next, err := readSnapshot(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("vector store: no snapshot at %s, starting empty", path)
		} else {
			logger.Warn("vector store: ignoring snapshot %s: %v", path, err)
		}
		return false
	}

	if s.embedder != nil {
		if configured := s.embedder.ModelName(); next.embeddingModel != "" && next.embeddingModel != configured {
			logger.Warn("vector store: snapshot was embedded with %q, configured model is %q",
				next.embeddingModel, configured)
		}
		if next.embeddingModel == "" {
			next.embeddingModel = s.embedder.ModelName()
		}
	}

	s.mu.Lock()
	s.state.Store(next)
	s.mu.Unlock()

	logger.Info("vector store: loaded %d chunks, %d documents from %s",
		len(next.chunks), len(next.documents), path)
	return true
}

func readSnapshot(path string) (*vectorState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if snap.Version > snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	st := &vectorState{
		chunks:         make([]domain.Chunk, 0, len(snap.Chunks)),
		documents:      make(map[string]domain.DocumentMetadata, len(snap.Documents)),
		docOrder:       make([]string, 0, len(snap.Documents)),
		embeddingModel: snap.EmbeddingModel,
	}

	for _, d := range snap.Documents {
		if d.ID == "" {
			return nil, errors.New("document without id")
		}
		if _, dup := st.documents[d.ID]; dup {
			return nil, fmt.Errorf("duplicate document %s", d.ID)
		}
		d.Document.ID = d.ID
		d.Document.ChunkCount = 0
		st.documents[d.ID] = d.Document
		st.docOrder = append(st.docOrder, d.ID)
	}

	for _, c := range snap.Chunks {
		meta, ok := st.documents[c.Chunk.DocumentID]
		if !ok {
			return nil, fmt.Errorf("chunk %s references unknown document %q", c.ID, c.Chunk.DocumentID)
		}
		c.Chunk.ID = c.ID
		st.chunks = append(st.chunks, c.Chunk)
		meta.ChunkCount++
		st.documents[c.Chunk.DocumentID] = meta
	}

	return st, nil
}
