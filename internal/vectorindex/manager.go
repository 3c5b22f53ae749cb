package vectorindex

import (
	"context"
	"fmt"
	"path"

	"docubot/internal/chunk"
)

// Embedder turns chunk texts into fixed-length vectors, batchable.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ObjectStore is the narrow slice of the bucket client the manager needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte) error
	Download(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Manager owns the index lifecycle per chatbot: create-or-append from
// chunks, persist the companion artifact pair, and reload it on demand.
type Manager struct {
	store     ObjectStore
	embedder  Embedder
	batchSize int
}

func NewManager(store ObjectStore, embedder Embedder, batchSize int) *Manager {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Manager{store: store, embedder: embedder, batchSize: batchSize}
}

// Location is the deterministic artifact prefix for one chatbot's index.
func Location(owner, chatbotID string) string {
	return path.Join(owner, chatbotID, "rag-vector")
}

func artifactKeys(owner, chatbotID string) (vec, meta string) {
	prefix := Location(owner, chatbotID)
	return path.Join(prefix, VectorFileName), path.Join(prefix, MetaFileName)
}

// CreateOrAppend embeds the chunks and appends them to idx, building a new
// index when idx is nil. Existing vectors are never touched; an embedding
// failure aborts without partial mutation.
func (m *Manager) CreateOrAppend(ctx context.Context, idx *Index, chunks []chunk.Chunk) (*Index, error) {
	if idx == nil {
		idx = NewIndex()
	}
	if len(chunks) == 0 {
		return idx, nil
	}

	vectors := make([][]float32, 0, len(chunks))
	records := make([]Record, 0, len(chunks))
	for start := 0; start < len(chunks); start += m.batchSize {
		end := start + m.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		embedded, err := m.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunk batch: %w", err)
		}
		if len(embedded) != len(batch) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(embedded), len(batch))
		}
		vectors = append(vectors, embedded...)
		for _, c := range batch {
			records = append(records, Record{Text: c.Text, Metadata: c.Metadata})
		}
	}

	if err := idx.Add(vectors, records); err != nil {
		return nil, err
	}
	return idx, nil
}

// Persist uploads the companion pair. A stale pair at the location is
// removed first; the caller must only mark documents processed after
// Persist returns nil.
func (m *Manager) Persist(ctx context.Context, idx *Index, owner, chatbotID string) error {
	vectors, records := idx.Snapshot()

	vecData, err := encodeVectors(vectors)
	if err != nil {
		return err
	}
	metaData, err := encodeRecords(records)
	if err != nil {
		return err
	}

	vecKey, metaKey := artifactKeys(owner, chatbotID)
	stale, err := m.store.Exists(ctx, vecKey)
	if err != nil {
		return fmt.Errorf("check stale index: %w", err)
	}
	if stale {
		if err := m.store.Remove(ctx, vecKey, metaKey); err != nil {
			return fmt.Errorf("remove stale index pair: %w", err)
		}
	}

	if err := m.store.Upload(ctx, vecKey, vecData); err != nil {
		return fmt.Errorf("upload vector artifact: %w", err)
	}
	if err := m.store.Upload(ctx, metaKey, metaData); err != nil {
		return fmt.Errorf("upload metadata artifact: %w", err)
	}
	return nil
}

// Load fetches and decodes the pair. Either artifact missing yields
// ErrNotFound; artifacts that disagree yield ErrCorrupt.
func (m *Manager) Load(ctx context.Context, owner, chatbotID string) (*Index, error) {
	vecKey, metaKey := artifactKeys(owner, chatbotID)

	for _, key := range []string{vecKey, metaKey} {
		exists, err := m.store.Exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("check index artifact %s: %w", key, err)
		}
		if !exists {
			return nil, ErrNotFound
		}
	}

	vecData, err := m.store.Download(ctx, vecKey)
	if err != nil {
		return nil, fmt.Errorf("download vector artifact: %w", err)
	}
	metaData, err := m.store.Download(ctx, metaKey)
	if err != nil {
		return nil, fmt.Errorf("download metadata artifact: %w", err)
	}

	vectors, err := decodeVectors(vecData)
	if err != nil {
		return nil, err
	}
	records, err := decodeRecords(metaData)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(records) {
		return nil, fmt.Errorf("%w: %d vectors for %d records", ErrCorrupt, len(vectors), len(records))
	}

	idx := NewIndex()
	if err := idx.Add(vectors, records); err != nil {
		return nil, err
	}
	return idx, nil
}

// HasIndex reports whether a complete artifact pair exists.
func (m *Manager) HasIndex(ctx context.Context, owner, chatbotID string) (bool, error) {
	vecKey, metaKey := artifactKeys(owner, chatbotID)
	for _, key := range []string{vecKey, metaKey} {
		exists, err := m.store.Exists(ctx, key)
		if err != nil || !exists {
			return false, err
		}
	}
	return true, nil
}

// Delete removes the artifact pair, forcing a rebuild on next ingestion.
func (m *Manager) Delete(ctx context.Context, owner, chatbotID string) error {
	vecKey, metaKey := artifactKeys(owner, chatbotID)
	if err := m.store.Remove(ctx, vecKey, metaKey); err != nil {
		return fmt.Errorf("remove index pair: %w", err)
	}
	return nil
}
